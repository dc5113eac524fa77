package transform

import (
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Built-in transform kinds.
const (
	KindMarkup    = "markup"
	KindStyle     = "style"
	KindScript    = "script"
	KindSVG       = "svg"
	KindImages    = "images"
	KindCopy      = "copy"
	KindExec      = "exec"
	KindInlineCSS = "inline-css"
)

// Catalog maps transform kinds to their implementations.
type Catalog struct {
	kinds map[string]ports.Transformer
}

// NewCatalog creates a Catalog holding every built-in kind.
func NewCatalog(executor ports.Executor, hasher ports.Hasher) *Catalog {
	m := NewMinifier()
	return &Catalog{kinds: map[string]ports.Transformer{
		KindMarkup:    NewMarkup(hasher),
		KindStyle:     NewStyle(executor, m),
		KindScript:    NewScript(m),
		KindSVG:       NewSVG(m),
		KindImages:    NewImages(executor),
		KindCopy:      Copy{},
		KindExec:      NewExec(executor),
		KindInlineCSS: Inline{},
	}}
}

// Lookup returns the implementation of kind.
func (c *Catalog) Lookup(kind string) (ports.Transformer, error) {
	t, ok := c.kinds[kind]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownTransformKind, "no such transform kind"), "kind", kind)
	}
	return t, nil
}

// Kinds returns the known kinds, sorted.
func (c *Catalog) Kinds() []string {
	out := make([]string, 0, len(c.kinds))
	for k := range c.kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
