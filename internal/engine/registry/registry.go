// Package registry holds the named transforms and composite tasks of a pipeline.
package registry

import (
	"sync"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Entry is a resolved task reference. Exactly one of Transform or Composite is set.
type Entry struct {
	Transform   *domain.Transform
	Transformer ports.Transformer
	Composite   *domain.CompositeTask
}

// Name returns the task name of the entry.
func (e Entry) Name() domain.InternedString {
	if e.Composite != nil {
		return e.Composite.Name
	}
	return e.Transform.Name
}

// IsComposite reports whether the entry groups other tasks.
func (e Entry) IsComposite() bool {
	return e.Composite != nil
}

// Registry maps task names to transforms and composites.
// It is populated at startup and read-only afterwards.
type Registry struct {
	mu      sync.RWMutex
	entries map[domain.InternedString]Entry
	order   []domain.InternedString
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		entries: make(map[domain.InternedString]Entry),
	}
}

// RegisterTransform adds a transform and the implementation selected by its kind.
func (r *Registry) RegisterTransform(t domain.Transform, impl ports.Transformer) error {
	if err := domain.ValidateTaskName(t.Name.String()); err != nil {
		return err
	}
	if impl == nil {
		return zerr.With(zerr.Wrap(domain.ErrUnknownTransformKind, "no implementation for transform"),
			"task", t.Name.String())
	}
	return r.add(Entry{Transform: &t, Transformer: impl})
}

// RegisterComposite adds a composite task. Members are resolved lazily at run time.
func (r *Registry) RegisterComposite(c domain.CompositeTask) error {
	if err := domain.ValidateTaskName(c.Name.String()); err != nil {
		return err
	}
	if !c.Mode.Valid() {
		return zerr.With(zerr.Wrap(domain.ErrInvalidMode, "invalid composite"), "task", c.Name.String())
	}
	c.Members = append([]domain.InternedString(nil), c.Members...)
	return r.add(Entry{Composite: &c})
}

func (r *Registry) add(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := e.Name()
	if _, exists := r.entries[name]; exists {
		return zerr.With(zerr.Wrap(domain.ErrDuplicateTask, "cannot register task"), "task", name.String())
	}
	r.entries[name] = e
	r.order = append(r.order, name)
	return nil
}

// Resolve looks up a task reference.
func (r *Registry) Resolve(name domain.InternedString) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return Entry{}, zerr.With(zerr.Wrap(domain.ErrUnknownTask, "cannot resolve task"), "task", name.String())
	}
	return e, nil
}

// Names lists registered task names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.Strings(r.order)
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Validate checks that every composite member and every extra reference resolves
// and that composites never contain themselves.
func (r *Registry) Validate(refs ...domain.InternedString) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ref := range refs {
		if _, ok := r.entries[ref]; !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownTask, "dangling task reference"), "task", ref.String())
		}
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[domain.InternedString]int, len(r.entries))
	var path []domain.InternedString

	var visit func(name domain.InternedString) error
	visit = func(name domain.InternedString) error {
		state[name] = visiting
		path = append(path, name)

		if e := r.entries[name]; e.IsComposite() {
			for _, member := range e.Composite.Members {
				if _, ok := r.entries[member]; !ok {
					return zerr.With(
						zerr.With(zerr.Wrap(domain.ErrUnknownTask, "dangling composite member"), "task", member.String()),
						"composite", name.String(),
					)
				}
				switch state[member] {
				case visiting:
					return cycleError(path, member)
				case unvisited:
					if err := visit(member); err != nil {
						return err
					}
				}
			}
		}

		state[name] = visited
		path = path[:len(path)-1]
		return nil
	}

	for _, name := range r.order {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError reports the cycle as "a -> b -> a".
func cycleError(path []domain.InternedString, back domain.InternedString) error {
	start := 0
	for i, n := range path {
		if n == back {
			start = i
			break
		}
	}
	cycle := ""
	for _, n := range path[start:] {
		cycle += n.String() + " -> "
	}
	cycle += back.String()
	return zerr.With(zerr.Wrap(domain.ErrCycleDetected, "composite tasks form a cycle"), "cycle", cycle)
}
