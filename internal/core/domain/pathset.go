package domain

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.trai.ch/zerr"
)

// excludePrefix marks a pattern as an exclusion.
const excludePrefix = "!"

// PathSet is an ordered list of glob patterns relative to the project root.
// Patterns starting with "!" exclude files; exclusions always win over inclusions.
type PathSet []string

// NewPathSet creates a PathSet from the given patterns.
func NewPathSet(patterns ...string) PathSet {
	return PathSet(patterns)
}

// Includes returns the inclusion patterns in declaration order.
func (p PathSet) Includes() []string {
	out := make([]string, 0, len(p))
	for _, pattern := range p {
		if !strings.HasPrefix(pattern, excludePrefix) {
			out = append(out, normalizePattern(pattern))
		}
	}
	return out
}

// Excludes returns the exclusion patterns without their "!" prefix.
func (p PathSet) Excludes() []string {
	out := make([]string, 0, len(p))
	for _, pattern := range p {
		if strings.HasPrefix(pattern, excludePrefix) {
			out = append(out, normalizePattern(strings.TrimPrefix(pattern, excludePrefix)))
		}
	}
	return out
}

// Validate checks every pattern is a well-formed glob and that at least one inclusion exists.
func (p PathSet) Validate() error {
	if len(p.Includes()) == 0 {
		return zerr.With(zerr.Wrap(ErrEmptyPathSet, "invalid path set"), "patterns", p.String())
	}
	for _, pattern := range append(p.Includes(), p.Excludes()...) {
		if !doublestar.ValidatePattern(pattern) {
			return zerr.With(zerr.Wrap(ErrInvalidPattern, "malformed glob"), "pattern", pattern)
		}
	}
	return nil
}

// Match reports whether the slash-separated relative path is selected by the set.
func (p PathSet) Match(rel string) bool {
	rel = path.Clean(strings.TrimPrefix(rel, "./"))

	included := false
	for _, pattern := range p.Includes() {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, pattern := range p.Excludes() {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Bases returns the static directory prefix of every inclusion pattern.
// Walking only these directories is enough to find every matching file.
func (p PathSet) Bases() []string {
	seen := make(map[string]bool)
	var bases []string
	for _, pattern := range p.Includes() {
		base, _ := doublestar.SplitPattern(pattern)
		if !seen[base] {
			seen[base] = true
			bases = append(bases, base)
		}
	}
	return bases
}

// Trim returns rel relative to the longest static base that contains it.
// Output trees mirror the source tree below that base.
func (p PathSet) Trim(rel string) string {
	rel = path.Clean(strings.TrimPrefix(filepathToSlash(rel), "./"))
	best := ""
	for _, base := range p.Bases() {
		if base == "" || base == "." {
			continue
		}
		if strings.HasPrefix(rel, base+"/") && len(base) > len(best) {
			best = base
		}
	}
	if best == "" {
		return rel
	}
	return strings.TrimPrefix(rel, best+"/")
}

// String joins the patterns for logging.
func (p PathSet) String() string {
	return strings.Join(p, " ")
}

func normalizePattern(pattern string) string {
	return strings.TrimPrefix(filepathToSlash(pattern), "./")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
