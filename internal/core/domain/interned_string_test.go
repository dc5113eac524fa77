package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/core/domain"
	"gopkg.in/yaml.v3"
)

func TestInternedString(t *testing.T) {
	a := domain.NewInternedString("html")
	b := domain.NewInternedString("html")

	assert.Equal(t, a, b)
	assert.Equal(t, "html", a.String())
	assert.False(t, a.IsZero())
}

func TestInternedString_Zero(t *testing.T) {
	var zero domain.InternedString

	assert.True(t, zero.IsZero())
	assert.Empty(t, zero.String())
}

func TestInternAll_RoundTrip(t *testing.T) {
	names := []string{"html", "svg", "images", "css"}

	interned := domain.InternAll(names)

	assert.Len(t, interned, 4)
	assert.Equal(t, names, domain.Strings(interned))
}

func TestInternedString_YAML(t *testing.T) {
	var out struct {
		Reaction domain.InternedString `yaml:"reaction"`
	}

	err := yaml.Unmarshal([]byte("reaction: css\n"), &out)

	assert.NoError(t, err)
	assert.Equal(t, "css", out.Reaction.String())
}
