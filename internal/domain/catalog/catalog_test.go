package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSet(t *testing.T) {
	s := NewIDSet("a", "b", "")

	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
	assert.False(t, s.Contains("c"))
	assert.False(t, s.Contains(""), "empty ids are not members")

	assert.True(t, s.Intersects(NewIDSet("b", "z")))
	assert.False(t, s.Intersects(NewIDSet("x", "y")))
	assert.False(t, s.Intersects(NewIDSet()))
	assert.False(t, NewIDSet().Intersects(s))

	assert.Equal(t, []EntityID{"a", "b"}, s.Slice())
}

func TestProduct_AllowsFlavor(t *testing.T) {
	p := Product{FlavorIDs: []EntityID{"vanilla", "chocolate"}}

	assert.True(t, p.AllowsFlavor("chocolate"))
	assert.False(t, p.AllowsFlavor("matcha"))
	assert.False(t, Product{}.AllowsFlavor("vanilla"))
}

func TestProduct_DiameterMultiplier(t *testing.T) {
	p := testProduct()

	m, ok := p.DiameterMultiplier("d20")
	assert.True(t, ok)
	assert.True(t, dec("1.5").Equal(m))

	_, ok = p.DiameterMultiplier("d99")
	assert.False(t, ok)

	_, ok = p.DiameterMultiplier("")
	assert.False(t, ok, "empty id never matches a config")
}
