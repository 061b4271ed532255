package bindingkey

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/damianw/dagger/typemodel"
)

func TestKeyIdentity(t *testing.T) {
	clock := typemodel.MakeRef("example.com/app", "Clock")
	other := typemodel.MakeRef("example.com/app", "Cache")

	assert.Equal(t, New(clock), New(clock))
	assert.NotEqual(t, New(clock), New(other))
	assert.NotEqual(t, New(clock), Qualified(clock, "wall"))
	assert.Equal(t, Qualified(clock, "wall"), Qualified(clock, "wall"))

	seen := map[Key]bool{
		New(clock):               true,
		Qualified(clock, "wall"): true,
	}
	assert.Len(t, seen, 2)
}

func TestKeyString(t *testing.T) {
	clock := typemodel.MakeRef("example.com/app", "Clock")
	assert.Equal(t, "example.com/app.Clock", New(clock).String())
	assert.Equal(t, "@wall example.com/app.Clock", Qualified(clock, "wall").String())
}

func TestKeyIsZero(t *testing.T) {
	assert.True(t, Key{}.IsZero())
	assert.False(t, New(typemodel.MakeRef("example.com/app", "Clock")).IsZero())
}
