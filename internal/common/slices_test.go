package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStableDedup(t *testing.T) {
	out, dropped := StableDedup([]string{"a", "b", "a", "c", "b"})

	assert.Equal(t, []string{"a", "b", "c"}, out)
	assert.Equal(t, []string{"a", "b"}, dropped)
}

func TestStableDedup_NilStaysNil(t *testing.T) {
	out, dropped := StableDedup[[]string](nil)

	assert.Nil(t, out)
	assert.Nil(t, dropped)
}

func TestStableDedup_CaseSensitive(t *testing.T) {
	out, dropped := StableDedup([]string{"gcc", "GCC"})

	assert.Equal(t, []string{"gcc", "GCC"}, out)
	assert.Empty(t, dropped)
}

func TestClone(t *testing.T) {
	src := []string{"x", "y"}
	dst := Clone(src)
	dst[0] = "z"

	assert.Equal(t, "x", src[0])
	assert.Nil(t, Clone[[]string](nil))
	assert.NotNil(t, Clone([]string{}))
}

func TestWithout(t *testing.T) {
	assert.Equal(t, []string{"a", "c"}, Without([]string{"a", "b", "c"}, []string{"b", "q"}))
	assert.Equal(t, []string{"a"}, Without([]string{"a"}, nil))
}

func TestFirst(t *testing.T) {
	v, ok := First([]string{"python", "main.py"})
	assert.True(t, ok)
	assert.Equal(t, "python", v)

	_, ok = First([]string{})
	assert.False(t, ok)
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty[[]string](nil))
	assert.True(t, IsEmpty([]string{}))
	assert.False(t, IsEmpty([]string{"gcc"}))
}
