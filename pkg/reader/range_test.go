package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringRange(t *testing.T) {
	r := Between(2, 5)
	assert.Equal(t, 3, r.Length())
	assert.False(t, r.IsEmpty())
	assert.Equal(t, "llo", r.Get("hello world"))
	assert.Equal(t, "[2,5)", r.String())

	assert.True(t, At(4).IsEmpty())
	assert.Equal(t, "", At(4).Get("hello"))
}

func TestEncompassing(t *testing.T) {
	assert.Equal(t, Between(1, 9), Encompassing(Between(1, 3), Between(5, 9)))
	assert.Equal(t, Between(1, 9), Encompassing(Between(5, 9), Between(1, 3)))
	assert.Equal(t, Between(0, 4), Encompassing(At(0), Between(2, 4)))
}

func TestStringRange_Compare(t *testing.T) {
	assert.Equal(t, -1, Between(0, 1).Compare(Between(1, 1)))
	assert.Equal(t, 1, Between(1, 3).Compare(Between(1, 2)))
	assert.Equal(t, 0, Between(6, 7).Compare(Between(6, 7)))
}
