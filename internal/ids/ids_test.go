package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIsUniqueAndValid(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a, b)
	assert.True(t, Valid(a))
	assert.False(t, Valid("not-a-ksuid"))
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("order")
	assert.True(t, strings.HasPrefix(id, "order-"))
	assert.True(t, Valid(strings.TrimPrefix(id, "order-")))
}
