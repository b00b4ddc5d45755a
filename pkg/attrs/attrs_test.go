package attrs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractString(t *testing.T) {
	list := []any{"entity_id", "abc", "count", 3, 42, "stray"}

	assert.Equal(t, "abc", ExtractString(list, "entity_id"))
	assert.Equal(t, "", ExtractString(list, "count"), "non-string value")
	assert.Equal(t, "", ExtractString(list, "missing"))
	assert.Equal(t, "", ExtractString(nil, "entity_id"))
}

func TestExtractInt(t *testing.T) {
	list := []any{"count", 7, "entity_id", "abc"}

	assert.Equal(t, 7, ExtractInt(list, "count"))
	assert.Equal(t, 0, ExtractInt(list, "entity_id"), "non-int value")
	assert.Equal(t, 0, ExtractInt(list, "missing"))
}
