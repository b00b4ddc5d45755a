package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "custos/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseEntityID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseEntityID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseFrameworkID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseEntityID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, EntityID(validUUID), id)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		orig := OrganizationID(uuid.New())
		parsed, err := ParseOrganizationID(orig.String())
		require.NoError(t, err)
		assert.Equal(t, orig, parsed)
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	entityID := EntityID(uuid.New())
	frameworkID := FrameworkID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ EntityID = frameworkID   // compile error
	// var _ FrameworkID = entityID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(entityID), uuid.UUID(frameworkID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, EntityID(uuid.Nil).IsNil())
	assert.False(t, EntityID(uuid.New()).IsNil())
	assert.True(t, TaskID{}.IsNil())
}
