package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "should vanish"))
}

func TestHasCode_WalksChain(t *testing.T) {
	base := errors.New("connection refused")
	wrapped := Wrap(base, CodeUnavailable, "store unreachable")
	outer := Wrap(wrapped, CodeInternal, "evaluation failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeUnavailable))
	assert.False(t, HasCode(outer, CodeNotFound))
}

func TestHasCode_StdlibWrapping(t *testing.T) {
	coded := New(CodeNotFound, "framework not found")
	err := fmt.Errorf("evaluate: %w", coded)

	assert.True(t, HasCode(err, CodeNotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "nope")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("uncoded")))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInternal, http.StatusInternalServerError},
		{Code("unknown"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ToHTTPStatus(tc.code), string(tc.code))
	}
}

func TestUnwrap_PreservesCause(t *testing.T) {
	base := errors.New("row not found")
	err := Wrap(base, CodeNotFound, "entity missing")
	require.ErrorIs(t, err, base)
}
