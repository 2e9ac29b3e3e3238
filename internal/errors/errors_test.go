package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusNotFound, "NOT_FOUND", "missing", map[string]string{"id": "42"})

	assert.Equal(t, http.StatusNotFound, err.StatusCode)
	assert.Equal(t, "NOT_FOUND", err.ErrorCode)
	assert.Equal(t, map[string]string{"id": "42"}, err.Details)
}

func TestErrRenderFailed(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrRenderFailed.StatusCode)
	assert.Equal(t, "RENDER_FAILED", ErrRenderFailed.ErrorCode)
}

func TestHelperConstructors(t *testing.T) {
	t.Run("invalid request carries cause", func(t *testing.T) {
		err := InvalidRequestWithError(fmt.Errorf("unexpected EOF"))
		assert.Equal(t, "unexpected EOF", err.Details)
	})

	t.Run("validation error names field", func(t *testing.T) {
		err := ErrValidation("months", "unknown month")
		require.IsType(t, ValidationError{}, err.Details)
		assert.Equal(t, "months", err.Details.(ValidationError).Field)
	})

	t.Run("unknown view quotes name", func(t *testing.T) {
		err := UnknownViewError("pivot3")
		assert.Equal(t, http.StatusNotFound, err.StatusCode)
		assert.Contains(t, err.Message, `"pivot3"`)
	})
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, TypeNotFound, decoded["type"])
	assert.Equal(t, "abc", decoded["trace_id"])
	assert.Equal(t, "/x", decoded["instance"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"], "extensions never override standard members")
	assert.NotContains(t, decoded, "detail")
}
