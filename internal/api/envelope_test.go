package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEnvelope(t *testing.T, v any) map[string]any {
	t.Helper()

	out, err := EnvelopeTransformer(nil, "", v)
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func TestEnvelope_SuccessShape(t *testing.T) {
	decoded := marshalEnvelope(t, map[string]string{"hello": "world"})

	assert.Equal(t, "1", decoded["v"], `version field must be named "v"`)
	assert.Equal(t, true, decoded["success"])
	assert.Equal(t, map[string]any{"hello": "world"}, decoded["data"])
	assert.NotContains(t, decoded, "error")
	assert.NotContains(t, decoded, "code")
}

func TestEnvelope_SimpleErrorShape(t *testing.T) {
	decoded := marshalEnvelope(t, errors.New("something broke"))

	assert.Equal(t, "1", decoded["v"])
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "something broke", decoded["error"])
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "code")
}

func TestEnvelope_DetailedErrorShape(t *testing.T) {
	apiErr := &APIError{
		Code:    "TAG_IN_USE",
		Message: "tag is attached to posts",
		Details: map[string]int{"usage_count": 3},
	}

	decoded := marshalEnvelope(t, apiErr)

	assert.Equal(t, "1", decoded["v"])
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "tag is attached to posts", decoded["error"])
	assert.Equal(t, "TAG_IN_USE", decoded["code"])
	assert.Equal(t, "tag is attached to posts", decoded["message"])
	assert.Equal(t, map[string]any{"usage_count": float64(3)}, decoded["details"])
	assert.NotContains(t, decoded, "data")
}

func TestEnvelope_WrapsOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decoded))

	assert.Equal(t, "1", decoded["v"])
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, decoded, "data")
}
