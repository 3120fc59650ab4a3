package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), target), "body: %s", recorder.Body.String())
}

func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, recorder.Code, "body: %s", recorder.Body.String())
}

func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	assert.Equal(t, expected, recorder.Header().Get("Content-Type"))
}

// assertJSONError checks for an {"error": message} body.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, message string) {
	t.Helper()
	var body errorResponse
	parseJSONResponse(t, recorder, &body)
	assert.Equal(t, message, body.Error)
}
