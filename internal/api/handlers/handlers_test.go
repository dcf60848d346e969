package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
)

// envelope mirrors utils.SuccessResponse/ErrorResponse for decoding
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   utils.ErrorDetail `json:"error"`
}

func newJSONRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asAccount(req *http.Request, id int64) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.AccountIDKey, id)
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), "body: %s", rr.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func stringsReader(s string) *bytes.Reader {
	return bytes.NewReader([]byte(s))
}
