// Package testutil drives gin engines and decodes the response envelope in
// handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Envelope mirrors utils.APIResponse with Data left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

type EnvelopeError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Do sends method+path through engine. A non-nil body is sent as JSON.
func Do(engine http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		payload = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// Decode parses the response envelope.
func Decode(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// DecodeData parses the envelope's data field into target.
func DecodeData(t testing.TB, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	env := Decode(t, w)
	require.True(t, env.Success, "body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, target))
}
