package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	log := logger.NewNopLogger()
	r.Use(RequestID(), Logger(log), Recovery(log))
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return r
}

func TestRequestID(t *testing.T) {
	r := newEngine()

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"generated when absent", "", false},
		{"kept when uuid", "0b7f2a4e-3c55-4a53-9a1e-7f6d2a1c9b10", true},
		{"kept when alphanumeric", "abc123", true},
		{"replaced when unsafe", "bad id\nInjected: 1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			if tc.incoming != "" {
				req.Header.Set(HeaderRequestID, tc.incoming)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			got := w.Header().Get(HeaderRequestID)
			assert.Equal(t, got, w.Body.String())
			if tc.keep {
				assert.Equal(t, tc.incoming, got)
			} else {
				_, err := uuid.Parse(got)
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

type recordedLine struct {
	level  string
	fields map[string]interface{}
}

type recordingLogger struct {
	logger.Interface
	lines []recordedLine
}

func (l *recordingLogger) record(level string, kv []interface{}) {
	fields := map[string]interface{}{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[kv[i].(string)] = kv[i+1]
	}
	l.lines = append(l.lines, recordedLine{level: level, fields: fields})
}

func (l *recordingLogger) Debugw(_ string, kv ...interface{}) { l.record("debug", kv) }
func (l *recordingLogger) Warnw(_ string, kv ...interface{})  { l.record("warn", kv) }
func (l *recordingLogger) Errorw(_ string, kv ...interface{}) { l.record("error", kv) }

func TestLogger(t *testing.T) {
	log := &recordingLogger{Interface: logger.NewNopLogger()}
	r := gin.New()
	r.Use(RequestID(), Logger(log))
	r.POST("/vouchers/:id/claim", func(c *gin.Context) { c.Status(http.StatusConflict) })
	r.GET("/wallets/:wallet_id/unclaimed-count", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/vouchers/abc/claim", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wallets/W1/unclaimed-count", nil))

	require.Len(t, log.lines, 2)

	assert.Equal(t, "warn", log.lines[0].level)
	assert.Equal(t, "abc", log.lines[0].fields["voucher_id"])
	assert.Equal(t, "/vouchers/:id/claim", log.lines[0].fields["route"])
	assert.NotEmpty(t, log.lines[0].fields["request_id"])

	assert.Equal(t, "debug", log.lines[1].level)
	assert.Equal(t, "W1", log.lines[1].fields["wallet_id"])
	assert.NotContains(t, log.lines[1].fields, "voucher_id")
}
