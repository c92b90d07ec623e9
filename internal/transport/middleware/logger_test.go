package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mutationwave/entitlements/pkg/ctxutil"
)

func newBufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusTooManyRequests, `"level":"WARN"`},
		{http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			req := httptest.NewRequest(http.MethodPost, "/me/mutations", nil)
			Logger(newBufferLogger(&buf))(handler).ServeHTTP(httptest.NewRecorder(), req)

			out := buf.String()
			assert.Contains(t, out, "http.request")
			assert.Contains(t, out, "/me/mutations")
			assert.Contains(t, out, tt.level)
		})
	}
}

func TestLogger_IncludesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ctxutil.WithRequestID(req.Context(), "test-request-id-123"))

	Logger(newBufferLogger(&buf))(okHandler()).ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), "test-request-id-123")
}

func TestLogger_ReportsUserSetByInnerMiddleware(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	setUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ctxutil.WithUserID(r.Context(), "u-77")))
		})
	}

	handler := Logger(newBufferLogger(&buf))(setUser(TrackRequest(okHandler())))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Contains(t, buf.String(), `"user_id":"u-77"`)
}
