package httpx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string  `json:"email" validate:"required,email"`
	Title *string `json:"title" validate:"omitnil,min=1,max=5"`
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"email":"a@b.io"}`, ""},
		{"ok with title", `{"email":"a@b.io","title":"hey"}`, ""},
		{"invalid json", `{`, "invalid json"},
		{"missing email", `{}`, "email is required"},
		{"bad email", `{"email":"nope"}`, "email must be a valid email"},
		{"empty title", `{"email":"a@b.io","title":""}`, "title must be at least 1 characters"},
		{"long title", `{"email":"a@b.io","title":"toolong"}`, "title must be at most 5 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sampleRequest
			err := Decode(req, &v)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrBadRequest)
			require.Equal(t, tt.wantErr, Message(err))
		})
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusNotFound, "note not found")

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Equal(t, "note not found", body["error"])
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusUnauthorized, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			h := middleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))

			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			h.ServeHTTP(httptest.NewRecorder(), req)

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			require.Equal(t, tt.level, rec["level"])
			require.Equal(t, "GET", rec["method"])
			require.Equal(t, "/notes", rec["path"])
			require.Equal(t, float64(tt.status), rec["status"])
			require.NotEmpty(t, rec["request_id"])
		})
	}
}
