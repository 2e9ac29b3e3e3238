package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "astrasreport/internal/errors"
	"astrasreport/internal/shared/testutil"
)

func TestClientLogHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
		wantMsg    string
	}{
		{
			name:       "chart failure",
			body:       `{"level":"error","message":"chart rendering failed","session_id":"abc","source":"dashboard"}`,
			wantStatus: http.StatusNoContent,
			wantLevel:  slog.LevelError,
			wantMsg:    "chart rendering failed",
		},
		{
			name:       "level defaults to info",
			body:       `{"message":"page loaded"}`,
			wantStatus: http.StatusNoContent,
			wantLevel:  slog.LevelInfo,
			wantMsg:    "page loaded",
		},
		{
			name:       "unknown level",
			body:       `{"level":"fatal","message":"x"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing message",
			body:       `{"level":"warn"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handlerLog := testutil.NewTestLogger(t)
			h := NewClientLogHandler(logger, apierrors.NewErrorHandler(logger, false))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/client-log", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			h.Handle(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantMsg != "" {
				testutil.AssertLogContains(t, handlerLog, tt.wantLevel, tt.wantMsg)
			}
		})
	}
}
