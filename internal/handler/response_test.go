package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"wrapped sentinel", fmt.Errorf("cancel: %w", service.ErrCancelWindowPassed), http.StatusBadRequest, "Order cannot be cancelled after 24 hours"},
		{"conflict", service.ErrChatExists, http.StatusConflict, "Chat already exists"},
		{"translation", &service.TranslationError{Err: errors.New("quota")}, http.StatusInternalServerError, "Translation failed: quota"},
		{"db not ready", repository.ErrDBNotReady, http.StatusServiceUnavailable, "Service is starting, try again shortly"},
		{"store failure", errors.New("connection reset"), http.StatusInternalServerError, "connection reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			assert.NoError(t, writeServiceError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, errorOf(t, rec))
		})
	}
}
