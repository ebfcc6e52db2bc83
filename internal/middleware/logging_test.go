package middleware

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/batikin/tailor-backend/internal/reqctx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_AttachesScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	e := echo.New()
	e.Use(echomw.RequestID(), RequestLogger(base))
	e.GET("/orders/:id", func(c echo.Context) error {
		assert.Equal(t, "rid-123", reqctx.RID(c.Request().Context()))
		zerolog.Ctx(c.Request().Context()).Info().Msg("inside handler")
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Order not found or unauthorized"})
	}, NewHeaderAuthMiddleware().RequireAuth)

	req := httptest.NewRequest(http.MethodGet, "/orders/o-1", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-123")
	req.Header.Set(HeaderUserID, "cust")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var lines []map[string]interface{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)

	assert.Equal(t, "inside handler", lines[0]["message"])
	assert.Equal(t, "rid-123", lines[0]["request_id"])
	assert.Equal(t, "cust", lines[0]["user_id"])

	assert.Equal(t, "request", lines[1]["message"])
	assert.Equal(t, "warn", lines[1]["level"])
	assert.Equal(t, "/orders/:id", lines[1]["path"])
	assert.EqualValues(t, 404, lines[1]["status"])
}
