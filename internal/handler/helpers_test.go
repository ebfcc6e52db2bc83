package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appmw "github.com/batikin/tailor-backend/internal/middleware"
	"github.com/batikin/tailor-backend/internal/model"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/batikin/tailor-backend/internal/testutil"
	"github.com/batikin/tailor-backend/internal/validator"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type translatorFunc func(ctx context.Context, text, target string) (string, error)

func (f translatorFunc) Translate(ctx context.Context, text, target string) (string, error) {
	return f(ctx, text, target)
}

type stubUploader struct {
	paths []string
}

func (u *stubUploader) Upload(_ context.Context, objectPath, _ string, _ []byte) (string, error) {
	u.paths = append(u.paths, objectPath)
	return "https://cdn.example/" + objectPath, nil
}

type apiEnv struct {
	e          *echo.Echo
	conn       *gorm.DB
	clock      *testClock
	translator translatorFunc
	uploader   *stubUploader
	designs    repository.DesignRepository
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	conn := testutil.NewDB(t)
	testutil.SeedUser(t, conn, "cust", model.RoleCustomer)
	testutil.SeedUser(t, conn, "tail", model.RoleTailor)
	testutil.SeedUser(t, conn, "tail2", model.RoleTailor)

	env := &apiEnv{
		conn:     conn,
		uploader: &stubUploader{},
		designs:  repository.NewDesignRepository(conn),
		clock:    &testClock{t: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)},
		translator: func(_ context.Context, text, target string) (string, error) {
			return target + ": " + text, nil
		},
	}

	users := repository.NewUserRepository(conn)
	chats := repository.NewChatRepository(conn)
	orders := repository.NewOrderRepository(conn)
	notifySvc := service.NewNotificationService(repository.NewNotificationRepository(conn))
	chatSvc := service.NewChatService(chats, users, nil)
	orderSvc := service.NewOrderService(orders, users, chatSvc, notifySvc, env.clock.Now)
	translate := translatorFunc(func(ctx context.Context, text, target string) (string, error) {
		return env.translator(ctx, text, target)
	})

	oh := NewOrderHandler(orderSvc)
	ch := NewChatHandler(chatSvc, nil)
	uh := NewUserHandler(service.NewUserService(users, orders))
	th := NewTranslateHandler(service.NewTranslationService(chats, translate))
	nh := NewNotificationHandler(notifySvc)
	dh := NewDesignHandler(service.NewDesignService(env.designs, users, env.uploader))

	e := echo.New()
	e.Validator = validator.New()
	g := e.Group("/api", appmw.NewHeaderAuthMiddleware().RequireAuth)
	g.POST("/me", uh.Register)
	g.GET("/me", uh.Me)
	g.PUT("/me/measurements", uh.UpdateMeasurements)
	g.GET("/tailors", uh.ListTailors)
	g.GET("/tailors/:id/completed-count", uh.CompletedCount)
	g.POST("/orders", oh.Create)
	g.GET("/orders", oh.List)
	g.GET("/orders/:id", oh.Get)
	g.POST("/orders/:id/cancel", oh.Cancel)
	g.POST("/orders/:id/confirm-delivery", oh.ConfirmDelivery)
	g.POST("/orders/:id/complete", oh.Complete)
	g.POST("/chats/check-or-create", ch.CheckOrCreate)
	g.POST("/chats", ch.Create)
	g.GET("/chats", ch.List)
	g.GET("/chats/:id/messages", ch.ListMessages)
	g.POST("/chats/:id/messages", ch.SendMessage)
	g.POST("/translate", th.Translate)
	g.POST("/designs", dh.Create)
	g.GET("/designs", dh.List)
	g.GET("/tags", dh.ListTags)
	g.GET("/notifications", nh.List)
	g.POST("/notifications/read", nh.MarkAllRead)
	env.e = e
	return env
}

// do sends a JSON request as uid (no auth header when uid is empty).
func (a *apiEnv) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if uid != "" {
		req.Header.Set(appmw.HeaderUserID, uid)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decode(t, rec)["error"].(string)
	return msg
}

func createOrder(t *testing.T, a *apiEnv) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/orders", "cust", map[string]string{"tailor_id": "tail", "design_url": "d.png"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode(t, rec)["order"].(map[string]interface{})
	return order["order_id"].(string)
}
