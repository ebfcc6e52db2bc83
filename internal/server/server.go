package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/batikin/tailor-backend/internal/handler"
	appmw "github.com/batikin/tailor-backend/internal/middleware"
	"github.com/batikin/tailor-backend/internal/realtime"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/batikin/tailor-backend/internal/service"
	"github.com/batikin/tailor-backend/internal/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Options carries the collaborators built in main. Nil Translator, Uploader and
// Hub disable translation, design uploads and the websocket feed respectively.
type Options struct {
	Logger     zerolog.Logger
	Auth       *appmw.AuthMiddleware
	Hub        *realtime.Hub
	Publisher  realtime.Publisher
	Translator service.Translator
	Uploader   service.Uploader
	Now        func() time.Time

	TranslateRPS   float64
	TranslateBurst int

	GitSHA    string
	BuildTime string
}

type dbSetter interface {
	SetDB(db *gorm.DB)
}

type Server struct {
	e       *echo.Echo
	repos   []dbSetter
	dbReady atomic.Bool
}

var (
	ErrAuthRequired       = errors.New("server: auth middleware is required")
	errTranslatorDisabled = errors.New("translator is not configured")
)

type disabledTranslator struct{}

func (disabledTranslator) Translate(context.Context, string, string) (string, error) {
	return "", errTranslatorDisabled
}

// New builds the router. db may be nil; repositories answer ErrDBNotReady until
// SetDB is called.
func New(db *gorm.DB, opts Options) (*Server, error) {
	if opts.Auth == nil {
		return nil, ErrAuthRequired
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(appmw.RequestLogger(opts.Logger))
	e.Use(appmw.Metrics())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization", appmw.HeaderUserID},
		AllowCredentials: true,
		AllowOriginFunc:  allowOrigin,
	}))

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	designRepo := repository.NewDesignRepository(db)

	var pub realtime.Publisher
	switch {
	case opts.Publisher != nil:
		pub = opts.Publisher
	case opts.Hub != nil:
		pub = opts.Hub
	}
	translator := opts.Translator
	if translator == nil {
		translator = disabledTranslator{}
	}

	notifySvc := service.NewNotificationService(notifRepo)
	chatSvc := service.NewChatService(chatRepo, userRepo, pub)
	orderSvc := service.NewOrderService(orderRepo, userRepo, chatSvc, notifySvc, opts.Now)
	userSvc := service.NewUserService(userRepo, orderRepo)
	translateSvc := service.NewTranslationService(chatRepo, translator)
	designSvc := service.NewDesignService(designRepo, userRepo, opts.Uploader)

	orderHandler := handler.NewOrderHandler(orderSvc)
	chatHandler := handler.NewChatHandler(chatSvc, opts.Hub)
	userHandler := handler.NewUserHandler(userSvc)
	translateHandler := handler.NewTranslateHandler(translateSvc)
	designHandler := handler.NewDesignHandler(designSvc)
	notifHandler := handler.NewNotificationHandler(notifySvc)

	s := &Server{
		e:     e,
		repos: []dbSetter{userRepo, chatRepo, orderRepo, notifRepo, designRepo},
	}
	s.dbReady.Store(db != nil)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"ok":         "true",
			"db_ready":   s.dbReady.Load(),
			"git_sha":    opts.GitSHA,
			"build_time": opts.BuildTime,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := appmw.NewRateLimiter(opts.TranslateRPS, opts.TranslateBurst)

	api := e.Group("/api", opts.Auth.RequireAuth)

	api.POST("/me", userHandler.Register)
	api.GET("/me", userHandler.Me)
	api.PUT("/me/measurements", userHandler.UpdateMeasurements)
	api.GET("/tailors", userHandler.ListTailors)
	api.GET("/tailors/:id/completed-count", userHandler.CompletedCount)

	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.Get)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)
	api.POST("/orders/:id/confirm-delivery", orderHandler.ConfirmDelivery)
	api.POST("/orders/:id/complete", orderHandler.Complete)

	api.POST("/chats/check-or-create", chatHandler.CheckOrCreate)
	api.POST("/chats", chatHandler.Create)
	api.GET("/chats", chatHandler.List)
	api.GET("/chats/:id", chatHandler.Get)
	api.GET("/chats/:id/messages", chatHandler.ListMessages)
	api.POST("/chats/:id/messages", chatHandler.SendMessage)
	api.GET("/chats/:id/ws", chatHandler.Stream)

	api.POST("/translate", translateHandler.Translate, limiter.Limit)

	api.POST("/designs", designHandler.Create)
	api.GET("/designs", designHandler.List)
	api.GET("/tags", designHandler.ListTags)

	api.GET("/notifications", notifHandler.List)
	api.POST("/notifications/read", notifHandler.MarkAllRead)

	return s, nil
}

func allowOrigin(origin string) (bool, error) {
	low := strings.ToLower(origin)
	if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
		strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
		return true, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false, nil
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false, nil
	}
	if strings.HasSuffix(u.Hostname(), "vercel.app") {
		return true, nil
	}
	return false, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.e
}

// SetDB hands a late-opened connection to every repository.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
	s.dbReady.Store(db != nil)
}
