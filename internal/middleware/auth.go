package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/batikin/tailor-backend/internal/reqctx"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// HeaderUserID carries the caller id when AUTH_MODE=header (local development only).
const HeaderUserID = "X-User-ID"

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthMiddleware struct {
	verifier   TokenVerifier
	headerMode bool
}

// NewFirebaseVerifier builds a Firebase auth client for projectID.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*auth.Client, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// NewHeaderAuthMiddleware trusts the X-User-ID header without verification.
func NewHeaderAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{headerMode: true}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, err := m.identify(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
		}
		c.Set("uid", uid)

		req := c.Request()
		l := zerolog.Ctx(req.Context()).With().Str("user_id", uid).Logger()
		ctx := reqctx.WithUID(l.WithContext(req.Context()), uid)
		c.SetRequest(req.WithContext(ctx))
		return next(c)
	}
}

func (m *AuthMiddleware) identify(c echo.Context) (string, error) {
	if m.headerMode {
		uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
		if uid == "" {
			return "", errors.New("unauthorized")
		}
		return uid, nil
	}
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", errors.New("unauthorized")
	}
	token, err := m.verifier.VerifyIDToken(c.Request().Context(), strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Debug().Err(err).Msg("id token rejected")
		return "", errors.New("invalid_token")
	}
	return token.UID, nil
}
