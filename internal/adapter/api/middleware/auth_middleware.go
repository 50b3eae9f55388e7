package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"alima/internal/session"
	"alima/pkg/errors"
	"alima/pkg/response"
)

// SessionCookieName is the cookie holding the identity provider session.
const SessionCookieName = "alima_session"

// TokenVerifier resolves credentials to a user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
	VerifySession(ctx context.Context, cookie string) (string, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	profiles session.ProfileStore
}

func NewAuthMiddleware(verifier TokenVerifier, profiles session.ProfileStore) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		profiles: profiles,
	}
}

// Authenticate accepts a Bearer ID token or the session cookie and stores
// an explicit session for the request.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := m.resolve(c, false)
		if err != nil {
			return response.Error(c, err)
		}
		attach(c, sess)
		return next(c)
	}
}

// AuthenticateWebSocket also accepts ?token=, since browsers cannot set
// headers on a websocket handshake.
func (m *AuthMiddleware) AuthenticateWebSocket(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := m.resolve(c, true)
		if err != nil {
			return response.Error(c, err)
		}
		attach(c, sess)
		return next(c)
	}
}

// Optional attaches a session when valid credentials are present and lets
// anonymous requests through otherwise.
func (m *AuthMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if sess, err := m.resolve(c, false); err == nil {
			attach(c, sess)
		}
		return next(c)
	}
}

func (m *AuthMiddleware) resolve(c echo.Context, allowQuery bool) (*session.Session, error) {
	ctx := c.Request().Context()

	if header := c.Request().Header.Get(echo.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return nil, errors.Unauthorized("Invalid authorization format", nil)
		}
		uid, err := m.verifier.VerifyToken(ctx, parts[1])
		if err != nil {
			return nil, err
		}
		return session.New(uid, session.MethodBearer, m.profiles), nil
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		uid, err := m.verifier.VerifySession(ctx, cookie.Value)
		if err != nil {
			return nil, err
		}
		return session.New(uid, session.MethodCookie, m.profiles), nil
	}

	if token := c.QueryParam("token"); allowQuery && token != "" {
		uid, err := m.verifier.VerifyToken(ctx, token)
		if err != nil {
			return nil, err
		}
		return session.New(uid, session.MethodBearer, m.profiles), nil
	}

	return nil, errors.Unauthorized("Authentication required", nil)
}

func attach(c echo.Context, sess *session.Session) {
	c.Set("uid", sess.UserID())
	c.SetRequest(c.Request().WithContext(session.WithSession(c.Request().Context(), sess)))
}

// CurrentSession returns the session stored by Authenticate, or nil on
// public routes.
func CurrentSession(c echo.Context) *session.Session {
	return session.FromContext(c.Request().Context())
}

// CurrentUserID is CurrentSession(c).UserID() with a nil check.
func CurrentUserID(c echo.Context) string {
	if sess := CurrentSession(c); sess != nil {
		return sess.UserID()
	}
	return ""
}
