package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alima/internal/domain/entity"
	"alima/internal/infrastructure/ratelimit"
	"alima/internal/session"
	"alima/pkg/errors"
)

type fakeVerifier struct {
	tokens  map[string]string
	cookies map[string]string
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, idToken string) (string, error) {
	if uid, ok := f.tokens[idToken]; ok {
		return uid, nil
	}
	return "", errors.Unauthorized("Invalid or expired token", nil)
}

func (f *fakeVerifier) VerifySession(ctx context.Context, cookie string) (string, error) {
	if uid, ok := f.cookies[cookie]; ok {
		return uid, nil
	}
	return "", errors.Unauthorized("Session expired, please sign in again", nil)
}

type fakeProfiles map[string]*entity.User

func (f fakeProfiles) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if u, ok := f[userID]; ok {
		return u, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (f fakeProfiles) UpdateProfile(ctx context.Context, userID string, update entity.ProfileUpdate) (*entity.User, error) {
	u, err := f.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	update.Apply(u)
	return u, nil
}

func newAuth() *AuthMiddleware {
	verifier := &fakeVerifier{
		tokens:  map[string]string{"good-token": "u1", "admin-token": "admin"},
		cookies: map[string]string{"good-cookie": "u1"},
	}
	profiles := fakeProfiles{
		"u1":    {ID: "u1", Role: entity.RoleClient},
		"admin": {ID: "admin", Role: entity.RoleAdmin},
	}
	return NewAuthMiddleware(verifier, profiles)
}

// capture records the session a handler observed.
func capture(got **session.Session) echo.HandlerFunc {
	return func(c echo.Context) error {
		*got = CurrentSession(c)
		return c.NoContent(http.StatusNoContent)
	}
}

func serve(mw echo.MiddlewareFunc, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(h)(c)
	return rec
}

func TestAuthenticateBearer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")

	var sess *session.Session
	rec := serve(newAuth().Authenticate, capture(&sess), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, sess)
	assert.Equal(t, "u1", sess.UserID())
	assert.Equal(t, session.MethodBearer, sess.Method())
}

func TestAuthenticateCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "good-cookie"})

	var sess *session.Session
	rec := serve(newAuth().Authenticate, capture(&sess), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, sess)
	assert.Equal(t, session.MethodCookie, sess.Method())
}

func TestAuthenticateRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
	}{
		{"missing credentials", "", ""},
		{"malformed header", "Token good-token", ""},
		{"empty bearer", "Bearer ", ""},
		{"unknown token", "Bearer nope", ""},
		{"unknown cookie", "", "stale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}

			var sess *session.Session
			rec := serve(newAuth().Authenticate, capture(&sess), req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, sess)
		})
	}
}

func TestQueryTokenOnlyForWebSocket(t *testing.T) {
	auth := newAuth()

	var sess *session.Session
	rec := serve(auth.Authenticate, capture(&sess), httptest.NewRequest(http.MethodGet, "/v1/ws?token=good-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(auth.AuthenticateWebSocket, capture(&sess), httptest.NewRequest(http.MethodGet, "/v1/ws?token=good-token", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, sess)
	assert.Equal(t, "u1", sess.UserID())
}

func TestOptionalLetsAnonymousThrough(t *testing.T) {
	var sess *session.Session
	rec := serve(newAuth().Optional, capture(&sess), httptest.NewRequest(http.MethodGet, "/v1/announcements", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, sess)
}

func TestAdminOnly(t *testing.T) {
	auth := newAuth()
	chain := func(h echo.HandlerFunc) echo.HandlerFunc { return auth.Authenticate(AdminOnly(h)) }

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/applications", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-token")
	var sess *session.Session
	rec := serve(chain, capture(&sess), req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/applications", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer admin-token")
	rec = serve(chain, capture(&sess), req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewRateLimiter()
	limiter.SetPolicy(ratelimit.ActionUpload, ratelimit.Policy{Burst: 2, Every: time.Hour})
	mw := RateLimit(limiter, ratelimit.ActionUpload)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	for i := 0; i < 2; i++ {
		rec := serve(mw, ok, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := serve(mw, ok, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded")
}
