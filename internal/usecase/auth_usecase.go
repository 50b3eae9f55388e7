package usecase

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"time"

	"alima/internal/domain/entity"
	"alima/internal/domain/repository"
	"alima/internal/domain/service"
	"alima/internal/infrastructure/events"
	"alima/internal/infrastructure/ratelimit"
	"alima/pkg/errors"
	"alima/pkg/logger"
)

const (
	// RememberedSessionTTL is the lifetime of a persistent session cookie.
	RememberedSessionTTL = 14 * 24 * time.Hour
	// BrowserSessionTTL bounds a session cookie that is dropped when the
	// browser closes.
	BrowserSessionTTL = 24 * time.Hour
)

type AuthUseCase struct {
	userRepo    repository.UserRepository
	identity    service.IdentityProvider
	users       *UserUseCase
	publisher   events.Publisher
	rateLimiter *ratelimit.RateLimiter
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	identity service.IdentityProvider,
	users *UserUseCase,
	publisher events.Publisher,
	rateLimiter *ratelimit.RateLimiter,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:    userRepo,
		identity:    identity,
		users:       users,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Phone       string
}

type SignInInput struct {
	Email    string
	Password string
	Remember bool
}

type AuthResult struct {
	User         *entity.User
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration

	// SessionCookie is set by SignIn. CookieMaxAge is zero for a browser
	// session cookie.
	SessionCookie string
	CookieMaxAge  time.Duration
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := uc.throttle(email); err != nil {
		return nil, err
	}

	uid, err := uc.identity.CreateUser(ctx, email, input.Password, input.DisplayName)
	if err != nil {
		logger.Warn("Register: identity provider rejected %s: %v", email, err)
		return nil, IdentityFailure(err)
	}

	now := time.Now()
	user := &entity.User{
		ID:          uid,
		Email:       email,
		DisplayName: input.DisplayName,
		Phone:       input.Phone,
		Role:        entity.RoleClient,
		Status:      entity.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		logger.Error("Register: identity %s created but profile write failed: %v", uid, err)
		return nil, errors.FromStore(err, "Failed to create user record")
	}

	publish(ctx, uc.publisher, events.UserRegistered, map[string]interface{}{
		"user_id": uid,
		"email":   email,
	})

	signIn, err := uc.identity.SignIn(ctx, email, input.Password)
	if err != nil {
		return nil, IdentityFailure(err)
	}

	return &AuthResult{
		User:         user,
		IDToken:      signIn.IDToken,
		RefreshToken: signIn.RefreshToken,
		ExpiresIn:    signIn.ExpiresIn,
	}, nil
}

// SignIn authenticates with email and password and mints a session cookie.
// Remember selects a persistent cookie; otherwise the cookie lives for the
// browser session and the server accepts it for BrowserSessionTTL.
func (uc *AuthUseCase) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := uc.throttle(email); err != nil {
		return nil, err
	}

	signIn, err := uc.identity.SignIn(ctx, email, input.Password)
	if err != nil {
		logger.Warn("SignIn failed for %s: %v", email, err)
		return nil, IdentityFailure(err)
	}

	validity, maxAge := BrowserSessionTTL, time.Duration(0)
	if input.Remember {
		validity, maxAge = RememberedSessionTTL, RememberedSessionTTL
	}
	cookie, err := uc.identity.CreateSessionCookie(ctx, signIn.IDToken, validity)
	if err != nil {
		return nil, IdentityFailure(err)
	}

	user, err := uc.users.GetProfile(ctx, signIn.UID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, err
		}
		user, err = uc.createMissingProfile(ctx, signIn.UID, email)
		if err != nil {
			return nil, err
		}
	}

	return &AuthResult{
		User:          user,
		IDToken:       signIn.IDToken,
		RefreshToken:  signIn.RefreshToken,
		ExpiresIn:     signIn.ExpiresIn,
		SessionCookie: cookie,
		CookieMaxAge:  maxAge,
	}, nil
}

// createMissingProfile covers accounts created directly in the identity
// provider.
func (uc *AuthUseCase) createMissingProfile(ctx context.Context, uid, email string) (*entity.User, error) {
	now := time.Now()
	user := &entity.User{
		ID:          uid,
		Email:       email,
		DisplayName: strings.Split(email, "@")[0],
		Role:        entity.RoleClient,
		Status:      entity.UserStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil && !errors.Is(err, "CONFLICT") {
		return nil, errors.FromStore(err, "Failed to create user record")
	}
	logger.Info("Created missing profile for %s", uid)
	return user, nil
}

// SignOut revokes every session of the user.
func (uc *AuthUseCase) SignOut(ctx context.Context, userID string) error {
	if err := uc.identity.RevokeSessions(ctx, userID); err != nil {
		logger.Error("SignOut: revoke sessions for %s: %v", userID, err)
		return IdentityFailure(err)
	}
	return nil
}

func (uc *AuthUseCase) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := uc.throttle(email); err != nil {
		return err
	}
	if err := uc.identity.SendPasswordReset(ctx, email); err != nil {
		return IdentityFailure(err)
	}
	return nil
}

// VerifyToken resolves a bearer ID token to a user id.
func (uc *AuthUseCase) VerifyToken(ctx context.Context, idToken string) (string, error) {
	uid, err := uc.identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return uid, nil
}

// VerifySession resolves a session cookie to a user id.
func (uc *AuthUseCase) VerifySession(ctx context.Context, cookie string) (string, error) {
	uid, err := uc.identity.VerifySessionCookie(ctx, cookie)
	if err != nil {
		return "", errors.Unauthorized("Session expired, please sign in again", err)
	}
	return uid, nil
}

func (uc *AuthUseCase) throttle(email string) error {
	if uc.rateLimiter == nil {
		return nil
	}
	if allowed, wait := uc.rateLimiter.Allow(email, ratelimit.ActionAuth); !allowed {
		return errors.TooManyRequests("Too many attempts. Please try again later", wait)
	}
	return nil
}

type identityMessage struct {
	status  int
	message string
}

var identityMessages = map[string]identityMessage{
	service.IdentityUserNotFound:      {http.StatusUnauthorized, "No account found with this email"},
	service.IdentityWrongPassword:     {http.StatusUnauthorized, "Incorrect email or password"},
	service.IdentityInvalidCredential: {http.StatusUnauthorized, "Incorrect email or password"},
	service.IdentityInvalidEmail:      {http.StatusBadRequest, "The email address is not valid"},
	service.IdentityTooManyRequests:   {http.StatusTooManyRequests, "Too many attempts. Please try again later"},
	service.IdentityUserDisabled:      {http.StatusForbidden, "This account has been disabled"},
	service.IdentityEmailInUse:        {http.StatusConflict, "An account already exists with this email"},
	service.IdentityWeakPassword:      {http.StatusBadRequest, "Password must be at least 6 characters"},
	service.IdentityInvalidToken:      {http.StatusUnauthorized, "Session expired, please sign in again"},
}

// IdentityFailure turns an identity provider error into a user-facing
// AppError. Codes without a known message fall through to a generic one
// carrying the raw error.
func IdentityFailure(err error) error {
	var idErr *service.IdentityError
	if stderrors.As(err, &idErr) {
		if m, ok := identityMessages[idErr.Code]; ok {
			return errors.New("AUTH_"+strings.ToUpper(strings.ReplaceAll(idErr.Code, "-", "_")), m.message, m.status, err)
		}
	}
	return errors.New("AUTH_FAILED", "Authentication failed: "+err.Error(), http.StatusUnauthorized, err)
}
