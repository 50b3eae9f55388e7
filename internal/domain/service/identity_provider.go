package service

import (
	"context"
	"fmt"
	"time"
)

// Identity provider error codes, independent of the provider's own wire
// codes.
const (
	IdentityUserNotFound      = "user-not-found"
	IdentityWrongPassword     = "wrong-password"
	IdentityInvalidCredential = "invalid-credential"
	IdentityInvalidEmail      = "invalid-email"
	IdentityTooManyRequests   = "too-many-requests"
	IdentityUserDisabled      = "user-disabled"
	IdentityEmailInUse        = "email-already-in-use"
	IdentityWeakPassword      = "weak-password"
	IdentityInvalidToken      = "invalid-token"
)

// IdentityError carries a provider failure. Code is one of the Identity*
// constants, or the provider's raw code when it has no equivalent.
type IdentityError struct {
	Code string
	Err  error
}

func (e *IdentityError) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

type SignInResult struct {
	UID          string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// IdentityProvider is the managed authentication backend.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
	CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string) (string, error)
	RevokeSessions(ctx context.Context, uid string) error
	SendPasswordReset(ctx context.Context, email string) error
}
