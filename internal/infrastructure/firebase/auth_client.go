package firebase

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"alima/internal/domain/service"
)

// FirebaseAuthClient combines the admin SDK (token and cookie verification,
// account management) with the Identity Toolkit REST API (password sign-in
// and reset emails), which the admin SDK does not cover.
type FirebaseAuthClient struct {
	client  *auth.Client
	toolkit *identitytoolkit.Service
}

func NewFirebaseAuthClient(ctx context.Context, client *auth.Client, apiKey string) (*FirebaseAuthClient, error) {
	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &FirebaseAuthClient{
		client:  client,
		toolkit: toolkit,
	}, nil
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", classify(err)
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) SignIn(ctx context.Context, email, password string) (*service.SignInResult, error) {
	resp, err := f.toolkit.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	return &service.SignInResult{
		UID:          resp.LocalId,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    time.Duration(resp.ExpiresIn) * time.Second,
	}, nil
}

func (f *FirebaseAuthClient) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", &service.IdentityError{Code: service.IdentityInvalidToken, Err: err}
	}

	return token.UID, nil
}

func (f *FirebaseAuthClient) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	cookie, err := f.client.SessionCookie(ctx, idToken, expiresIn)
	if err != nil {
		return "", classify(err)
	}
	return cookie, nil
}

// VerifySessionCookie also checks that the session has not been revoked.
func (f *FirebaseAuthClient) VerifySessionCookie(ctx context.Context, cookie string) (string, error) {
	token, err := f.client.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return "", &service.IdentityError{Code: service.IdentityInvalidToken, Err: err}
	}
	return token.UID, nil
}

func (f *FirebaseAuthClient) RevokeSessions(ctx context.Context, uid string) error {
	if err := f.client.RevokeRefreshTokens(ctx, uid); err != nil {
		return classify(err)
	}
	return nil
}

func (f *FirebaseAuthClient) SendPasswordReset(ctx context.Context, email string) error {
	_, err := f.toolkit.Relyingparty.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	}).Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	return nil
}

// toolkitCodes maps Identity Toolkit error messages. Some messages carry a
// suffix such as "WEAK_PASSWORD : Password should be at least 6 characters".
var toolkitCodes = map[string]string{
	"EMAIL_NOT_FOUND":             service.IdentityUserNotFound,
	"USER_NOT_FOUND":              service.IdentityUserNotFound,
	"INVALID_PASSWORD":            service.IdentityWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":   service.IdentityInvalidCredential,
	"INVALID_EMAIL":               service.IdentityInvalidEmail,
	"MISSING_EMAIL":               service.IdentityInvalidEmail,
	"TOO_MANY_ATTEMPTS_TRY_LATER": service.IdentityTooManyRequests,
	"USER_DISABLED":               service.IdentityUserDisabled,
	"EMAIL_EXISTS":                service.IdentityEmailInUse,
	"WEAK_PASSWORD":               service.IdentityWeakPassword,
}

func classify(err error) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		code := strings.TrimSpace(strings.SplitN(apiErr.Message, ":", 2)[0])
		if mapped, ok := toolkitCodes[code]; ok {
			return &service.IdentityError{Code: mapped, Err: err}
		}
		return &service.IdentityError{Code: code, Err: err}
	}

	switch {
	case auth.IsUserNotFound(err):
		return &service.IdentityError{Code: service.IdentityUserNotFound, Err: err}
	case auth.IsEmailAlreadyExists(err):
		return &service.IdentityError{Code: service.IdentityEmailInUse, Err: err}
	case auth.IsIDTokenInvalid(err), auth.IsIDTokenRevoked(err):
		return &service.IdentityError{Code: service.IdentityInvalidToken, Err: err}
	}

	// The admin SDK validates these locally and only returns plain errors.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "malformed email"):
		return &service.IdentityError{Code: service.IdentityInvalidEmail, Err: err}
	case strings.Contains(msg, "password must be"):
		return &service.IdentityError{Code: service.IdentityWeakPassword, Err: err}
	}
	return err
}
