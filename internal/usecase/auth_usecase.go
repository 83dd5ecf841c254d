// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"restapi/internal/domain/entity"
	"restapi/internal/domain/service"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// SignupInput defines the data required to register a local account.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Gender    string
	BirthDate *time.Time
}

// SigninInput defines the data required for a user to sign in.
type SigninInput struct {
	Email    string
	Password string
}

// RefreshInput carries the previous token pair.
type RefreshInput struct {
	AccessToken  string
	RefreshToken string
}

// ResetInput carries a reset token and the new password.
type ResetInput struct {
	Token    string
	Password string
}

// --- Output DTOs ---

// AuthOutput is returned by every flow that opens a session.
type AuthOutput struct {
	Tokens *entity.TokenPair
	User   *entity.User
}

// AuthUsecase orchestrates the account lifecycle flows.
type AuthUsecase interface {
	Signup(ctx context.Context, input *SignupInput) (*entity.User, error)
	Signin(ctx context.Context, input *SigninInput) (*AuthOutput, error)
	OAuthLogin(ctx context.Context, profile *service.OAuthProfile) (*AuthOutput, error)
	Activate(ctx context.Context, token string) (*entity.User, error)
	Reactivate(ctx context.Context, email string) (*entity.User, error)
	Refresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error)
	Forgot(ctx context.Context, email string) error
	Reset(ctx context.Context, input *ResetInput) error
	Logout(ctx context.Context, actor *entity.User, refreshToken string) error
}

// TokenIssuer issues, redeems and verifies session tokens.
type TokenIssuer interface {
	// IssueTokenPair signs an access token and persists a fresh refresh session.
	IssueTokenPair(ctx context.Context, user *entity.User) (*entity.TokenPair, error)

	// RedeemRefresh consumes the session bound to both tokens and returns its user.
	RedeemRefresh(ctx context.Context, accessToken, refreshToken string) (*entity.User, error)

	// Revoke ends the session of refreshToken. Unknown tokens are ignored.
	Revoke(ctx context.Context, refreshToken string) error

	// RevokeAll ends every session of the user.
	RevokeAll(ctx context.Context, userID uuid.UUID) error

	// Authenticate resolves an access token to an active, non-deleted user.
	Authenticate(ctx context.Context, accessToken string) (*entity.User, error)
}

// OAuthUsecase runs the social sign-in round trips.
type OAuthUsecase interface {
	// Providers lists the configured provider names.
	Providers() []string

	// Begin returns the consent URL the client is redirected to.
	Begin(ctx context.Context, provider string) (string, error)

	// Complete validates state, exchanges code and signs the user in.
	Complete(ctx context.Context, provider, state, code string) (*AuthOutput, error)

	// SignInWithIDToken signs in with a Google ID token obtained client side.
	SignInWithIDToken(ctx context.Context, idToken string) (*AuthOutput, error)
}
