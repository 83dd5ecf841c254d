package impl

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/service"
	"restapi/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "Aa1!aaaa"

func signupInput(email string) *usecase.SignupInput {
	return &usecase.SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  testPassword,
	}
}

// signupActive registers and activates a user.
func (f *authFixtures) signupActive(t *testing.T, email string) *entity.User {
	t.Helper()

	user, err := f.auth.Signup(context.Background(), signupInput(email))
	require.NoError(t, err)
	user, err = f.auth.Activate(context.Background(), user.Activation.Token)
	require.NoError(t, err)

	return user
}

func TestAuthService_Signup_Success(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	input := signupInput("  Ada@Example.COM ")
	input.Phone = "+1 415 555 2671"

	user, err := f.auth.Signup(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "+14155552671", user.Phone)
	assert.Equal(t, entity.RoleUser, user.Role)
	assert.Equal(t, entity.GenderNA, user.Gender)
	assert.False(t, user.Active)
	require.NotNil(t, user.Activation)
	assert.Len(t, user.Activation.Token, activationCodeDigits)
	assert.True(t, f.hasher.Check(testPassword, user.PasswordHash))
	assert.Equal(t, []string{entity.EventSignup}, f.bus.names())
	f.notifier.AssertCalled(t, "SendActivationMail", mock.Anything, mock.Anything)
	f.notifier.AssertCalled(t, "SendActivationSMS", mock.Anything, mock.Anything)

	raw, err := json.Marshal(entity.NewUserView(user))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), user.PasswordHash)
	assert.NotContains(t, string(raw), user.Activation.Token)
}

func TestAuthService_Signup_DuplicateEmail(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	second := signupInput("ADA@example.com")
	second.FirstName = "Someone"
	_, err = f.auth.Signup(ctx, second)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateKey))

	var appErr *domainerrors.BaseError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.FieldErrors(), 1)
	assert.Equal(t, "email", appErr.FieldErrors()[0].Field)
}

func TestAuthService_Signup_InvalidPhone(t *testing.T) {
	f := newAuthFixtures(t)

	input := signupInput("ada@example.com")
	input.Phone = "call me"

	_, err := f.auth.Signup(context.Background(), input)

	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestAuthService_Signup_PasswordBeyondBcryptLimit(t *testing.T) {
	f := newAuthFixtures(t)

	input := signupInput("ada@example.com")
	input.Password = testPassword + strings.Repeat("a", entity.MaxPasswordBytes)

	_, err := f.auth.Signup(context.Background(), input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	var appErr *domainerrors.BaseError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.FieldErrors(), 1)
	assert.Equal(t, "password", appErr.FieldErrors()[0].Field)
	assert.Empty(t, f.store.users)
	f.notifier.AssertNotCalled(t, "SendActivationMail", mock.Anything, mock.Anything)
}

func TestAuthService_Signup_NotificationFailureIsIgnored(t *testing.T) {
	f := newAuthFixtures(t)
	f.notifier.On("SendActivationMail", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f.notifier.On("SendActivationSMS", mock.Anything, mock.Anything).Return(errors.New("twilio down"))

	user, err := f.auth.Signup(context.Background(), signupInput("ada@example.com"))

	require.NoError(t, err)
	assert.NotNil(t, user)
	f.notifier.AssertExpectations(t)
}

func TestAuthService_Signin_BeforeActivation(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	_, err = f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrNotActive))
	assert.NotContains(t, err.Error(), "/activate/")
}

func TestAuthService_Signin_DevelopmentHint(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	f.auth.development = true
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	_, err = f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})

	var appErr *domainerrors.BaseError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Message(), "/api/v1/auth/activate/"+user.Activation.Token)
}

func TestAuthService_Signin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "success", email: "ada@example.com", password: testPassword},
		{name: "email is case insensitive", email: "ADA@example.com", password: testPassword},
		{name: "wrong password", email: "ada@example.com", password: "Bb2@bbbb", wantErr: domainerrors.ErrInvalidCredentials},
		{name: "unknown email", email: "bob@example.com", password: testPassword, wantErr: domainerrors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixtures(t)
			f.acceptAllNotifications()
			user := f.signupActive(t, "ada@example.com")

			out, err := f.auth.Signin(context.Background(), &usecase.SigninInput{Email: tt.email, Password: tt.password})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, out.User.ID)
			assert.Equal(t, "JWT", out.Tokens.TokenType)
			assert.Equal(t, 60, out.Tokens.ExpiresInMinutes)
			assert.Contains(t, f.bus.names(), entity.EventSignin)
		})
	}
}

func TestAuthService_Signin_DeletedUser(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	user := f.signupActive(t, "ada@example.com")
	require.NoError(t, f.users.SoftDelete(ctx, user.ID, user.ID))

	_, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})

	assert.True(t, errors.Is(err, domainerrors.ErrDeleted))
}

func TestAuthService_Activate_OnlyOnce(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)
	token := user.Activation.Token

	activated, err := f.auth.Activate(ctx, token)
	require.NoError(t, err)
	assert.True(t, activated.Active)
	assert.Nil(t, activated.Activation)
	f.notifier.AssertCalled(t, "SendActivatedMail", mock.Anything, mock.Anything)

	_, err = f.auth.Activate(ctx, token)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredToken))
}

func TestAuthService_Activate_Expired(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	f.auth.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = f.auth.Activate(ctx, user.Activation.Token)

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredToken))
}

func TestAuthService_Reactivate(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)
	oldToken := user.Activation.Token

	reactivated, err := f.auth.Reactivate(ctx, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, reactivated.Activation)

	if reactivated.Activation.Token != oldToken {
		_, err = f.auth.Activate(ctx, oldToken)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredToken))
	}
	_, err = f.auth.Activate(ctx, reactivated.Activation.Token)
	require.NoError(t, err)

	_, err = f.auth.Reactivate(ctx, "ada@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrAlreadyActive))

	_, err = f.auth.Reactivate(ctx, "nobody@example.com")
	assert.True(t, errors.Is(err, domainerrors.ErrEmailNotFound))
}

func TestAuthService_Refresh_IsSingleUse(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()
	f.signupActive(t, "ada@example.com")

	signin, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)
	input := &usecase.RefreshInput{AccessToken: signin.Tokens.AccessToken, RefreshToken: signin.Tokens.RefreshToken}

	refreshed, err := f.auth.Refresh(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, signin.Tokens.RefreshToken, refreshed.Tokens.RefreshToken)

	_, err = f.auth.Refresh(ctx, input)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestAuthService_Refresh_Expired(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()
	f.signupActive(t, "ada@example.com")

	signin, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)

	f.issuer.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = f.auth.Refresh(ctx, &usecase.RefreshInput{
		AccessToken:  signin.Tokens.AccessToken,
		RefreshToken: signin.Tokens.RefreshToken,
	})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
	assert.Zero(t, f.sessions.activeCount(signin.User.ID))
}

func TestAuthService_Refresh_MismatchedAccessToken(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()
	f.signupActive(t, "ada@example.com")

	signin, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = f.auth.Refresh(ctx, &usecase.RefreshInput{AccessToken: "other", RefreshToken: signin.Tokens.RefreshToken})

	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestAuthService_ForgotAndReset(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()
	user := f.signupActive(t, "ada@example.com")

	signin, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, f.auth.Forgot(ctx, "ada@example.com"))
	stored, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Reset)
	f.notifier.AssertCalled(t, "SendResetMail", mock.Anything, mock.Anything)

	const newPassword = "Bb2@bbbb"
	require.NoError(t, f.auth.Reset(ctx, &usecase.ResetInput{Token: stored.Reset.Token, Password: newPassword}))

	_, err = f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: newPassword})
	require.NoError(t, err)
	_, err = f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	err = f.auth.Reset(ctx, &usecase.ResetInput{Token: stored.Reset.Token, Password: "Cc3#cccc"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidOrExpiredToken))

	_, err = f.auth.Refresh(ctx, &usecase.RefreshInput{
		AccessToken:  signin.Tokens.AccessToken,
		RefreshToken: signin.Tokens.RefreshToken,
	})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))
}

func TestAuthService_Forgot_Failures(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	_, err := f.auth.Signup(ctx, signupInput("inactive@example.com"))
	require.NoError(t, err)

	assert.True(t, errors.Is(f.auth.Forgot(ctx, "nobody@example.com"), domainerrors.ErrEmailNotFound))
	assert.True(t, errors.Is(f.auth.Forgot(ctx, "inactive@example.com"), domainerrors.ErrNotActive))
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()
	user := f.signupActive(t, "ada@example.com")
	other := f.signupActive(t, "bob@example.com")

	signin, err := f.auth.Signin(ctx, &usecase.SigninInput{Email: "ada@example.com", Password: testPassword})
	require.NoError(t, err)

	err = f.auth.Logout(ctx, other, signin.Tokens.RefreshToken)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidToken))

	require.NoError(t, f.auth.Logout(ctx, user, signin.Tokens.RefreshToken))
	assert.Zero(t, f.sessions.activeCount(user.ID))
	assert.Contains(t, f.bus.names(), entity.EventLogout)
}

func TestAuthService_OAuthLogin_CreatesUser(t *testing.T) {
	f := newAuthFixtures(t)
	ctx := context.Background()

	out, err := f.auth.OAuthLogin(ctx, &service.OAuthProfile{
		Provider:      entity.ProviderGoogle,
		ExternalID:    "g-1",
		Email:         "Ada@Example.com",
		FirstName:     "Ada",
		EmailVerified: true,
	})

	require.NoError(t, err)
	assert.True(t, out.User.Active)
	assert.True(t, out.User.Verified)
	assert.Equal(t, "ada@example.com", out.User.Email)
	assert.True(t, out.User.HasIdentity(entity.ProviderGoogle, "g-1"))
	assert.NotEmpty(t, out.Tokens.AccessToken)

	again, err := f.auth.OAuthLogin(ctx, &service.OAuthProfile{Provider: entity.ProviderGoogle, ExternalID: "g-1"})
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, again.User.ID)
}

func TestAuthService_OAuthLogin_LinksExistingUser(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()
	ctx := context.Background()

	user, err := f.auth.Signup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	out, err := f.auth.OAuthLogin(ctx, &service.OAuthProfile{
		Provider:      entity.ProviderFacebook,
		ExternalID:    "fb-1",
		Email:         "ada@example.com",
		EmailVerified: true,
	})

	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)
	assert.True(t, out.User.Active)

	stored, err := f.users.FindByIdentity(ctx, entity.ProviderFacebook, "fb-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.ID)
}

func TestAuthService_OAuthLogin_Refusals(t *testing.T) {
	f := newAuthFixtures(t)
	ctx := context.Background()

	_, err := f.auth.OAuthLogin(ctx, &service.OAuthProfile{Provider: entity.ProviderTwitter, ExternalID: "tw-1"})
	assert.True(t, errors.Is(err, domainerrors.ErrOAuthFailed))

	out, err := f.auth.OAuthLogin(ctx, &service.OAuthProfile{
		Provider:   entity.ProviderLinkedIn,
		ExternalID: "li-1",
		Email:      "ada@example.com",
	})
	require.NoError(t, err)
	require.NoError(t, f.users.SoftDelete(ctx, out.User.ID, out.User.ID))

	_, err = f.auth.OAuthLogin(ctx, &service.OAuthProfile{Provider: entity.ProviderLinkedIn, ExternalID: "li-1"})
	assert.True(t, errors.Is(err, domainerrors.ErrDeleted))
}

func TestAuthService_Signup_UndialablePhoneDigitsKept(t *testing.T) {
	f := newAuthFixtures(t)
	f.acceptAllNotifications()

	input := signupInput("ada@example.com")
	input.Phone = "123"

	user, err := f.auth.Signup(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "123", user.Phone)
}
