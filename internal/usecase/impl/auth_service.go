package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"restapi/config"
	deliverycontext "restapi/internal/delivery/context"
	"restapi/internal/domain/entity"
	domainerrors "restapi/internal/domain/errors"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/infra/notification"
	"restapi/internal/usecase"
	"restapi/internal/util"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const resetTokenBytes = 32

// authService implements the AuthUsecase interface.
type authService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	tokenIssuer usecase.TokenIssuer
	secrets     service.SecretGenerator
	notifier    service.AuthNotifier
	bus         service.EventBus
	preparer    *userPreparer
	resetTTL    time.Duration
	appURL      string
	development bool
	now         func() time.Time
	logger      *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	TokenIssuer usecase.TokenIssuer
	Hasher      service.PasswordHasher
	Secrets     service.SecretGenerator
	Notifier    service.AuthNotifier
	Bus         service.EventBus
	Config      *config.Config
	Logger      *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		tokenIssuer: params.TokenIssuer,
		secrets:     params.Secrets,
		notifier:    params.Notifier,
		bus:         params.Bus,
		preparer:    newUserPreparer(params.Config, params.Hasher, params.Secrets),
		resetTTL:    params.Config.Auth.ResetTTL,
		appURL:      params.Config.App.URL,
		development: params.Config.IsDevelopment(),
		now:         time.Now,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Signup registers an inactive local account and sends its activation code.
func (srv *authService) Signup(ctx context.Context, input *usecase.SignupInput) (*entity.User, error) {
	phone, err := srv.preparer.normalizePhone(input.Phone)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     input.Email,
		Phone:     phone,
		Role:      entity.RoleUser,
		Gender:    genderOrDefault(input.Gender),
		BirthDate: input.BirthDate,
	}
	if err := srv.preparer.prepareForSave(user, input.Password, srv.now()); err != nil {
		return nil, err
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		srv.log(ctx).Warn("Signup failed", slog.String("email", user.Email), slog.Any("error", err))

		return nil, translateWriteError(err, "failed to create user during signup")
	}
	srv.log(ctx).Info("User signed up", slog.Any("userID", user.ID))

	srv.notify(ctx, "activation mail", user, srv.notifier.SendActivationMail)
	srv.notify(ctx, "activation sms", user, srv.notifier.SendActivationSMS)
	publishEvent(ctx, srv.bus, entity.EventSignup, user.ID, user.ID, entity.ModuleAuth)

	return user, nil
}

// Signin checks credentials first, then the account state.
func (srv *authService) Signin(ctx context.Context, input *usecase.SigninInput) (*usecase.AuthOutput, error) {
	email := util.NormalizeEmail(input.Email)

	user, err := srv.userRepo.FindAnyByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "signin failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for signin")
	}

	if !srv.preparer.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Signin failed", slog.String("email", email), slog.Any("error", domainerrors.ErrInvalidCredentials))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "signin failed")
	}
	if !user.Active {
		return nil, srv.notActiveError(user)
	}
	if user.Deleted {
		return nil, errors.Wrap(domainerrors.ErrDeleted, "signin refused")
	}

	tokens, err := srv.tokenIssuer.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens during signin")
	}
	publishEvent(ctx, srv.bus, entity.EventSignin, user.ID, user.ID, entity.ModuleAuth)

	return &usecase.AuthOutput{Tokens: tokens, User: user}, nil
}

// notActiveError carries the activation link in development builds.
func (srv *authService) notActiveError(user *entity.User) error {
	if srv.development && user.Activation != nil {
		hint := domainerrors.ErrNotActive.Message() + ": " + notification.ActivationLink(srv.appURL, user.Activation.Token)

		return errors.Wrap(domainerrors.ErrNotActive.WithMessage(hint), "signin refused")
	}

	return errors.Wrap(domainerrors.ErrNotActive, "signin refused")
}

// OAuthLogin signs in the owner of a provider identity, linking or creating
// the local account on first use.
func (srv *authService) OAuthLogin(ctx context.Context, profile *service.OAuthProfile) (*usecase.AuthOutput, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		user, err = srv.resolveOAuthUser(ctx, repoFactory.UserRepo(), profile)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("OAuth login failed", slog.String("provider", profile.Provider), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to resolve oauth user")
	}

	tokens, err := srv.tokenIssuer.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens during oauth login")
	}
	publishEvent(ctx, srv.bus, entity.EventOAuth, user.ID, user.ID, entity.ModuleAuth)

	return &usecase.AuthOutput{Tokens: tokens, User: user}, nil
}

func (srv *authService) resolveOAuthUser(ctx context.Context, userRepo repository.UserRepository, profile *service.OAuthProfile) (*entity.User, error) {
	user, err := userRepo.FindByIdentity(ctx, profile.Provider, profile.ExternalID)
	switch {
	case err == nil:
		if user.Deleted {
			return nil, errors.Wrap(domainerrors.ErrDeleted, "identity belongs to a deleted user")
		}

		return srv.activateVouched(ctx, userRepo, user, profile)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, errors.Wrap(err, "failed to find user by identity")
	}

	email := util.NormalizeEmail(profile.Email)
	if email == "" {
		return nil, errors.Wrap(domainerrors.ErrOAuthFailed.WithDetails("provider did not share an email address"), "oauth login refused")
	}

	identity := entity.Identity{
		Provider:    profile.Provider,
		ExternalID:  profile.ExternalID,
		AccessToken: profile.AccessToken,
		Raw:         profile.Raw,
	}

	user, err = userRepo.FindByEmail(ctx, email)
	if err == nil {
		identity.UserID = user.ID
		if err := userRepo.LinkIdentity(ctx, &identity); err != nil {
			return nil, translateWriteError(err, "failed to link identity")
		}
		user.Identities = append(user.Identities, identity)

		return srv.activateVouched(ctx, userRepo, user, profile)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(err, "failed to find user by email")
	}

	user = &entity.User{
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Email:      email,
		Role:       entity.RoleUser,
		Gender:     entity.GenderNA,
		Image:      profile.AvatarURL,
		Active:     true,
		Verified:   profile.EmailVerified,
		Identities: []entity.Identity{identity},
	}
	if err := srv.preparer.prepareForSave(user, "", srv.now()); err != nil {
		return nil, err
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return nil, translateWriteError(err, "failed to create oauth user")
	}

	return user, nil
}

// activateVouched activates an inactive account when the provider has verified its email.
func (srv *authService) activateVouched(ctx context.Context, userRepo repository.UserRepository, user *entity.User, profile *service.OAuthProfile) (*entity.User, error) {
	if user.Active {
		return user, nil
	}
	if !profile.EmailVerified {
		return nil, srv.notActiveError(user)
	}

	user.Active = true
	user.Verified = true
	user.Activation = nil
	if err := userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to activate oauth user")
	}

	return user, nil
}

// Activate redeems an activation code once.
func (srv *authService) Activate(ctx context.Context, token string) (*entity.User, error) {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		var err error
		user, err = userRepo.FindByActivationToken(ctx, token, srv.now())
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "activation token not found")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user by activation token")
		}
		if user.Active {
			return errors.Wrap(domainerrors.ErrAlreadyActive, "activation refused")
		}

		user.Activation = nil
		user.Active = true

		return errors.Wrap(userRepo.Update(ctx, user), "failed to activate user")
	})
	if err != nil {
		return nil, err
	}

	srv.notify(ctx, "activated mail", user, srv.notifier.SendActivatedMail)
	publishEvent(ctx, srv.bus, entity.EventActivate, user.ID, user.ID, entity.ModuleAuth)

	return user, nil
}

// Reactivate issues a fresh activation code and sends it again.
func (srv *authService) Reactivate(ctx context.Context, email string) (*entity.User, error) {
	user, err := srv.userRepo.FindByEmail(ctx, util.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errors.Wrap(domainerrors.ErrEmailNotFound, "reactivation refused")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for reactivation")
	}
	if user.Active {
		return nil, errors.Wrap(domainerrors.ErrAlreadyActive, "reactivation refused")
	}

	user.Activation = nil
	if err := srv.preparer.prepareForSave(user, "", srv.now()); err != nil {
		return nil, err
	}
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to store activation code")
	}

	srv.notify(ctx, "activation mail", user, srv.notifier.SendActivationMail)
	srv.notify(ctx, "activation sms", user, srv.notifier.SendActivationSMS)
	publishEvent(ctx, srv.bus, entity.EventReactivate, user.ID, user.ID, entity.ModuleAuth)

	return user, nil
}

// Refresh trades a token pair for a new one. The old refresh token is spent.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.AuthOutput, error) {
	user, err := srv.tokenIssuer.RedeemRefresh(ctx, input.AccessToken, input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "refresh refused")
	}

	tokens, err := srv.tokenIssuer.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens during refresh")
	}
	publishEvent(ctx, srv.bus, entity.EventRefresh, user.ID, user.ID, entity.ModuleAuth)

	return &usecase.AuthOutput{Tokens: tokens, User: user}, nil
}

// Forgot opens a password reset window and mails the link.
func (srv *authService) Forgot(ctx context.Context, email string) error {
	user, err := srv.userRepo.FindByEmail(ctx, util.NormalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		return errors.Wrap(domainerrors.ErrEmailNotFound, "forgot refused")
	}
	if err != nil {
		return errors.Wrap(err, "failed to load user for forgot")
	}
	if !user.Active {
		return errors.Wrap(domainerrors.ErrNotActive, "forgot refused")
	}

	token, err := srv.secrets.HexToken(resetTokenBytes)
	if err != nil {
		return errors.Wrap(err, "failed to generate reset token")
	}
	user.Reset = &entity.TimedToken{Token: token, ExpireAt: srv.now().Add(srv.resetTTL)}
	if err := srv.userRepo.Update(ctx, user); err != nil {
		return errors.Wrap(err, "failed to store reset token")
	}

	srv.notify(ctx, "reset mail", user, srv.notifier.SendResetMail)
	publishEvent(ctx, srv.bus, entity.EventForgot, user.ID, user.ID, entity.ModuleAuth)

	return nil
}

// Reset sets a new password once per reset token and ends every open session.
func (srv *authService) Reset(ctx context.Context, input *usecase.ResetInput) error {
	var user *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		var err error
		user, err = userRepo.FindByResetToken(ctx, input.Token, srv.now())
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrInvalidOrExpiredToken, "reset token not found")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find user by reset token")
		}

		user.Reset = nil
		if err := srv.preparer.prepareForSave(user, input.Password, srv.now()); err != nil {
			return err
		}

		return errors.Wrap(userRepo.Update(ctx, user), "failed to store new password")
	})
	if err != nil {
		return err
	}

	if err := srv.tokenIssuer.RevokeAll(ctx, user.ID); err != nil {
		srv.log(ctx).Error("Failed to revoke sessions after reset", slog.Any("userID", user.ID), slog.Any("error", err))
	}
	publishEvent(ctx, srv.bus, entity.EventReset, user.ID, user.ID, entity.ModuleAuth)

	return nil
}

// Logout spends the caller's refresh token.
func (srv *authService) Logout(ctx context.Context, actor *entity.User, refreshToken string) error {
	if !strings.HasPrefix(refreshToken, actor.ID.String()+".") {
		return errors.Wrap(domainerrors.ErrInvalidToken, "refresh token does not belong to caller")
	}

	if err := srv.tokenIssuer.Revoke(ctx, refreshToken); err != nil {
		return errors.Wrap(err, "logout failed")
	}
	publishEvent(ctx, srv.bus, entity.EventLogout, actor.ID, actor.ID, entity.ModuleAuth)

	return nil
}

// notify runs a notifier call; failures are logged only.
func (srv *authService) notify(ctx context.Context, what string, user *entity.User, send func(context.Context, *entity.User) error) {
	if err := send(ctx, user); err != nil {
		srv.log(ctx).Error("Failed to send notification",
			slog.String("notification", what),
			slog.Any("userID", user.ID),
			slog.Any("error", err),
		)
	}
}

func genderOrDefault(gender string) string {
	switch gender {
	case entity.GenderMale, entity.GenderFemale, entity.GenderOther:
		return gender
	default:
		return entity.GenderNA
	}
}
