package impl

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"restapi/config"
	"restapi/internal/domain/entity"
	"restapi/internal/domain/query"
	"restapi/internal/domain/repository"
	"restapi/internal/domain/service"
	"restapi/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{
			BcryptCost:            bcrypt.MinCost,
			AccessTokenTTLMinutes: 60,
			RefreshTokenTTLDays:   30,
			ActivationTTL:         24 * time.Hour,
			ResetTTL:              24 * time.Hour,
			HeaderScheme:          "JWT",
			PhoneRegion:           "US",
		},
		OAuth: &config.OAuthConfig{StateTTL: time.Minute},
	}
	cfg.Env.Env = "test"
	cfg.App.URL = "http://localhost:3000"
	cfg.SecretKey.Access = "access-secret"
	cfg.SecretKey.Refresh = "refresh-secret"

	return cfg
}

// memoryStore backs every fake repository of one test.
type memoryStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]*entity.User
	sessions   map[uuid.UUID]*entity.RefreshSession
	addresses  map[uuid.UUID]*entity.Address
	activities map[uuid.UUID]*entity.Activity
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:      map[uuid.UUID]*entity.User{},
		sessions:   map[uuid.UUID]*entity.RefreshSession{},
		addresses:  map[uuid.UUID]*entity.Address{},
		activities: map[uuid.UUID]*entity.Activity{},
	}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.Identities = append([]entity.Identity(nil), u.Identities...)
	if u.Activation != nil {
		a := *u.Activation
		c.Activation = &a
	}
	if u.Reset != nil {
		r := *u.Reset
		c.Reset = &r
	}

	return &c
}

type fakeUserRepo struct{ s *memoryStore }

func (r *fakeUserRepo) conflict(user *entity.User) error {
	for _, other := range r.s.users {
		if other.ID == user.ID || other.Deleted {
			continue
		}
		if other.Email == user.Email {
			return &repository.ConstraintViolation{Field: "email"}
		}
		if user.Phone != "" && other.Phone == user.Phone {
			return &repository.ConstraintViolation{Field: "phone"}
		}
	}

	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.conflict(user); err != nil {
		return err
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	for i := range user.Identities {
		user.Identities[i].UserID = user.ID
	}
	r.s.users[user.ID] = cloneUser(user)

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok || stored.Deleted {
		return repository.ErrUserNotFound
	}
	if err := r.conflict(user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = cloneUser(user)

	return nil
}

func (r *fakeUserRepo) find(match func(*entity.User) bool) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id && !u.Deleted })
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email && !u.Deleted })
}

func (r *fakeUserRepo) FindAnyByEmail(ctx context.Context, email string) (*entity.User, error) {
	if user, err := r.FindByEmail(ctx, email); err == nil {
		return user, nil
	}

	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) FindByIdentity(_ context.Context, provider, externalID string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.HasIdentity(provider, externalID) })
}

func (r *fakeUserRepo) FindByActivationToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return !u.Deleted && u.Activation.Valid(now) && u.Activation.Token == token
	})
}

func (r *fakeUserRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*entity.User, error) {
	return r.find(func(u *entity.User) bool {
		return !u.Deleted && u.Reset.Valid(now) && u.Reset.Token == token
	})
}

func (r *fakeUserRepo) LinkIdentity(_ context.Context, identity *entity.Identity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[identity.UserID]
	if !ok {
		return repository.ErrUserNotFound
	}
	identity.ID = uuid.New()
	user.Identities = append(user.Identities, *identity)

	return nil
}

func (r *fakeUserRepo) List(_ context.Context, q *query.ListQuery) ([]*entity.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if !u.Deleted {
			users = append(users, cloneUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })

	return users, int64(len(users)), nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok || user.Deleted {
		return repository.ErrUserNotFound
	}
	now := time.Now()
	user.Deleted = true
	user.DeletedAt = &now
	user.DeletedBy = &deletedBy

	return nil
}

type fakeSessionRepo struct{ s *memoryStore }

var _ repository.RefreshSessionRepository = (*fakeSessionRepo)(nil)

func (r *fakeSessionRepo) Create(_ context.Context, session *entity.RefreshSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session.ID = uuid.New()
	session.IsActive = true
	c := *session
	r.s.sessions[session.ID] = &c

	return nil
}

func (r *fakeSessionRepo) FindActive(_ context.Context, tokenHash, refreshTokenHash string) (*entity.RefreshSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, session := range r.s.sessions {
		if session.IsActive && session.TokenHash == tokenHash && session.RefreshTokenHash == refreshTokenHash {
			c := *session

			return &c, nil
		}
	}

	return nil, repository.ErrRefreshSessionNotFound
}

func (r *fakeSessionRepo) FindActiveByRefreshHash(_ context.Context, refreshTokenHash string) (*entity.RefreshSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, session := range r.s.sessions {
		if session.IsActive && session.RefreshTokenHash == refreshTokenHash {
			c := *session

			return &c, nil
		}
	}

	return nil, repository.ErrRefreshSessionNotFound
}

func (r *fakeSessionRepo) Deactivate(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[id]
	if !ok || !session.IsActive {
		return false, nil
	}
	session.IsActive = false

	return true, nil
}

func (r *fakeSessionRepo) DeactivateAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, session := range r.s.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}

	return nil
}

func (r *fakeSessionRepo) activeCount(userID uuid.UUID) int {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, session := range r.s.sessions {
		if session.UserID == userID && session.IsActive {
			n++
		}
	}

	return n
}

type fakeAddressRepo struct{ s *memoryStore }

func (r *fakeAddressRepo) Create(_ context.Context, address *entity.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	address.ID = uuid.New()
	c := *address
	r.s.addresses[address.ID] = &c

	return nil
}

func (r *fakeAddressRepo) Update(_ context.Context, address *entity.Address) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.addresses[address.ID]
	if !ok || stored.Deleted {
		return repository.ErrAddressNotFound
	}
	c := *address
	r.s.addresses[address.ID] = &c

	return nil
}

func (r *fakeAddressRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	address, ok := r.s.addresses[id]
	if !ok || address.Deleted {
		return nil, repository.ErrAddressNotFound
	}
	c := *address

	return &c, nil
}

func (r *fakeAddressRepo) List(_ context.Context, ownerID *uuid.UUID, _ *query.ListQuery) ([]*entity.Address, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Address
	for _, address := range r.s.addresses {
		if address.Deleted || (ownerID != nil && address.UserID != *ownerID) {
			continue
		}
		c := *address
		out = append(out, &c)
	}

	return out, int64(len(out)), nil
}

func (r *fakeAddressRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	address, ok := r.s.addresses[id]
	if !ok || address.Deleted {
		return repository.ErrAddressNotFound
	}
	address.Deleted = true

	return nil
}

type fakeActivityRepo struct{ s *memoryStore }

func (r *fakeActivityRepo) Create(_ context.Context, activity *entity.Activity) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	activity.ID = uuid.New()
	c := *activity
	r.s.activities[activity.ID] = &c

	return nil
}

func (r *fakeActivityRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	activity, ok := r.s.activities[id]
	if !ok || activity.Deleted {
		return nil, repository.ErrActivityNotFound
	}
	c := *activity

	return &c, nil
}

func (r *fakeActivityRepo) List(_ context.Context, userID *uuid.UUID, _ *query.ListQuery) ([]*entity.Activity, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Activity
	for _, activity := range r.s.activities {
		if activity.Deleted || (userID != nil && activity.UserID != *userID) {
			continue
		}
		c := *activity
		out = append(out, &c)
	}

	return out, int64(len(out)), nil
}

func (r *fakeActivityRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	activity, ok := r.s.activities[id]
	if !ok || activity.Deleted {
		return repository.ErrActivityNotFound
	}
	activity.Deleted = true

	return nil
}

// fakeTxManager runs fn directly against the shared fakes.
type fakeTxManager struct{ s *memoryStore }

func (m *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *fakeTxManager) UserRepo() repository.UserRepository {
	return &fakeUserRepo{s: m.s}
}

func (m *fakeTxManager) RefreshSessionRepo() repository.RefreshSessionRepository {
	return &fakeSessionRepo{s: m.s}
}

func (m *fakeTxManager) AddressRepo() repository.AddressRepository {
	return &fakeAddressRepo{s: m.s}
}

// mockNotifier is a testify mock of service.AuthNotifier.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendActivationMail(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockNotifier) SendActivationSMS(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockNotifier) SendActivatedMail(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockNotifier) SendResetMail(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

// recordingBus collects published events synchronously.
type recordingBus struct {
	mu       sync.Mutex
	events   []entity.Event
	handlers map[string][]service.EventHandler
}

func (b *recordingBus) Publish(ctx context.Context, event entity.Event) {
	b.mu.Lock()
	b.events = append(b.events, event)
	handlers := b.handlers[event.Name]
	b.mu.Unlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
}

func (b *recordingBus) Subscribe(name string, handler service.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = map[string][]service.EventHandler{}
	}
	b.handlers[name] = append(b.handlers[name], handler)
}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.events))
	for _, event := range b.events {
		names = append(names, event.Name)
	}

	return names
}

// authFixtures wires the auth services over in-memory fakes.
type authFixtures struct {
	store    *memoryStore
	cfg      *config.Config
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	notifier *mockNotifier
	bus      *recordingBus
	issuer   *tokenIssuer
	auth     *authService
	hasher   service.PasswordHasher
	secrets  service.SecretGenerator
}

func newAuthFixtures(t *testing.T) *authFixtures {
	t.Helper()

	cfg := newTestConfig()
	store := newMemoryStore()
	users := &fakeUserRepo{s: store}
	sessions := &fakeSessionRepo{s: store}
	secrets := auth.NewSecretGenerator()
	hasher := auth.NewBcryptHasherWithCost(bcrypt.MinCost)

	tokens, err := auth.NewJWTService(cfg, secrets)
	require.NoError(t, err)

	issuer := NewTokenIssuer(TokenIssuerParams{
		TokenService: tokens,
		SessionRepo:  sessions,
		UserRepo:     users,
		Config:       cfg,
		Logger:       newDiscardLogger(),
	}).(*tokenIssuer)

	notifier := &mockNotifier{}
	bus := &recordingBus{}

	authSrv := NewAuthService(AuthServiceParams{
		TxManager:   &fakeTxManager{s: store},
		UserRepo:    users,
		TokenIssuer: issuer,
		Hasher:      hasher,
		Secrets:     secrets,
		Notifier:    notifier,
		Bus:         bus,
		Config:      cfg,
		Logger:      newDiscardLogger(),
	}).(*authService)

	return &authFixtures{
		store:    store,
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		notifier: notifier,
		bus:      bus,
		issuer:   issuer,
		auth:     authSrv,
		hasher:   hasher,
		secrets:  secrets,
	}
}

// acceptAllNotifications lets every notifier call succeed.
func (f *authFixtures) acceptAllNotifications() {
	f.notifier.On("SendActivationMail", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("SendActivationSMS", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("SendActivatedMail", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.notifier.On("SendResetMail", mock.Anything, mock.Anything).Return(nil).Maybe()
}
