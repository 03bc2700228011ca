package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

type memUserRepo struct {
	mu    sync.Mutex
	users []*domain.User
	seq   int

	// forceDuplicateOnCreate simulates losing the registration race: the
	// pre-check passed but the unique constraint fires on insert.
	forceDuplicateOnCreate bool
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.forceDuplicateOnCreate {
		return repository.ErrDuplicateEmail
	}
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users = append(r.users, &clone)
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func newTestTokenManager(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager(config.AuthConfig{
		AccessSecret:          "test-access-secret",
		RefreshSecret:         "test-refresh-secret",
		SigningAlgorithm:      "HS256",
		AccessTokenTTLMinutes: 15,
		RefreshTokenTTLHours:  24,
	})
	require.NoError(t, err)
	return tm
}

func newTestAuthService(t *testing.T, repo repository.UserRepository) *AuthService {
	t.Helper()
	return NewAuthService(AuthDependencies{
		UserRepo:     repo,
		TokenManager: newTestTokenManager(t),
		BcryptCost:   4, // min cost keeps the suite fast
	})
}

func TestRegisterSuccess(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), "A", "B", "a@b.com", "secret123")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.True(t, svc.VerifyPassword(user, "secret123"))
	assert.False(t, svc.VerifyPassword(user, "secret124"))
}

func TestRegisterMissingFields(t *testing.T) {
	svc := newTestAuthService(t, &memUserRepo{})

	cases := [][4]string{
		{"", "B", "a@b.com", "secret123"},
		{"A", "", "a@b.com", "secret123"},
		{"A", "B", "", "secret123"},
		{"A", "B", "a@b.com", ""},
	}
	for _, tc := range cases {
		_, err := svc.Register(context.Background(), tc[0], tc[1], tc[2], tc[3])
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, 400, domainErr.HTTPStatus)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "A", "B", "a@b.com", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "C", "D", "a@b.com", "other456")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 409, domainErr.HTTPStatus)
	assert.Equal(t, "DUPLICATE_EMAIL", domainErr.Code)
}

func TestRegisterRaceLosesAtStorageLayer(t *testing.T) {
	// Both concurrent registrations pass the pre-check; the insert must still
	// surface a duplicate-email conflict for the loser.
	repo := &memUserRepo{forceDuplicateOnCreate: true}
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "A", "B", "a@b.com", "secret123")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, 409, domainErr.HTTPStatus)
}

func TestLoginSuccess(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "A", "B", "a@b.com", "secret123")
	require.NoError(t, err)

	user, pair, err := svc.Login(context.Background(), "a@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.TokenManager().VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginGenericMessage(t *testing.T) {
	repo := &memUserRepo{}
	svc := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "A", "B", "a@b.com", "secret123")
	require.NoError(t, err)

	// Unknown email and wrong password must be indistinguishable.
	_, _, errUnknown := svc.Login(context.Background(), "nobody@b.com", "secret123")
	require.Error(t, errUnknown)
	_, _, errWrongPass := svc.Login(context.Background(), "a@b.com", "wrong-password")
	require.Error(t, errWrongPass)

	unknownErr := apperrors.ToDomainError(errUnknown)
	wrongPassErr := apperrors.ToDomainError(errWrongPass)
	assert.Equal(t, 401, unknownErr.HTTPStatus)
	assert.Equal(t, 401, wrongPassErr.HTTPStatus)
	assert.Equal(t, MsgInvalidCredentials, unknownErr.Message)
	assert.Equal(t, unknownErr.Message, wrongPassErr.Message)
}

func TestLoginMissingFields(t *testing.T) {
	svc := newTestAuthService(t, &memUserRepo{})

	_, _, err := svc.Login(context.Background(), "", "secret123")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)

	_, _, err = svc.Login(context.Background(), "a@b.com", "")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.ToDomainError(err).HTTPStatus)
}
