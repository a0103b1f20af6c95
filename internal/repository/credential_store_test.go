package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
)

type fakeUserRepository struct {
	byEmail map[string]*domain.User
	byID    map[int64]*domain.User
}

func newFakeUserRepository(users ...*domain.User) *fakeUserRepository {
	repo := &fakeUserRepository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[int64]*domain.User),
	}
	for _, user := range users {
		repo.byEmail[user.Email] = user
		repo.byID[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepository) Create(_ context.Context, user *domain.User) error {
	user.ID = int64(len(r.byID) + 1)
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *fakeUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return user, nil
}

func (r *fakeUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	return user, nil
}

func seededUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		ID:           1,
		Name:         "admin",
		Email:        "admin@mail.com",
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
}

func newStore(t *testing.T, user *domain.User, maxAttempts int) auth.CredentialStore {
	t.Helper()
	return repository.NewCredentialStore(
		newFakeUserRepository(user),
		repository.NewMemoryLockoutTracker(),
		repository.LockoutPolicy{
			MaxAttempts:   maxAttempts,
			LockDuration:  time.Minute,
			FailureWindow: time.Minute,
		},
		zap.NewNop(),
	)
}

func TestVerifyPasswordSuccess(t *testing.T) {
	user := seededUser(t, "123456")
	store := newStore(t, user, 3)

	found, err := store.FindByEmail(context.Background(), "admin@mail.com")
	require.NoError(t, err)
	assert.Equal(t, user, found)

	assert.NoError(t, store.VerifyPassword(context.Background(), user, "123456"))
}

func TestVerifyPasswordMismatch(t *testing.T) {
	user := seededUser(t, "123456")
	store := newStore(t, user, 3)

	err := store.VerifyPassword(context.Background(), user, "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidPassword)
}

func TestVerifyPasswordDisabledAccount(t *testing.T) {
	user := seededUser(t, "123456")
	user.Status = domain.UserStatusDisabled
	store := newStore(t, user, 3)

	err := store.VerifyPassword(context.Background(), user, "123456")
	assert.ErrorIs(t, err, auth.ErrInvalidPassword)
}

func TestVerifyPasswordLocksAfterThreshold(t *testing.T) {
	ctx := context.Background()
	user := seededUser(t, "123456")
	store := newStore(t, user, 3)

	// Attempts below the threshold stay indistinguishable from a
	// plain mismatch.
	for i := 0; i < 3; i++ {
		err := store.VerifyPassword(ctx, user, "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
	}

	// The threshold has been crossed; even the correct password is
	// rejected until the lock expires.
	err := store.VerifyPassword(ctx, user, "123456")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)

	err = store.VerifyPassword(ctx, user, "wrong")
	assert.ErrorIs(t, err, auth.ErrAccountLocked)
}

func TestVerifyPasswordSuccessResetsCounter(t *testing.T) {
	ctx := context.Background()
	user := seededUser(t, "123456")
	store := newStore(t, user, 3)

	for i := 0; i < 2; i++ {
		err := store.VerifyPassword(ctx, user, "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
	}
	require.NoError(t, store.VerifyPassword(ctx, user, "123456"))

	// The counter starts over; two more failures stay under the
	// threshold of three.
	for i := 0; i < 2; i++ {
		err := store.VerifyPassword(ctx, user, "wrong")
		assert.ErrorIs(t, err, auth.ErrInvalidPassword)
	}
	assert.NoError(t, store.VerifyPassword(ctx, user, "123456"))
}
