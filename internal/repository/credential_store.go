package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
)

// LockoutPolicy configures the store's failed-attempt policy.
type LockoutPolicy struct {
	MaxAttempts   int
	LockDuration  time.Duration
	FailureWindow time.Duration
}

type credentialStore struct {
	users   UserRepository
	lockout LockoutTracker
	policy  LockoutPolicy
	logger  *zap.Logger
}

// NewCredentialStore combines the user repository, the lockout tracker
// and bcrypt verification into the credential backend the authenticator
// consumes.
func NewCredentialStore(users UserRepository, lockout LockoutTracker, policy LockoutPolicy, logger *zap.Logger) auth.CredentialStore {
	return &credentialStore{users: users, lockout: lockout, policy: policy, logger: logger}
}

func (s *credentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// VerifyPassword checks the password against the stored hash with
// lockout tracking. A locked account fails before any comparison, so
// even the correct password is rejected until the lock expires. A
// mismatch increments the failure counter; crossing the threshold sets
// the lock for the configured duration. Success resets the counter.
func (s *credentialStore) VerifyPassword(ctx context.Context, user *domain.User, password string) error {
	locked, err := s.lockout.IsLocked(ctx, user.Email)
	if err != nil {
		return err
	}
	if locked {
		return auth.ErrAccountLocked
	}

	if user.Status != domain.UserStatusActive {
		return auth.ErrInvalidPassword
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		count, trackErr := s.lockout.RecordFailure(ctx, user.Email, s.policy.FailureWindow)
		if trackErr != nil {
			s.logger.Warn("failed to record login failure", zap.Error(trackErr))
			return auth.ErrInvalidPassword
		}
		if count >= int64(s.policy.MaxAttempts) {
			if lockErr := s.lockout.Lock(ctx, user.Email, s.policy.LockDuration); lockErr != nil {
				s.logger.Warn("failed to set lockout", zap.Error(lockErr))
			} else {
				s.logger.Info("account locked out",
					zap.Int64("user_id", user.ID),
					zap.Int64("failed_attempts", count),
				)
			}
		}
		return auth.ErrInvalidPassword
	}

	if err := s.lockout.Reset(ctx, user.Email); err != nil {
		s.logger.Warn("failed to reset lockout counter", zap.Error(err))
	}
	return nil
}
