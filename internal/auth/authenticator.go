package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/domain"
)

// Credential verification failures surfaced by a CredentialStore.
var (
	// ErrAccountLocked signals the store's failed-attempt policy has tripped.
	ErrAccountLocked = errors.New("account locked out")
	// ErrInvalidPassword covers a password mismatch or a disabled account.
	ErrInvalidPassword = errors.New("invalid password")
)

// CredentialStore is the durable credential backend. VerifyPassword owns
// lockout tracking: each failed attempt counts toward the store's
// threshold, and a locked account fails before any comparison happens.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	VerifyPassword(ctx context.Context, user *domain.User, password string) error
}

// Outcome is the three-way result of a credential check.
type Outcome int

const (
	OutcomeInvalidCredential Outcome = iota
	OutcomeLockedOut
	OutcomeSuccess
)

// Result carries the outcome and, on success, the authenticated user.
// It never carries the password. Unknown email and wrong password share
// the same outcome so callers cannot enumerate accounts.
type Result struct {
	Outcome Outcome
	User    *domain.User
}

// Authenticator checks a credential pair against the store. It holds no
// mutable state and is safe for concurrent use.
type Authenticator struct {
	store  CredentialStore
	logger *zap.Logger
}

// NewAuthenticator builds an authenticator over the given store.
func NewAuthenticator(store CredentialStore, logger *zap.Logger) *Authenticator {
	return &Authenticator{store: store, logger: logger}
}

// Authenticate resolves an email/password pair to an outcome. Store
// errors are logged server-side and collapse to OutcomeInvalidCredential;
// the attempt is never retried.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) Result {
	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		a.logger.Debug("credential lookup failed", zap.Error(err))
		return Result{Outcome: OutcomeInvalidCredential}
	}

	switch err := a.store.VerifyPassword(ctx, user, password); {
	case err == nil:
		return Result{Outcome: OutcomeSuccess, User: user}
	case errors.Is(err, ErrAccountLocked):
		return Result{Outcome: OutcomeLockedOut}
	default:
		if !errors.Is(err, ErrInvalidPassword) {
			a.logger.Warn("credential verification error", zap.Error(err))
		}
		return Result{Outcome: OutcomeInvalidCredential}
	}
}
