package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/repository"
)

// Bootstrap account provisioned on first start.
const (
	seedUserName     = "admin"
	seedUserEmail    = "admin@mail.com"
	seedUserPassword = "123456"
)

// SeedBootstrapUser creates the bootstrap account when it does not exist
// yet, so a fresh deployment has a working login.
func SeedBootstrapUser(ctx context.Context, users repository.UserRepository, bcryptCost int, logger *zap.Logger) error {
	if _, err := users.GetByEmail(ctx, seedUserEmail); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(seedUserPassword, bcryptCost)
	if err != nil {
		return err
	}

	user := &domain.User{
		Name:         seedUserName,
		Email:        seedUserEmail,
		PasswordHash: hash,
		Status:       domain.UserStatusActive,
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("seeded bootstrap user", zap.String("email", seedUserEmail))
	return nil
}
