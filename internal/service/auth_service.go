package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/events"
)

// Fixed client-facing messages. Wrong password and unknown email share
// one string so responses cannot be used for account enumeration.
const (
	MessageInvalidCredentials = "Invalid UserName Or Password!"
	MessageLockedOut          = "User Is Locked Out!"
	MessageGenericFailure     = "Exception Occured"
)

// LoginResult is the outcome of a login attempt in response shape.
// Token is empty unless Success is true.
type LoginResult struct {
	Success   bool
	Message   string
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates credential verification and token issuance.
type AuthService struct {
	authenticator *auth.Authenticator
	tokens        *auth.TokenCodec
	dispatcher    events.Dispatcher
	logger        *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(authenticator *auth.Authenticator, tokens *auth.TokenCodec, dispatcher events.Dispatcher, logger *zap.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		tokens:        tokens,
		dispatcher:    dispatcher,
		logger:        logger,
	}
}

// Login authenticates the credential pair and, on success, issues a
// signed bearer token. Failures map to fixed messages; no internal
// error detail crosses into the result.
func (s *AuthService) Login(ctx context.Context, email, password string) LoginResult {
	result := s.authenticator.Authenticate(ctx, email, password)

	switch result.Outcome {
	case auth.OutcomeSuccess:
		token, expiresAt, err := s.tokens.Issue(result.User)
		if err != nil {
			s.logger.Error("token issuance failed", zap.Error(err))
			return LoginResult{Message: MessageGenericFailure}
		}
		s.publish(ctx, events.EventLoginSucceeded, email, &result.User.ID)
		return LoginResult{
			Success:   true,
			Message:   result.User.Name,
			Token:     token,
			ExpiresAt: expiresAt,
		}
	case auth.OutcomeLockedOut:
		s.publish(ctx, events.EventAccountLocked, email, nil)
		return LoginResult{Message: MessageLockedOut}
	default:
		s.publish(ctx, events.EventLoginFailed, email, nil)
		return LoginResult{Message: MessageInvalidCredentials}
	}
}

// TokenCodec exposes the underlying codec for middleware usage.
func (s *AuthService) TokenCodec() *auth.TokenCodec {
	return s.tokens
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, email string, userID *int64) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Email:     email,
		UserID:    userID,
		Timestamp: time.Now(),
	})
}
