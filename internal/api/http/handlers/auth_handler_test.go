package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/identity-service/internal/api/http"
	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/domain"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/service"
)

type stubStore struct {
	user      *domain.User
	verifyErr error
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, errors.New("no rows in result set")
	}
	return s.user, nil
}

func (s *stubStore) VerifyPassword(context.Context, *domain.User, string) error {
	return s.verifyErr
}

type stubUserLoader struct {
	user *domain.User
}

func (l *stubUserLoader) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if l.user == nil || l.user.ID != id {
		return nil, errors.New("no rows in result set")
	}
	return l.user, nil
}

func newTestApp(t *testing.T, store *stubStore) (*fiber.App, *service.AuthService) {
	t.Helper()
	logger := zap.NewNop()

	codec := auth.NewTokenCodec(auth.SigningMaterial{
		Secret:   "test-secret",
		Issuer:   "identity-service",
		Audience: "identity-service",
	}, 7)
	authService := service.NewAuthService(auth.NewAuthenticator(store, logger), codec, nil, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("identity-service", "test", &persistence.Postgres{}, &persistence.Redis{}),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: auth.NewMiddleware(codec, &stubUserLoader{user: store.user}, logger),
	})
	return app, authService
}

func postLogin(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/user/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

func TestLoginEndpointSuccess(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, _ := newTestApp(t, &stubStore{user: user})

	status, body := postLogin(t, app, `{"email":"admin@mail.com","password":"123456"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "admin", body["message"])
	assert.NotEmpty(t, body["token"])
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, _ := newTestApp(t, &stubStore{user: user, verifyErr: auth.ErrInvalidPassword})

	status, body := postLogin(t, app, `{"email":"admin@mail.com","password":"wrong"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, service.MessageInvalidCredentials, body["message"])
	assert.Empty(t, body["token"])
}

func TestLoginEndpointLockedOut(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, _ := newTestApp(t, &stubStore{user: user, verifyErr: auth.ErrAccountLocked})

	status, body := postLogin(t, app, `{"email":"admin@mail.com","password":"123456"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, service.MessageLockedOut, body["message"])
}

func TestLoginEndpointBadPayload(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, _ := newTestApp(t, &stubStore{user: user})

	status, body := postLogin(t, app, `{not json`)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, service.MessageGenericFailure, body["message"])
}

func TestMeEndpointWithBearerToken(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, authService := newTestApp(t, &stubStore{user: user})

	login := authService.Login(context.Background(), "admin@mail.com", "123456")
	require.True(t, login.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var parsed struct {
		Data struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, int64(1), parsed.Data.ID)
	assert.Equal(t, "admin@mail.com", parsed.Data.Email)
}

func TestMeEndpointRejectsBadToken(t *testing.T) {
	user := &domain.User{ID: 1, Name: "admin", Email: "admin@mail.com", Status: domain.UserStatusActive}
	app, _ := newTestApp(t, &stubStore{user: user})

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}
