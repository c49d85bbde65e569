package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IVYLIFE/Authly/internal/auth/domain"
	"github.com/IVYLIFE/Authly/internal/auth/handler"
	"github.com/IVYLIFE/Authly/internal/auth/service"
	"github.com/IVYLIFE/Authly/internal/mocks"
	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessSecret  = "handler-access-secret"
	refreshSecret = "handler-refresh-secret"
)

type testServer struct {
	app    *fiber.App
	repo   *mocks.MockUserRepository
	tokens *service.TokenService
}

func newTestServer(t *testing.T, opts handler.RouteOptions) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockUserRepository(ctrl)
	tokens := service.NewTokenService(accessSecret, refreshSecret, 15, 10080)
	userService := service.NewUserService(repo, tokens, service.NewBcryptHasher(bcrypt.MinCost))
	h := handler.NewAuthHandler(userService, handler.Options{RefreshTTL: tokens.GetRefreshTokenExpiry()})

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(nil)})
	handler.RegisterRoutes(app, h, opts)
	app.Use(handler.NotFound)

	return &testServer{app: app, repo: repo, tokens: tokens}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) bearer(t *testing.T, userID string) map[string]string {
	t.Helper()
	token, err := s.tokens.IssueAccess(userID)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func storedUser(t *testing.T, id, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &domain.User{
		ID:           id,
		Name:         "A",
		Email:        email,
		PasswordHash: string(hash),
		Address:      "addr",
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}
