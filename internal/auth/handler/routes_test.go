package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/IVYLIFE/Authly/internal/auth/handler"
	"github.com/IVYLIFE/Authly/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterRoutes verifies that every route is mounted under the base path.
func TestRegisterRoutes(t *testing.T) {
	s := newTestServer(t, handler.RouteOptions{BasePath: "/v2/accounts", SelfAccessRoutes: true})

	testCases := []struct {
		method string
		path   string
		status int
	}{
		// Handlers answer 400/401 without a body or token.
		{http.MethodPost, "/v2/accounts/register", http.StatusBadRequest},
		{http.MethodPost, "/v2/accounts/login", http.StatusBadRequest},
		{http.MethodPost, "/v2/accounts/refresh", http.StatusUnauthorized},
		{http.MethodGet, "/v2/accounts/profile", http.StatusUnauthorized},
		{http.MethodPut, "/v2/accounts/profile", http.StatusUnauthorized},
		{http.MethodGet, "/v2/accounts/" + ownID, http.StatusUnauthorized},
		{http.MethodPut, "/v2/accounts/" + ownID, http.StatusUnauthorized},
		{http.MethodPost, basePath + "/register", http.StatusNotFound},
		{http.MethodGet, basePath + "/profile", http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s", tc.method, tc.path), func(t *testing.T) {
			resp := s.do(t, tc.method, tc.path, nil, nil)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestUnmatchedRoutesUnderBasePath(t *testing.T) {
	for _, selfAccess := range []bool{true, false} {
		s := newTestServer(t, handler.RouteOptions{SelfAccessRoutes: selfAccess})

		testCases := []struct {
			method string
			path   string
		}{
			{http.MethodGet, basePath + "/does-not-exist"},
			{http.MethodGet, basePath + "/register"},
			{http.MethodPut, basePath + "/login"},
			{http.MethodDelete, basePath + "/profile"},
		}
		for _, tc := range testCases {
			t.Run(fmt.Sprintf("self_%t_%s_%s", selfAccess, tc.method, tc.path), func(t *testing.T) {
				resp := s.do(t, tc.method, tc.path, nil, nil)
				assert.Equal(t, http.StatusNotFound, resp.StatusCode)
				assert.Equal(t, "Route not found", decodeBody(t, resp)["message"])
			})
		}
	}
}

func TestLoginRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter()
	defer limiter.Close()

	s := newTestServer(t, handler.RouteOptions{
		LoginLimiter: ratelimit.New(ratelimit.Config{
			Limiter: limiter,
			Max:     5,
			Window:  15 * time.Minute,
			Scope:   "login",
		}),
	})
	s.repo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, nil).Times(5)

	for i := 0; i < 5; i++ {
		resp := s.do(t, http.MethodPost, basePath+"/login", map[string]string{"email": "a@x.com", "password": "p1"}, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, "attempt %d", i+1)
	}

	resp := s.do(t, http.MethodPost, basePath+"/login", map[string]string{"email": "a@x.com", "password": "p1"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many login attempts, please try again later.", decodeBody(t, resp)["message"])

	// register is not limited
	s.repo.EXPECT().GetByEmail(gomock.Any(), "a@x.com").Return(nil, errors.New("down"))
	resp = s.do(t, http.MethodPost, basePath+"/register", map[string]string{
		"name": "A", "email": "a@x.com", "password": "p1", "address": "addr",
	}, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

const (
	ownID   = "6f1c2a4e-8d3b-4c55-9a7e-2b1d0c9e8f71"
	otherID = "0b7e9f3a-1c2d-4e5f-8a9b-c0d1e2f3a4b5"
)

func TestSelfAccessRoutes(t *testing.T) {
	t.Run("enforced", func(t *testing.T) {
		s := newTestServer(t, handler.RouteOptions{SelfAccessRoutes: true})
		user := storedUser(t, ownID, "a@x.com", "p1")
		s.repo.EXPECT().GetByID(gomock.Any(), ownID).Return(user, nil).Times(2)

		resp := s.do(t, http.MethodGet, basePath+"/"+otherID, nil, s.bearer(t, ownID))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Forbidden: You can't access this profile", decodeBody(t, resp)["message"])

		resp = s.do(t, http.MethodGet, basePath+"/"+ownID, nil, s.bearer(t, ownID))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, ownID, decodeBody(t, resp)["id"])
	})

	t.Run("update of another profile is forbidden", func(t *testing.T) {
		s := newTestServer(t, handler.RouteOptions{SelfAccessRoutes: true})
		s.repo.EXPECT().GetByID(gomock.Any(), ownID).Return(storedUser(t, ownID, "a@x.com", "p1"), nil)

		resp := s.do(t, http.MethodPut, basePath+"/"+otherID, map[string]string{"bio": "x"}, s.bearer(t, ownID))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("disabled routes are not mounted", func(t *testing.T) {
		s := newTestServer(t, handler.RouteOptions{SelfAccessRoutes: false})

		resp := s.do(t, http.MethodGet, basePath+"/"+ownID, nil, s.bearer(t, ownID))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Route not found", decodeBody(t, resp)["message"])
	})

	t.Run("requires a token", func(t *testing.T) {
		s := newTestServer(t, handler.RouteOptions{SelfAccessRoutes: true})
		resp := s.do(t, http.MethodGet, basePath+"/"+ownID, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Not authorized, no token", decodeBody(t, resp)["message"])
	})
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"store up", nil, http.StatusOK},
		{"store down", errors.New("no reachable servers"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/healthz", handler.Health(stubPinger{err: tt.err}, nil))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func newFailingApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler(nil)})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("unexpected")
	})
	return app
}
