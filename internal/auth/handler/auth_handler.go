package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/IVYLIFE/Authly/internal/auth/dto"
	"github.com/IVYLIFE/Authly/internal/auth/service"
	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"github.com/IVYLIFE/Authly/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

const (
	RefreshCookieName = "refreshToken"

	profileUpdatedMessage = "Profile updated successfully"
)

type Options struct {
	// SecureCookie marks the refresh cookie Secure. Enabled in production.
	SecureCookie bool
	RefreshTTL   time.Duration
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

type AuthHandler struct {
	userService  *service.UserService
	secureCookie bool
	refreshTTL   time.Duration
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewAuthHandler(userService *service.UserService, opts Options) *AuthHandler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &AuthHandler{
		userService:  userService,
		secureCookie: opts.SecureCookie,
		refreshTTL:   opts.RefreshTTL,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
	}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input dto.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return h.respondError(c, err)
	}

	result, err := h.userService.Register(c.UserContext(), input)
	if err != nil {
		h.metrics.RecordAuth("register", metrics.OutcomeFailure)
		return h.respondError(c, err)
	}
	h.metrics.RecordAuth("register", metrics.OutcomeSuccess)
	h.logger.Info("user registered", "user_id", result.User.ID)

	h.setRefreshCookie(c, result.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(newAuthOutput(result))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input dto.LoginInput
	if err := parseBody(c, &input); err != nil {
		return h.respondError(c, err)
	}

	result, err := h.userService.Login(c.UserContext(), input)
	if err != nil {
		h.metrics.RecordAuth("login", metrics.OutcomeFailure)
		if errors.Is(err, autherror.ErrUserNotFound) {
			return writeMessage(c, fiber.StatusNotFound, "No user exists with that email")
		}
		return h.respondError(c, err)
	}
	h.metrics.RecordAuth("login", metrics.OutcomeSuccess)

	h.setRefreshCookie(c, result.RefreshToken)
	return c.Status(fiber.StatusOK).JSON(newAuthOutput(result))
}

// Refresh issues a new access token from the refresh cookie. The cookie is
// left untouched.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	accessToken, err := h.userService.Refresh(c.Cookies(RefreshCookieName))
	if err != nil {
		h.metrics.RecordAuth("refresh", metrics.OutcomeFailure)
		return h.respondError(c, err)
	}
	h.metrics.RecordAuth("refresh", metrics.OutcomeSuccess)

	return c.Status(fiber.StatusOK).JSON(dto.RefreshOutput{AccessToken: accessToken})
}

func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, err := h.userService.GetProfile(CurrentUser(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(dto.NewUserOutput(user))
}

func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	var input dto.UpdateProfileInput
	if err := parseBody(c, &input); err != nil {
		return h.respondError(c, err)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), CurrentUser(c), input)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.UpdateProfileOutput{
		Message: profileUpdatedMessage,
		User:    dto.NewUserOutput(user),
	})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HTTPOnly: true,
		Secure:   h.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func newAuthOutput(result *service.AuthResult) dto.AuthOutput {
	return dto.AuthOutput{
		ID:          result.User.ID,
		Name:        result.User.Name,
		Email:       result.User.Email,
		AccessToken: result.AccessToken,
	}
}

// parseBody treats an empty body as an empty object so that missing fields are
// reported by name.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return autherror.ErrInvalidRequestBody
	}
	return nil
}
