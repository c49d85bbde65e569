package handler

import (
	"strings"

	"github.com/IVYLIFE/Authly/internal/auth/domain"
	autherror "github.com/IVYLIFE/Authly/internal/errors"
	"github.com/gofiber/fiber/v2"
)

const userLocalsKey = "user"

// Protect resolves the bearer access token to a stored user and makes it
// available through CurrentUser.
func (h *AuthHandler) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return h.respondError(c, autherror.ErrTokenMissing)
		}

		user, err := h.userService.Authenticate(c.UserContext(), token)
		if err != nil {
			return h.respondError(c, err)
		}

		c.Locals(userLocalsKey, user)
		return c.Next()
	}
}

// VerifyUser only lets a request through when the path parameter names the
// authenticated user. It must run after Protect.
func VerifyUser(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || user.ID != c.Params(param) {
			status, message := errorResponse(autherror.ErrForbidden)
			return writeMessage(c, status, message)
		}
		return c.Next()
	}
}

func CurrentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userLocalsKey).(*domain.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
