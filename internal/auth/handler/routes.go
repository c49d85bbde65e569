package handler

import (
	"github.com/gofiber/fiber/v2"
)

const DefaultBasePath = "/api/users"

type RouteOptions struct {
	BasePath string
	// SelfAccessRoutes mounts GET/PUT /:id, where id must be a UUID naming the
	// authenticated user.
	SelfAccessRoutes bool
	// LoginLimiter runs before the login handler when set.
	LoginLimiter fiber.Handler
}

func RegisterRoutes(app *fiber.App, h *AuthHandler, opts RouteOptions) {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	users := app.Group(opts.BasePath)

	users.Post("/register", h.Register)
	users.Post("/login", chain(opts.LoginLimiter, h.Login)...)
	users.Post("/refresh", h.Refresh)

	protect := h.Protect()
	users.Get("/profile", protect, h.GetProfile)
	users.Put("/profile", protect, h.UpdateProfile)

	if opts.SelfAccessRoutes {
		// The guid constraint keeps unknown paths falling through to NotFound
		// instead of being answered by Protect.
		selfAccess := VerifyUser("id")
		users.Get("/:id<guid>", protect, selfAccess, h.GetProfile)
		users.Put("/:id<guid>", protect, selfAccess, h.UpdateProfile)
	}
}

func chain(handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
