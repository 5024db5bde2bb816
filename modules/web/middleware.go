package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/storefront-demo/modules/session"
)

// RequireAdmin gates the admin panel routes on the session store. An
// anonymous visitor gets 401; an authenticated non-admin gets 403.
func RequireAdmin(sessions *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !sessions.IsAuthenticated() {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Faça login para acessar esta área",
			})
		}
		if !sessions.CanManageProducts() {
			return c.Status(fiber.StatusForbidden).JSON(ErrorResponse{
				Error:   "forbidden",
				Message: "Acesso negado. Esta conta não possui privilégios de administrador.",
			})
		}
		return c.Next()
	}
}
