package route

import (
	"github.com/gofiber/fiber/v2"

	authController "pelpmr_backend/internals/features/auth/controller"
	"pelpmr_backend/internals/middlewares"
)

// AuthRoutes mendaftarkan endpoint login admin.
func AuthRoutes(api fiber.Router) {
	ctrl := authController.NewAuthController()

	api.Post("/auth/login", middlewares.LoginRateLimiter(), ctrl.Login)
}
