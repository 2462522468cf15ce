package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pelpmr_backend/internals/configs"
	authRoute "pelpmr_backend/internals/features/auth/route"
	kavlingRoute "pelpmr_backend/internals/features/kavling/route"
	paymentRoute "pelpmr_backend/internals/features/payments/route"
	registrationRoute "pelpmr_backend/internals/features/registrations/route"
	"pelpmr_backend/internals/helpers/storage"
	"pelpmr_backend/internals/middlewares/auth"
)

// SetupRoutes memasang seluruh route aplikasi:
//   - /api    : publik (wizard pendaftaran, inventori, pembayaran)
//   - /api/a  : back-office, di belakang JWT admin
func SetupRoutes(app *fiber.App, db *gorm.DB, fs storage.FileStorage) {
	api := app.Group("/api")

	authRoute.AuthRoutes(api)
	kavlingRoute.KavlingRoutes(api, db)
	registrationRoute.RegistrationRoutes(api, db, fs)
	paymentRoute.PaymentRoutes(api, db, fs)

	admin := app.Group("/api/a", auth.AdminOnly(configs.JWTSecret))
	registrationRoute.AdminRegistrationRoutes(admin, db)
	paymentRoute.AdminPaymentRoutes(admin, db, fs)
}
