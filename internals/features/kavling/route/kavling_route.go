package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	kavlingController "pelpmr_backend/internals/features/kavling/controller"
)

// KavlingRoutes mendaftarkan endpoint publik inventori kavling & tenda.
func KavlingRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := kavlingController.NewKavlingController(db)

	api.Get("/kavling/available", ctrl.GetAvailable)
	api.Get("/tents/availability", ctrl.GetTentsAvailability)
}
