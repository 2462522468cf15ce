package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	registrationController "pelpmr_backend/internals/features/registrations/controller"
	"pelpmr_backend/internals/helpers/storage"
	"pelpmr_backend/internals/middlewares"
)

// RegistrationRoutes mendaftarkan endpoint publik wizard pendaftaran.
func RegistrationRoutes(api fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := registrationController.NewRegistrationController(db, fs)

	api.Get("/registrations/check-school-name", ctrl.CheckSchoolName)
	api.Post("/registrations/session", middlewares.RegisterRateLimiter(), ctrl.CreateSession)

	session := api.Group("/registrations/session/:id")
	session.Get("/", ctrl.GetSession)
	session.Put("/school-data", ctrl.SetSchoolData)
	session.Post("/excel", ctrl.UploadExcel)
	session.Post("/confirm-roster", ctrl.ConfirmRoster)
	session.Put("/tent", ctrl.SetTent)
	session.Put("/kavling", ctrl.SetKavling)
	session.Post("/confirm-summary", ctrl.ConfirmSummary)
}

// AdminRegistrationRoutes mendaftarkan endpoint back-office pendaftaran.
// Pemanggil wajib sudah memasang middleware admin pada router-nya.
func AdminRegistrationRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := registrationController.NewAdminController(db)

	admin.Get("/registrations", ctrl.ListRegistrations)
	admin.Get("/registrations/:id", ctrl.GetRegistration)
	admin.Delete("/registrations/:id", ctrl.DeleteRegistration)
	admin.Get("/participants", ctrl.ListAllParticipants)
	admin.Get("/companions", ctrl.ListAllCompanions)
	admin.Get("/stats", ctrl.GetStats)
}
