package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pelpmr_backend/internals/configs"
	paymentController "pelpmr_backend/internals/features/payments/controller"
	"pelpmr_backend/internals/helpers/storage"
)

// PaymentRoutes mendaftarkan endpoint publik pembayaran + webhook Midtrans.
func PaymentRoutes(api fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := paymentController.NewPaymentController(db, fs, configs.MidtransServerKey)

	api.Post("/payments/:sessionId/snap-token", ctrl.CreateSnapToken)
	api.Post("/payments/:sessionId/manual", ctrl.SubmitManualPayment)
	api.Get("/payments/status/:orderId", ctrl.GetStatus)
	api.Post("/payments/midtrans/notification", ctrl.HandleMidtransNotification)
}

// AdminPaymentRoutes mendaftarkan endpoint pembayaran back-office.
func AdminPaymentRoutes(admin fiber.Router, db *gorm.DB, fs storage.FileStorage) {
	ctrl := paymentController.NewAdminPaymentController(db, fs)

	admin.Patch("/payments/:orderId/confirm", ctrl.ConfirmPayment)
	admin.Post("/payments/:orderId/receipt", ctrl.RegenerateReceipt)
}
