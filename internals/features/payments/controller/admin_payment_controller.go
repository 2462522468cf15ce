// 📁 controller/admin_payment_controller.go
package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pelpmr_backend/internals/features/payments/service"
	registrationService "pelpmr_backend/internals/features/registrations/service"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

// AdminPaymentController melayani aksi pembayaran sisi back-office:
// konfirmasi transfer manual dan pembuatan ulang kwitansi.
type AdminPaymentController struct {
	DB       *gorm.DB
	Actions  *registrationService.AdminActions
	Receipts *service.ReceiptGenerator
}

func NewAdminPaymentController(db *gorm.DB, fs storage.FileStorage) *AdminPaymentController {
	return &AdminPaymentController{
		DB:       db,
		Actions:  registrationService.NewAdminActions(db),
		Receipts: service.NewReceiptGenerator(db, fs),
	}
}

// 🟢 CONFIRM PAYMENT: WAITING_CONFIRMATION → SUCCESS, lalu terbitkan
// kwitansi. Kwitansi best-effort; konfirmasinya sendiri sudah durable.
func (ctrl *AdminPaymentController) ConfirmPayment(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Order ID dibutuhkan")
	}

	payment, err := ctrl.Actions.ConfirmPayment(c.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, registrationService.ErrPaymentNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Pembayaran tidak ditemukan")
		case errors.Is(err, registrationService.ErrPaymentNotConfirmable):
			return helper.Error(c, fiber.StatusConflict, err.Error())
		default:
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengkonfirmasi pembayaran")
		}
	}

	receiptURL, rerr := ctrl.Receipts.Generate(c.Context(), orderID)
	if rerr != nil {
		log.Printf("[WARN] kwitansi order %s belum terbit: %v", orderID, rerr)
	}

	return helper.Success(c, "Pembayaran dikonfirmasi", fiber.Map{
		"orderId":     payment.PaymentOrderID,
		"status":      payment.PaymentStatus,
		"confirmedAt": payment.PaymentConfirmedAt,
		"receiptPath": receiptURL,
	})
}

// 🟢 REGENERATE RECEIPT: buat ulang kwitansi untuk pembayaran SUCCESS
// (mis. setelah kwitansi lama terhapus dari disk).
func (ctrl *AdminPaymentController) RegenerateReceipt(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Order ID dibutuhkan")
	}

	receiptURL, err := ctrl.Receipts.Generate(c.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Pembayaran tidak ditemukan")
		case errors.Is(err, service.ErrReceiptNotReady):
			return helper.Error(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, gorm.ErrRecordNotFound):
			return helper.Error(c, fiber.StatusNotFound, "Pembayaran tidak ditemukan")
		default:
			log.Printf("[ERROR] kwitansi order %s gagal: %v", orderID, err)
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat kwitansi")
		}
	}

	return helper.Success(c, "Kwitansi dibuat", fiber.Map{
		"orderId":     orderID,
		"receiptPath": receiptURL,
	})
}
