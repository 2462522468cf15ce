// 📁 controller/payment_controller.go
package controller

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	kavlingService "pelpmr_backend/internals/features/kavling/service"
	"pelpmr_backend/internals/features/payments/model"
	"pelpmr_backend/internals/features/payments/service"
	registrationDTO "pelpmr_backend/internals/features/registrations/dto"
	registrationModel "pelpmr_backend/internals/features/registrations/model"
	registrationService "pelpmr_backend/internals/features/registrations/service"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

const (
	proofMaxWidth = 1000
	proofQuality  = 80
)

// PaymentController melayani dua jalur pembayaran (Snap Midtrans dan
// transfer manual) plus webhook notifikasi. Kedua jalur berujung pada
// Finalizer yang sama.
type PaymentController struct {
	DB        *gorm.DB
	Storage   storage.FileStorage
	Finalizer *registrationService.Finalizer
	Webhook   *service.WebhookHandler
}

func NewPaymentController(db *gorm.DB, fs storage.FileStorage, serverKey string) *PaymentController {
	fin := registrationService.NewFinalizer(db, fs)
	return &PaymentController{
		DB:        db,
		Storage:   fs,
		Finalizer: fin,
		Webhook:   service.NewWebhookHandler(db, fin, service.NewReceiptGenerator(db, fs), serverKey),
	}
}

// 🟢 CREATE SNAP TOKEN: terbitkan token Snap untuk sesi yang sudah
// mengunci ringkasan. Finalisasi menunggu notifikasi settlement.
func (ctrl *PaymentController) CreateSnapToken(c *fiber.Ctx) error {
	session, draft, fail := ctrl.loadPayableSession(c)
	if fail != nil {
		return fail
	}
	orderID := *session.TempRegistrationOrderID

	token, redirectURL, err := service.GenerateSnapToken(orderID, draft)
	if err != nil {
		log.Printf("[ERROR] snap token order %s gagal: %v", orderID, err)
		return helper.Error(c, fiber.StatusBadGateway, "Gagal membuat transaksi Midtrans")
	}

	if err := ctrl.DB.Model(&registrationModel.TemporaryRegistration{}).
		Where("temp_registration_id = ?", session.TempRegistrationID).
		Update("temp_registration_status", registrationModel.TempStatusProcessingPayment).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memperbarui sesi")
	}

	return helper.Success(c, "Token Snap dibuat", fiber.Map{
		"orderId":     orderID,
		"token":       token,
		"redirectUrl": redirectURL,
	})
}

// 🟢 MANUAL PAYMENT: terima bukti transfer lalu finalisasi dengan status
// WAITING_CONFIRMATION. Verifikasi nominalnya dilakukan admin.
func (ctrl *PaymentController) SubmitManualPayment(c *fiber.Ctx) error {
	session, draft, fail := ctrl.loadPayableSession(c)
	if fail != nil {
		return fail
	}
	orderID := *session.TempRegistrationOrderID

	fileHeader, err := c.FormFile("proof")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Bukti transfer wajib dilampirkan (field 'proof')")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Bukti transfer tidak bisa dibuka")
	}
	defer src.Close()

	compressed, err := helper.CompressImageToWebP(src, proofMaxWidth, proofQuality)
	if err != nil {
		return helper.Error(c, fiber.StatusUnprocessableEntity, "Bukti transfer harus berupa gambar")
	}

	slug := helper.SchoolSlug(draft.SchoolData.SchoolName)
	proofURL, err := ctrl.Storage.SavePermanent(slug, "proofs",
		fmt.Sprintf("bukti-%s.webp", orderID), compressed)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan bukti transfer")
	}

	outcome := registrationDTO.PaymentOutcome{
		Method:          model.MethodManual,
		Status:          model.StatusWaitingConfirmation,
		ManualProofPath: proofURL,
	}
	registrationID, err := ctrl.Finalizer.Commit(c.Context(), draft, orderID, outcome)
	if err != nil {
		return finalizeError(c, err)
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Pendaftaran tersimpan, menunggu konfirmasi pembayaran", fiber.Map{
		"registrationId": registrationID,
		"orderId":        orderID,
		"paymentStatus":  model.StatusWaitingConfirmation,
	})
}

// 🟢 PAYMENT STATUS: status pembayaran berdasarkan Order ID. Jika belum
// difinalisasi, status sesi yang dilaporkan.
func (ctrl *PaymentController) GetStatus(c *fiber.Ctx) error {
	orderID := c.Params("orderId")
	if orderID == "" {
		return helper.Error(c, fiber.StatusBadRequest, "Order ID dibutuhkan")
	}

	var payment model.Payment
	err := ctrl.DB.Where("payment_order_id = ?", orderID).First(&payment).Error
	if err == nil {
		return helper.Success(c, "Status pembayaran", fiber.Map{
			"orderId":     payment.PaymentOrderID,
			"status":      payment.PaymentStatus,
			"method":      payment.PaymentMethod,
			"amount":      payment.PaymentAmount,
			"confirmedAt": payment.PaymentConfirmedAt,
			"receiptPath": payment.PaymentReceiptPath,
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil status pembayaran")
	}

	var session registrationModel.TemporaryRegistration
	if err := ctrl.DB.Where("temp_registration_order_id = ?", orderID).
		First(&session).Error; err != nil {
		return helper.Error(c, fiber.StatusNotFound, "Order ID tidak ditemukan")
	}
	return helper.Success(c, "Status pembayaran", fiber.Map{
		"orderId": orderID,
		"status":  session.TempRegistrationStatus,
	})
}

// 🟢 MIDTRANS WEBHOOK: endpoint notifikasi HTTP dari Midtrans.
// Selalu balas 200 untuk error bisnis yang tidak akan sembuh dengan retry.
func (ctrl *PaymentController) HandleMidtransNotification(c *fiber.Ctx) error {
	var notification service.MidtransNotification
	if err := c.BodyParser(&notification); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Payload notifikasi tidak valid")
	}

	err := ctrl.Webhook.Handle(c.Context(), &notification)
	switch {
	case err == nil:
		return helper.Success(c, "OK", nil)
	case errors.Is(err, service.ErrInvalidSignature):
		return helper.Error(c, fiber.StatusForbidden, "Signature tidak valid")
	case errors.Is(err, service.ErrUnknownOrder):
		log.Printf("[WARN] notifikasi untuk order tak dikenal: %v", err)
		return helper.Success(c, "OK", nil)
	default:
		log.Printf("[ERROR] webhook order %s gagal: %v", notification.OrderID, err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memproses notifikasi")
	}
}

// --------------------------------------------------
// internal
// --------------------------------------------------

// loadPayableSession memuat sesi yang siap dibayar: draft sudah di langkah
// pembayaran dan Order ID sudah terbit. Error-nya selalu non-nil
// *fiber.Error; handler meneruskannya ke ErrorHandler aplikasi.
func (ctrl *PaymentController) loadPayableSession(c *fiber.Ctx) (*registrationModel.TemporaryRegistration, *registrationDTO.RegistrationDraft, error) {
	id, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "ID sesi tidak valid")
	}

	var session registrationModel.TemporaryRegistration
	if err := ctrl.DB.Where("temp_registration_id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Sesi pendaftaran tidak ditemukan")
		}
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat sesi")
	}

	if session.TempRegistrationStatus == registrationModel.TempStatusFinalized {
		return nil, nil, fiber.NewError(fiber.StatusConflict, "Sesi sudah difinalisasi")
	}
	if session.TempRegistrationOrderID == nil || *session.TempRegistrationOrderID == "" {
		return nil, nil, fiber.NewError(fiber.StatusConflict, "Ringkasan belum dikonfirmasi (Order ID belum terbit)")
	}

	machine, err := registrationService.LoadDraftMachine(&session)
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Draft sesi rusak")
	}
	if machine.Step < registrationService.StepAwaitingPayment {
		return nil, nil, fiber.NewError(fiber.StatusConflict, "Draft belum siap dibayar")
	}
	return &session, machine.Draft, nil
}

func finalizeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, registrationService.ErrDraftIncomplete):
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, registrationService.ErrSchoolExists),
		errors.Is(err, registrationService.ErrOrderIDExists),
		errors.Is(err, kavlingService.ErrKavlingTaken):
		return helper.Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, kavlingService.ErrKavlingNotFound):
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("[ERROR] finalisasi gagal: %v", err)
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memfinalisasi pendaftaran")
	}
}
