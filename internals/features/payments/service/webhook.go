package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"pelpmr_backend/internals/features/payments/model"
	registrationDTO "pelpmr_backend/internals/features/registrations/dto"
	registrationModel "pelpmr_backend/internals/features/registrations/model"
	registrationService "pelpmr_backend/internals/features/registrations/service"
)

var (
	ErrInvalidSignature = errors.New("signature notifikasi tidak valid")
	ErrUnknownOrder     = errors.New("order id tidak dikenal")
)

// MidtransNotification adalah subset field notifikasi HTTP Midtrans yang
// kami pakai. Field lain diabaikan.
type MidtransNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
}

// WebhookHandler memproses notifikasi pembayaran dari Midtrans.
//
// Dua jalur: jika Payment untuk order id sudah ada, statusnya disinkronkan;
// jika belum (pembayar memakai Snap sebelum finalisasi), sesi draft dicari
// lewat order id dan settlement memicu finalisasi penuh. Keduanya idempoten
// karena Midtrans mengirim ulang notifikasi yang belum ter-ACK.
type WebhookHandler struct {
	DB        *gorm.DB
	Finalizer *registrationService.Finalizer
	Receipts  *ReceiptGenerator
	ServerKey string
}

func NewWebhookHandler(db *gorm.DB, fin *registrationService.Finalizer, receipts *ReceiptGenerator, serverKey string) *WebhookHandler {
	return &WebhookHandler{DB: db, Finalizer: fin, Receipts: receipts, ServerKey: serverKey}
}

// VerifySignature mencocokkan signature_key notifikasi dengan
// sha512(order_id + status_code + gross_amount + server_key).
func (h *WebhookHandler) VerifySignature(n *MidtransNotification) error {
	sum := sha512.Sum512([]byte(n.OrderID + n.StatusCode + n.GrossAmount + h.ServerKey))
	if hex.EncodeToString(sum[:]) != n.SignatureKey {
		return ErrInvalidSignature
	}
	return nil
}

func (h *WebhookHandler) Handle(ctx context.Context, n *MidtransNotification) error {
	if err := h.VerifySignature(n); err != nil {
		return err
	}

	status := mapTransactionStatus(n.TransactionStatus, n.FraudStatus)

	var payment model.Payment
	err := h.DB.WithContext(ctx).
		Where("payment_order_id = ?", n.OrderID).
		First(&payment).Error
	switch {
	case err == nil:
		return h.syncExistingPayment(ctx, &payment, status)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return h.finalizeFromSession(ctx, n.OrderID, status)
	default:
		return err
	}
}

// syncExistingPayment menyinkronkan status Payment yang sudah ada. Status
// SUCCESS bersifat final dan tidak pernah diturunkan oleh notifikasi susulan.
func (h *WebhookHandler) syncExistingPayment(ctx context.Context, payment *model.Payment, status string) error {
	if payment.PaymentStatus == model.StatusSuccess {
		return nil
	}
	if status == payment.PaymentStatus {
		return nil
	}

	updates := map[string]interface{}{"payment_status": status}
	if status == model.StatusSuccess {
		updates["payment_confirmed_at"] = time.Now()
	}
	if err := h.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_order_id = ? AND payment_status <> ?",
			payment.PaymentOrderID, model.StatusSuccess).
		Updates(updates).Error; err != nil {
		return err
	}
	if status == model.StatusSuccess {
		h.issueReceipt(ctx, payment.PaymentOrderID)
	}
	return nil
}

// finalizeFromSession menangani notifikasi yang datang sebelum finalisasi:
// settlement memicu commit draft; expire/deny/cancel menandai sesi gagal;
// pending dibiarkan menunggu.
func (h *WebhookHandler) finalizeFromSession(ctx context.Context, orderID, status string) error {
	var session registrationModel.TemporaryRegistration
	if err := h.DB.WithContext(ctx).
		Where("temp_registration_order_id = ?", orderID).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
		}
		return err
	}

	// Notifikasi ulang setelah commit: Payment sudah ada di jalur utama,
	// sesi tinggal diabaikan.
	if session.TempRegistrationStatus == registrationModel.TempStatusFinalized {
		return nil
	}

	switch status {
	case model.StatusSuccess:
		machine, err := registrationService.LoadDraftMachine(&session)
		if err != nil {
			return err
		}
		outcome := registrationDTO.PaymentOutcome{
			Method: model.MethodGateway,
			Status: model.StatusSuccess,
		}
		_, err = h.Finalizer.Commit(ctx, machine.Draft, orderID, outcome)
		if errors.Is(err, registrationService.ErrOrderIDExists) {
			// Balapan dengan jalur sinkron; hasil akhirnya sama.
			log.Printf("[INFO] order %s sudah difinalisasi jalur lain", orderID)
			return nil
		}
		if err != nil {
			return err
		}
		h.issueReceipt(ctx, orderID)
		return nil
	case model.StatusFailed, model.StatusExpired:
		return h.DB.WithContext(ctx).Model(&registrationModel.TemporaryRegistration{}).
			Where("temp_registration_id = ?", session.TempRegistrationID).
			Update("temp_registration_status", registrationModel.TempStatusFailed).Error
	default:
		return nil
	}
}

// issueReceipt mencetak kwitansi setelah pembayaran mencapai SUCCESS.
// Best-effort: kegagalan dicatat, admin bisa membuat ulang lewat endpoint
// kwitansi.
func (h *WebhookHandler) issueReceipt(ctx context.Context, orderID string) {
	if h.Receipts == nil {
		return
	}
	if _, err := h.Receipts.Generate(ctx, orderID); err != nil {
		log.Printf("[WARN] kwitansi order %s belum terbit: %v", orderID, err)
	}
}

func mapTransactionStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "settlement":
		return model.StatusSuccess
	case "capture":
		if fraudStatus == "challenge" {
			return model.StatusPending
		}
		return model.StatusSuccess
	case "deny", "cancel":
		return model.StatusFailed
	case "expire":
		return model.StatusExpired
	default:
		return model.StatusPending
	}
}
