package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	database "pelpmr_backend/internals/databases"
	kavlingModel "pelpmr_backend/internals/features/kavling/model"
	"pelpmr_backend/internals/features/payments/model"
	registrationDTO "pelpmr_backend/internals/features/registrations/dto"
	registrationModel "pelpmr_backend/internals/features/registrations/model"
	registrationService "pelpmr_backend/internals/features/registrations/service"
	"pelpmr_backend/internals/helpers/storage"
)

const testServerKey = "SB-Mid-server-TEST"

func newPaymentTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// :memory: per koneksi adalah DB terpisah; kunci ke satu koneksi.
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(
		&registrationModel.School{},
		&registrationModel.Registration{},
		&registrationModel.Participant{},
		&registrationModel.Companion{},
		&registrationModel.TemporaryRegistration{},
		&model.Payment{},
		&kavlingModel.KavlingBooking{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedKavling(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func signedNotification(orderID, transactionStatus string) *MidtransNotification {
	statusCode := "200"
	grossAmount := "25000.00"
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + testServerKey))
	return &MidtransNotification{
		OrderID:           orderID,
		TransactionStatus: transactionStatus,
		StatusCode:        statusCode,
		GrossAmount:       grossAmount,
		SignatureKey:      hex.EncodeToString(sum[:]),
	}
}

// stagePayableSession menanam sesi siap-bayar (bawa tenda sendiri) dengan
// order id terpasang, lalu mengembalikan order id-nya.
func stagePayableSession(t *testing.T, db *gorm.DB) string {
	t.Helper()
	base := constants.BiayaPeserta()
	draft := registrationDTO.RegistrationDraft{
		SchoolData: &registrationDTO.SchoolDataRequest{
			SchoolName:     "SMA Contoh",
			CoachName:      "Pak Budi",
			WhatsappNumber: "081234567890",
			Category:       constants.CategoryWira,
		},
		Participants: []registrationDTO.RosterRow{{No: 1, FullName: "Andi", Gender: "L"}},
		TentChoice:   &registrationDTO.TentChoice{Type: constants.TentBawaSendiri},
		Costs:        &registrationDTO.Costs{Participants: base, Total: base},
	}
	payload, err := json.Marshal(&draft)
	if err != nil {
		t.Fatal(err)
	}

	orderID := "1-SMA-CONTOH-PelPMR-03-2026"
	session := registrationModel.TemporaryRegistration{
		TempRegistrationID:      uuid.New(),
		TempRegistrationData:    payload,
		TempRegistrationStep:    int(registrationService.StepAwaitingPayment),
		TempRegistrationStatus:  registrationModel.TempStatusProcessingPayment,
		TempRegistrationOrderID: &orderID,
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatal(err)
	}
	return orderID
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewWebhookHandler(db, registrationService.NewFinalizer(db, nil), nil, testServerKey)

	n := signedNotification("1-X-PelPMR-03-2026", "settlement")
	n.SignatureKey = "deadbeef"
	if err := h.Handle(context.Background(), n); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestWebhookSettlementFinalizesSession(t *testing.T) {
	db := newPaymentTestDB(t)
	fs := storage.NewLocalStorage(t.TempDir())
	h := NewWebhookHandler(db, registrationService.NewFinalizer(db, nil),
		NewReceiptGenerator(db, fs), testServerKey)

	orderID := stagePayableSession(t, db)
	if err := h.Handle(context.Background(), signedNotification(orderID, "settlement")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var payment model.Payment
	if err := db.Where("payment_order_id = ?", orderID).First(&payment).Error; err != nil {
		t.Fatalf("payment not created by settlement: %v", err)
	}
	if payment.PaymentStatus != model.StatusSuccess || payment.PaymentMethod != model.MethodGateway {
		t.Errorf("payment = %s/%s, want SUCCESS/GATEWAY", payment.PaymentStatus, payment.PaymentMethod)
	}
	if payment.PaymentReceiptPath == nil || *payment.PaymentReceiptPath == "" {
		t.Error("settlement must issue a receipt (payment_receipt_path empty)")
	}

	var session registrationModel.TemporaryRegistration
	db.Where("temp_registration_order_id = ?", orderID).First(&session)
	if session.TempRegistrationStatus != registrationModel.TempStatusFinalized {
		t.Errorf("session status = %q, want FINALIZED", session.TempRegistrationStatus)
	}

	// Midtrans mengirim ulang notifikasi; pengulangan harus tanpa efek samping.
	if err := h.Handle(context.Background(), signedNotification(orderID, "settlement")); err != nil {
		t.Fatalf("redelivery should be a no-op: %v", err)
	}
	var regs int64
	db.Model(&registrationModel.Registration{}).Count(&regs)
	if regs != 1 {
		t.Errorf("redelivery duplicated registrations: %d", regs)
	}
}

func TestWebhookSuccessUpgradeIssuesReceipt(t *testing.T) {
	db := newPaymentTestDB(t)
	fin := registrationService.NewFinalizer(db, nil)
	fs := storage.NewLocalStorage(t.TempDir())
	h := NewWebhookHandler(db, fin, NewReceiptGenerator(db, fs), testServerKey)

	// Jalur manual commit lebih dulu dengan WAITING_CONFIRMATION; notifikasi
	// settlement menyusul dan menaikkan statusnya.
	orderID := stagePayableSession(t, db)
	var session registrationModel.TemporaryRegistration
	if err := db.Where("temp_registration_order_id = ?", orderID).First(&session).Error; err != nil {
		t.Fatal(err)
	}
	machine, err := registrationService.LoadDraftMachine(&session)
	if err != nil {
		t.Fatal(err)
	}
	outcome := registrationDTO.PaymentOutcome{
		Method: model.MethodManual,
		Status: model.StatusWaitingConfirmation,
	}
	if _, err := fin.Commit(context.Background(), machine.Draft, orderID, outcome); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := h.Handle(context.Background(), signedNotification(orderID, "settlement")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var payment model.Payment
	if err := db.Where("payment_order_id = ?", orderID).First(&payment).Error; err != nil {
		t.Fatal(err)
	}
	if payment.PaymentStatus != model.StatusSuccess {
		t.Errorf("status = %q, want SUCCESS", payment.PaymentStatus)
	}
	if payment.PaymentConfirmedAt == nil {
		t.Error("confirmed_at not set by the upgrade")
	}
	if payment.PaymentReceiptPath == nil || *payment.PaymentReceiptPath == "" {
		t.Error("SUCCESS upgrade must issue a receipt (payment_receipt_path empty)")
	}
}

func TestWebhookExpireMarksSessionFailed(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewWebhookHandler(db, registrationService.NewFinalizer(db, nil), nil, testServerKey)

	orderID := stagePayableSession(t, db)
	if err := h.Handle(context.Background(), signedNotification(orderID, "expire")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var session registrationModel.TemporaryRegistration
	db.Where("temp_registration_order_id = ?", orderID).First(&session)
	if session.TempRegistrationStatus != registrationModel.TempStatusFailed {
		t.Errorf("session status = %q, want FAILED", session.TempRegistrationStatus)
	}
	var payments int64
	db.Model(&model.Payment{}).Count(&payments)
	if payments != 0 {
		t.Errorf("expire must not create a payment, got %d", payments)
	}
}

func TestWebhookNeverDowngradesSuccess(t *testing.T) {
	db := newPaymentTestDB(t)
	fin := registrationService.NewFinalizer(db, nil)
	h := NewWebhookHandler(db, fin, nil, testServerKey)

	orderID := stagePayableSession(t, db)
	if err := h.Handle(context.Background(), signedNotification(orderID, "settlement")); err != nil {
		t.Fatal(err)
	}

	// Notifikasi expire yang datang terlambat tidak menurunkan SUCCESS.
	if err := h.Handle(context.Background(), signedNotification(orderID, "expire")); err != nil {
		t.Fatalf("late expire: %v", err)
	}
	var payment model.Payment
	db.Where("payment_order_id = ?", orderID).First(&payment)
	if payment.PaymentStatus != model.StatusSuccess {
		t.Errorf("status downgraded to %q", payment.PaymentStatus)
	}
}

func TestWebhookUnknownOrder(t *testing.T) {
	db := newPaymentTestDB(t)
	h := NewWebhookHandler(db, registrationService.NewFinalizer(db, nil), nil, testServerKey)

	err := h.Handle(context.Background(), signedNotification("9-HILANG-PelPMR-01-2026", "settlement"))
	if !errors.Is(err, ErrUnknownOrder) {
		t.Errorf("expected ErrUnknownOrder, got %v", err)
	}
}

func TestMapTransactionStatus(t *testing.T) {
	cases := []struct {
		txStatus    string
		fraudStatus string
		want        string
	}{
		{"settlement", "", model.StatusSuccess},
		{"capture", "accept", model.StatusSuccess},
		{"capture", "challenge", model.StatusPending},
		{"deny", "", model.StatusFailed},
		{"cancel", "", model.StatusFailed},
		{"expire", "", model.StatusExpired},
		{"pending", "", model.StatusPending},
	}
	for _, c := range cases {
		if got := mapTransactionStatus(c.txStatus, c.fraudStatus); got != c.want {
			t.Errorf("mapTransactionStatus(%q, %q) = %q, want %q", c.txStatus, c.fraudStatus, got, c.want)
		}
	}
}
