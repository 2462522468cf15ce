package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/payments/model"
	registrationDTO "pelpmr_backend/internals/features/registrations/dto"
	registrationService "pelpmr_backend/internals/features/registrations/service"
	"pelpmr_backend/internals/helpers/storage"
)

func TestGenerateReceipt(t *testing.T) {
	db := newPaymentTestDB(t)
	fs := storage.NewLocalStorage(t.TempDir())
	fin := registrationService.NewFinalizer(db, fs)

	base := 2 * constants.BiayaPeserta()
	draft := &registrationDTO.RegistrationDraft{
		SchoolData: &registrationDTO.SchoolDataRequest{
			SchoolName:     "SMA Contoh",
			CoachName:      "Pak Budi",
			WhatsappNumber: "081234567890",
			Category:       constants.CategoryWira,
		},
		Participants: []registrationDTO.RosterRow{
			{No: 1, FullName: "Andi", Gender: "L"},
			{No: 2, FullName: "Sari", Gender: "P"},
		},
		TentChoice: &registrationDTO.TentChoice{Type: constants.TentBawaSendiri},
		Costs:      &registrationDTO.Costs{Participants: base, Total: base},
	}
	orderID := "1-SMA-CONTOH-PelPMR-03-2026"
	if _, err := fin.Commit(context.Background(), draft, orderID, registrationDTO.PaymentOutcome{
		Method: model.MethodGateway,
		Status: model.StatusSuccess,
	}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	g := NewReceiptGenerator(db, fs)
	url, err := g.Generate(context.Background(), orderID)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/permanent/sma-contoh/receipts/kwitansi-1-") ||
		!strings.HasSuffix(url, ".pdf") {
		t.Errorf("unexpected receipt url: %q", url)
	}

	if _, err := os.Stat(fs.PermanentPath("sma-contoh", "receipts", "kwitansi-1-sma-contoh.pdf")); err != nil {
		t.Errorf("receipt missing on disk: %v", err)
	}

	var payment model.Payment
	db.Where("payment_order_id = ?", orderID).First(&payment)
	if payment.PaymentReceiptPath == nil || *payment.PaymentReceiptPath != url {
		t.Errorf("receipt path not stored: %v", payment.PaymentReceiptPath)
	}

	// Regenerasi: menimpa file lama tanpa error.
	if _, err := g.Generate(context.Background(), orderID); err != nil {
		t.Errorf("regenerate: %v", err)
	}
}

func TestGenerateReceiptRequiresSuccess(t *testing.T) {
	db := newPaymentTestDB(t)
	fs := storage.NewLocalStorage(t.TempDir())
	fin := registrationService.NewFinalizer(db, fs)

	base := constants.BiayaPeserta()
	draft := &registrationDTO.RegistrationDraft{
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
	orderID := "1-SMA-CONTOH-PelPMR-03-2026"
	if _, err := fin.Commit(context.Background(), draft, orderID, registrationDTO.PaymentOutcome{
		Method: model.MethodManual,
		Status: model.StatusWaitingConfirmation,
	}); err != nil {
		t.Fatal(err)
	}

	g := NewReceiptGenerator(db, fs)
	if _, err := g.Generate(context.Background(), orderID); !errors.Is(err, ErrReceiptNotReady) {
		t.Errorf("expected ErrReceiptNotReady, got %v", err)
	}
	if _, err := g.Generate(context.Background(), "9-HILANG-PelPMR-01-2026"); !errors.Is(err, ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound, got %v", err)
	}
}
