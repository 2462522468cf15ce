package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/payments/model"
	registrationModel "pelpmr_backend/internals/features/registrations/model"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

var (
	ErrReceiptNotReady = errors.New("kwitansi hanya untuk pembayaran SUCCESS")
	ErrPaymentNotFound = errors.New("data pembayaran tidak ditemukan")
)

// ReceiptGenerator merender kwitansi PDF dari data tersimpan (bukan dari
// draft) dan menaruhnya di folder receipts milik sekolah.
type ReceiptGenerator struct {
	DB      *gorm.DB
	Storage storage.FileStorage
}

func NewReceiptGenerator(db *gorm.DB, fs storage.FileStorage) *ReceiptGenerator {
	return &ReceiptGenerator{DB: db, Storage: fs}
}

// Generate membuat (atau membuat ulang) kwitansi untuk satu order id dan
// mengembalikan URL publiknya. Pembayaran yang belum SUCCESS ditolak.
func (g *ReceiptGenerator) Generate(ctx context.Context, orderID string) (string, error) {
	var payment model.Payment
	if err := g.DB.WithContext(ctx).
		Preload("Registration.School").
		Where("payment_order_id = ?", orderID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrPaymentNotFound, orderID)
		}
		return "", err
	}
	if payment.PaymentStatus != model.StatusSuccess {
		return "", fmt.Errorf("%w (status: %s)", ErrReceiptNotReady, payment.PaymentStatus)
	}
	if payment.Registration == nil || payment.Registration.School == nil {
		return "", fmt.Errorf("relasi registrasi order %s tidak lengkap", orderID)
	}

	reg := payment.Registration
	school := reg.School

	pdfBytes, err := renderReceiptPDF(&payment, reg, school)
	if err != nil {
		return "", fmt.Errorf("gagal merender kwitansi: %w", err)
	}

	seq := strings.SplitN(orderID, "-", 2)[0]
	slug := helper.SchoolSlug(school.SchoolName)
	filename := fmt.Sprintf("kwitansi-%s-%s.pdf", seq, slug)

	publicURL, err := g.Storage.SavePermanent(slug, "receipts", filename, pdfBytes)
	if err != nil {
		return "", err
	}

	if err := g.DB.WithContext(ctx).Model(&model.Payment{}).
		Where("payment_order_id = ?", orderID).
		Update("payment_receipt_path", publicURL).Error; err != nil {
		return "", err
	}
	return publicURL, nil
}

func renderReceiptPDF(payment *model.Payment, reg *registrationModel.Registration, school *registrationModel.School) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "KWITANSI PEMBAYARAN", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, "Perkemahan Pelantikan PMR "+constants.EventTag, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetDrawColor(120, 120, 120)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(4)

	row := func(label, value string) {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
	}

	row("No. Order", payment.PaymentOrderID)
	row("Nama Sekolah", school.SchoolName)
	row("Kategori", school.SchoolCategory)
	row("Pembina/Pelatih", school.SchoolCoachName)
	tent := "Bawa Sendiri"
	if reg.RegistrationTentType == constants.TentSewaPanitia && reg.RegistrationTentCapacity != nil {
		tent = fmt.Sprintf("Sewa Panitia (kapasitas %d)", *reg.RegistrationTentCapacity)
		if reg.RegistrationKavlingNumber != nil {
			tent += fmt.Sprintf(", Kavling #%d", *reg.RegistrationKavlingNumber)
		}
	}
	row("Tenda", tent)
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 7, "Rincian Biaya", "", 1, "L", false, 0, "")
	feeRow := func(label string, amount int) {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(110, 7, label, "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, formatRupiah(amount), "B", 1, "R", false, 0, "")
	}
	// Nominal diambil apa adanya dari Registration; tidak dihitung ulang
	// dari tarif yang berlaku saat kwitansi dicetak.
	feeRow(fmt.Sprintf("Pendaftaran (%d peserta, %d pendamping)",
		reg.RegistrationParticipantCount, reg.RegistrationCompanionCount),
		reg.RegistrationBaseFee)
	if reg.RegistrationTentFee > 0 {
		feeRow("Sewa Tenda", reg.RegistrationTentFee)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(110, 8, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, formatRupiah(payment.PaymentAmount), "", 1, "R", false, 0, "")
	pdf.Ln(6)

	paidAt := time.Now()
	if payment.PaymentConfirmedAt != nil {
		paidAt = *payment.PaymentConfirmedAt
	}
	row("Metode", payment.PaymentMethod)
	row("Status", payment.PaymentStatus)
	row("Tanggal Lunas", paidAt.Format("02-01-2006 15:04"))

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5,
		"Kwitansi ini dibuat otomatis oleh sistem pendaftaran dan sah tanpa tanda tangan.",
		"", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatRupiah menulis 25000 sebagai "Rp 25.000".
func formatRupiah(amount int) string {
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "Rp " + b.String()
}
