package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	kavlingService "pelpmr_backend/internals/features/kavling/service"
	paymentModel "pelpmr_backend/internals/features/payments/model"
	"pelpmr_backend/internals/features/registrations/dto"
	"pelpmr_backend/internals/features/registrations/model"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

var (
	// ErrDraftIncomplete: draft tidak memenuhi kelengkapan struktural minimum.
	ErrDraftIncomplete = errors.New("data pendaftaran tidak lengkap")
	// ErrSchoolExists: nama ternormalisasi sudah dipakai pendaftaran lain.
	ErrSchoolExists = errors.New("sekolah dengan nama serupa sudah terdaftar")
	// ErrOrderIDExists: order id bentrok dengan pembayaran yang sudah ada.
	ErrOrderIDExists = errors.New("order id sudah terpakai")
)

// Finalizer mengubah draft wizard menjadi graf entitas permanen dalam satu
// transaksi, lalu memindahkan file staging ke penyimpanan permanen.
//
// Dua fase yang sengaja dipisah: fase database bersifat atomik dan menjadi
// sumber kebenaran; fase file best-effort dan idempoten sehingga boleh
// diulang kapan pun tanpa menyentuh kebenaran data.
type Finalizer struct {
	DB        *gorm.DB
	Storage   storage.FileStorage
	Inventory *kavlingService.KavlingInventory
}

func NewFinalizer(db *gorm.DB, fs storage.FileStorage) *Finalizer {
	return &Finalizer{
		DB:        db,
		Storage:   fs,
		Inventory: kavlingService.NewKavlingInventory(db),
	}
}

// ValidateDraftComplete memeriksa kelengkapan struktural draft. Kebenaran
// bisnis nilai-nilainya (mis. tarif) dipercaya sudah divalidasi di hulu.
func ValidateDraftComplete(draft *dto.RegistrationDraft) error {
	if draft == nil || draft.SchoolData == nil || draft.TentChoice == nil || draft.Costs == nil {
		return fmt.Errorf("%w: schoolData/tentChoice/costs wajib terisi", ErrDraftIncomplete)
	}
	sd := draft.SchoolData
	if strings.TrimSpace(sd.SchoolName) == "" ||
		strings.TrimSpace(sd.CoachName) == "" ||
		strings.TrimSpace(sd.WhatsappNumber) == "" {
		return fmt.Errorf("%w: identitas sekolah belum lengkap", ErrDraftIncomplete)
	}
	if !constants.IsValidCategory(sd.Category) {
		return fmt.Errorf("%w: kategori %q tidak dikenal", ErrDraftIncomplete, sd.Category)
	}
	if len(draft.Participants) == 0 {
		return fmt.Errorf("%w: roster minimal satu peserta", ErrDraftIncomplete)
	}

	switch draft.TentChoice.Type {
	case constants.TentSewaPanitia:
		if draft.Kavling == nil {
			return fmt.Errorf("%w: penyewa tenda wajib memilih kavling", ErrDraftIncomplete)
		}
		if !constants.IsValidTentCapacity(draft.TentChoice.Capacity) {
			return fmt.Errorf("%w: kapasitas tenda %d tidak tersedia", ErrDraftIncomplete, draft.TentChoice.Capacity)
		}
		if draft.Kavling.Capacity != draft.TentChoice.Capacity {
			return fmt.Errorf("%w: kapasitas kavling tidak cocok dengan tenda", ErrDraftIncomplete)
		}
	case constants.TentBawaSendiri:
		// nomor kavling tidak relevan; pilihan lama dibuang saat commit
	default:
		return fmt.Errorf("%w: mode tenda %q tidak dikenal", ErrDraftIncomplete, draft.TentChoice.Type)
	}

	baseFee := draft.Costs.Participants + draft.Costs.Companions
	if baseFee+draft.TentChoice.Cost != draft.Costs.Total {
		return fmt.Errorf("%w: rincian biaya tidak konsisten", ErrDraftIncomplete)
	}
	return nil
}

// Commit menjalankan finalisasi: seluruh graf entitas dibuat dalam satu
// transaksi (termasuk reservasi kavling), lalu file staging dimigrasikan.
// Sukses ditentukan semata oleh durabilitas database; kegagalan migrasi file
// hanya dicatat dan bisa diulang belakangan.
func (f *Finalizer) Commit(ctx context.Context, draft *dto.RegistrationDraft, orderID string, outcome dto.PaymentOutcome) (uint, error) {
	if err := ValidateDraftComplete(draft); err != nil {
		return 0, err
	}
	if strings.TrimSpace(orderID) == "" {
		return 0, fmt.Errorf("%w: order id kosong", ErrDraftIncomplete)
	}

	normalizedName := NormalizeSchoolName(draft.SchoolData.SchoolName)
	schoolSlug := helper.SchoolSlug(draft.SchoolData.SchoolName)
	rented := draft.TentChoice.Type == constants.TentSewaPanitia

	var registrationID uint
	err := f.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) Sekolah — keunikan nama ternormalisasi ditegakkan oleh
		// constraint, bukan sekadar pengecekan ketersediaan di hulu.
		school := model.School{
			SchoolName:           draft.SchoolData.SchoolName,
			SchoolNormalizedName: normalizedName,
			SchoolCoachName:      draft.SchoolData.CoachName,
			SchoolWhatsappNumber: draft.SchoolData.WhatsappNumber,
			SchoolCategory:       draft.SchoolData.Category,
		}
		if err := tx.Create(&school).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSchoolExists
			}
			return err
		}

		// 2) Registrasi
		registration := model.Registration{
			RegistrationSchoolID:         school.SchoolID,
			RegistrationTentType:         draft.TentChoice.Type,
			RegistrationParticipantCount: len(draft.Participants),
			RegistrationCompanionCount:   len(draft.Companions),
			RegistrationBaseFee:          draft.Costs.Participants + draft.Costs.Companions,
			RegistrationTentFee:          draft.TentChoice.Cost,
			RegistrationTotalFee:         draft.Costs.Total,
		}
		if rented {
			capacity := draft.TentChoice.Capacity
			number := draft.Kavling.Number
			registration.RegistrationTentCapacity = &capacity
			registration.RegistrationKavlingNumber = &number
		}
		if err := tx.Create(&registration).Error; err != nil {
			return err
		}
		registrationID = registration.RegistrationID

		// 3) Peserta — baris tanpa nama/gender dilewati; field opsional
		// yang kosong diisi default, bukan menggagalkan seluruh commit.
		participants := buildParticipants(draft.Participants, registration.RegistrationID)
		if len(participants) > 0 {
			if err := tx.Create(&participants).Error; err != nil {
				return err
			}
		}

		// 4) Pendamping, aturan kelonggaran yang sama
		companions := buildCompanions(draft.Companions, registration.RegistrationID)
		if len(companions) > 0 {
			if err := tx.Create(&companions).Error; err != nil {
				return err
			}
		}

		// 5) Pembayaran, primary key = order id dari kolaborator eksternal
		payment := paymentModel.Payment{
			PaymentOrderID:        orderID,
			PaymentRegistrationID: registration.RegistrationID,
			PaymentAmount:         draft.Costs.Total,
			PaymentMethod:         outcome.Method,
			PaymentStatus:         outcome.Status,
		}
		if outcome.ManualProofPath != "" {
			proofPath := outcome.ManualProofPath
			payment.PaymentManualProofPath = &proofPath
		}
		if outcome.Status == paymentModel.StatusSuccess {
			now := time.Now()
			payment.PaymentConfirmedAt = &now
		}
		if err := tx.Create(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrOrderIDExists
			}
			return err
		}

		// 6) Reservasi kavling di transaksi yang sama: konflik membatalkan
		// seluruh commit — registrasi tidak boleh ada tanpa kavlingnya.
		if rented {
			if err := f.Inventory.Reserve(tx,
				draft.Kavling.Number, draft.TentChoice.Capacity,
				draft.SchoolData.Category, registration.RegistrationID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	// Pasca-commit: migrasi file & penandaan sesi, keduanya best-effort.
	f.migrateFiles(ctx, draft, registrationID, schoolSlug)
	f.markSessionFinalized(draft.TempRegID)

	return registrationID, nil
}

func buildParticipants(rows []dto.RosterRow, registrationID uint) []model.Participant {
	out := make([]model.Participant, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.FullName) == "" || strings.TrimSpace(r.Gender) == "" {
			continue // baris cacat, bukan fatal
		}
		p := model.Participant{
			ParticipantRegistrationID: registrationID,
			ParticipantFullName:       strings.TrimSpace(r.FullName),
			ParticipantBirthPlaceDate: defaultString(r.BirthPlaceDate, "N/A"),
			ParticipantAddress:        defaultString(r.Address, "N/A"),
			ParticipantReligion:       defaultString(r.Religion, "N/A"),
			ParticipantBloodType:      NormalizeBloodType(r.BloodType),
			ParticipantEntryYear:      defaultYear(r.EntryYear),
			ParticipantPhoneNumber:    NormalizePhone(r.PhoneNumber),
			ParticipantGender:         ParseGender(r.Gender),
		}
		if r.PhotoURL != "" {
			filename := path.Base(r.PhotoURL)
			p.ParticipantPhotoFilename = &filename
		}
		out = append(out, p)
	}
	return out
}

func buildCompanions(rows []dto.RosterRow, registrationID uint) []model.Companion {
	out := make([]model.Companion, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.FullName) == "" || strings.TrimSpace(r.Gender) == "" {
			continue
		}
		out = append(out, model.Companion{
			CompanionRegistrationID: registrationID,
			CompanionFullName:       strings.TrimSpace(r.FullName),
			CompanionBirthPlaceDate: defaultString(r.BirthPlaceDate, "N/A"),
			CompanionAddress:        defaultString(r.Address, "N/A"),
			CompanionReligion:       defaultString(r.Religion, "N/A"),
			CompanionBloodType:      NormalizeBloodType(r.BloodType),
			CompanionEntryYear:      defaultYear(r.EntryYear),
			CompanionPhoneNumber:    NormalizePhone(r.PhoneNumber),
			CompanionGender:         ParseGender(r.Gender),
		})
	}
	return out
}

func defaultString(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}

func defaultYear(year int) int {
	if year <= 0 {
		return time.Now().Year()
	}
	return year
}

// migrateFiles memindahkan spreadsheet + foto sesi staging ke area permanen
// dan menulis ulang referensi file di database. Tidak pernah membatalkan
// commit yang sudah durable; kegagalan dicatat untuk diulang.
func (f *Finalizer) migrateFiles(ctx context.Context, draft *dto.RegistrationDraft, registrationID uint, schoolSlug string) {
	if draft.TempRegID == "" || f.Storage == nil {
		return
	}

	excelName := fmt.Sprintf("%d-%s.xlsx", registrationID, schoolSlug)
	res, err := f.Storage.MigrateToPermanent(draft.TempRegID, schoolSlug, excelName)
	if err != nil {
		log.Printf("[ERROR] migrasi file sesi %s gagal (registrasi %d tetap sah): %v",
			draft.TempRegID, registrationID, err)
		return
	}

	if res.ExcelMoved {
		if err := f.DB.WithContext(ctx).Model(&model.Registration{}).
			Where("registration_id = ?", registrationID).
			Update("registration_excel_file_path", res.ExcelPublicPath).Error; err != nil {
			log.Printf("[WARN] path excel registrasi %d belum terbarui: %v", registrationID, err)
		}
	}

	if err := f.DB.WithContext(ctx).Model(&model.Participant{}).
		Where("participant_registration_id = ? AND participant_photo_filename IS NOT NULL", registrationID).
		Update("participant_photo_url",
			gorm.Expr("? || participant_photo_filename", res.PhotoPublicDir+"/")).Error; err != nil {
		log.Printf("[WARN] url foto peserta registrasi %d belum terbarui: %v", registrationID, err)
	}
}

func (f *Finalizer) markSessionFinalized(tempRegID string) {
	if tempRegID == "" {
		return
	}
	id, err := uuid.Parse(tempRegID)
	if err != nil {
		return
	}
	if err := f.DB.Model(&model.TemporaryRegistration{}).
		Where("temp_registration_id = ?", id).
		Update("temp_registration_status", model.TempStatusFinalized).Error; err != nil {
		log.Printf("[WARN] status sesi %s belum terbarui: %v", tempRegID, err)
	}
}
