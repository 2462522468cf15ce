// 📁 controller/registration_controller.go
package controller

import (
	"bytes"
	"errors"
	"io"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"pelpmr_backend/internals/features/registrations/dto"
	"pelpmr_backend/internals/features/registrations/model"
	"pelpmr_backend/internals/features/registrations/service"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/helpers/storage"
)

var validate = validator.New()

// RegistrationController melayani wizard pendaftaran multi-langkah. Semua
// mutasi sebelum finalisasi hanya menyentuh TemporaryRegistration + area
// staging; entitas permanen baru lahir di jalur pembayaran.
type RegistrationController struct {
	DB        *gorm.DB
	Storage   storage.FileStorage
	Extractor *service.ExcelExtractor
}

func NewRegistrationController(db *gorm.DB, fs storage.FileStorage) *RegistrationController {
	return &RegistrationController{
		DB:        db,
		Storage:   fs,
		Extractor: service.NewExcelExtractor(fs),
	}
}

// 🟢 CHECK SCHOOL NAME: cek dini ketersediaan nama ternormalisasi.
// Constraint unik di database tetap penentu akhir saat commit.
func (ctrl *RegistrationController) CheckSchoolName(c *fiber.Ctx) error {
	name := c.Query("name")
	if len(name) < 5 {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter 'name' minimal 5 karakter.")
	}

	normalized := service.NormalizeSchoolName(name)
	var count int64
	if err := ctrl.DB.Model(&model.School{}).
		Where("school_normalized_name = ?", normalized).
		Count(&count).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal memeriksa nama sekolah")
	}

	return helper.Success(c, "Hasil pemeriksaan nama sekolah", fiber.Map{
		"normalizedName": normalized,
		"available":      count == 0,
	})
}

// 🟢 CREATE SESSION: buat sesi wizard baru. ID folder staging = ID sesi.
func (ctrl *RegistrationController) CreateSession(c *fiber.Ctx) error {
	sessionID, err := ctrl.Storage.CreateSession()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat sesi pendaftaran")
	}

	id, err := uuid.Parse(sessionID)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat sesi pendaftaran")
	}

	machine := service.NewDraftMachine(sessionID)
	payload, err := machine.Payload()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan sesi")
	}

	session := model.TemporaryRegistration{
		TempRegistrationID:     id,
		TempRegistrationData:   payload,
		TempRegistrationStep:   int(machine.Step),
		TempRegistrationStatus: model.TempStatusPending,
	}
	if err := ctrl.DB.Create(&session).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan sesi")
	}

	return helper.SuccessWithCode(c, fiber.StatusCreated, "Sesi pendaftaran dibuat", fiber.Map{
		"tempRegId": sessionID,
		"step":      machine.Step.String(),
	})
}

// 🟢 GET SESSION: muat ulang draft (resume wizard setelah refresh).
func (ctrl *RegistrationController) GetSession(c *fiber.Ctx) error {
	session, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}
	return helper.Success(c, "Draft pendaftaran", fiber.Map{
		"step":   machine.Step.String(),
		"status": session.TempRegistrationStatus,
		"draft":  machine.Draft,
	})
}

// 🟢 SET SCHOOL DATA: langkah 1 wizard.
func (ctrl *RegistrationController) SetSchoolData(c *fiber.Ctx) error {
	_, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}

	var req dto.SchoolDataRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := machine.SetSchoolData(&req); err != nil {
		return transitionError(c, err)
	}
	return ctrl.saveAndReply(c, machine, "Identitas sekolah tersimpan")
}

// 🟢 UPLOAD EXCEL: terima workbook roster, titipkan di staging, ekstrak isinya.
func (ctrl *RegistrationController) UploadExcel(c *fiber.Ctx) error {
	_, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "File Excel wajib dilampirkan (field 'file')")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "File tidak bisa dibuka")
	}
	defer src.Close()

	// Dibaca sekali ke memori: satu salinan untuk staging, satu untuk parser.
	data, err := io.ReadAll(src)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "File tidak bisa dibaca")
	}

	sessionID := machine.Draft.TempRegID
	if _, err := ctrl.Storage.SaveStagedFile(sessionID, storage.StagedExcelName, bytes.NewReader(data)); err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan file")
	}

	result, err := ctrl.Extractor.Extract(sessionID, bytes.NewReader(data))
	if err != nil {
		return helper.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	if err := machine.SetRoster(result.Participants, result.Companions); err != nil {
		return transitionError(c, err)
	}
	return ctrl.saveAndReply(c, machine, "Roster berhasil diekstrak")
}

// 🟢 CONFIRM ROSTER: pendaftar menyatakan hasil ekstraksi sudah benar.
func (ctrl *RegistrationController) ConfirmRoster(c *fiber.Ctx) error {
	_, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}
	if err := machine.ConfirmRoster(); err != nil {
		return transitionError(c, err)
	}
	return ctrl.saveAndReply(c, machine, "Roster dikonfirmasi")
}

// 🟢 SET TENT: pilih mode tenda (dan kapasitasnya bila sewa).
func (ctrl *RegistrationController) SetTent(c *fiber.Ctx) error {
	_, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}

	var req dto.TentChoice
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := machine.SetTentChoice(&req); err != nil {
		return transitionError(c, err)
	}
	return ctrl.saveAndReply(c, machine, "Pilihan tenda tersimpan")
}

// 🟢 SET KAVLING: pilih slot kavling (khusus penyewa tenda panitia).
func (ctrl *RegistrationController) SetKavling(c *fiber.Ctx) error {
	_, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}

	var req dto.KavlingChoice
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	if err := machine.SetKavling(&req); err != nil {
		return transitionError(c, err)
	}
	return ctrl.saveAndReply(c, machine, "Pilihan kavling tersimpan")
}

// 🟢 CONFIRM SUMMARY: kunci draft, terbitkan Order ID, siap dibayar.
func (ctrl *RegistrationController) ConfirmSummary(c *fiber.Ctx) error {
	session, machine, fail := ctrl.loadSession(c)
	if fail != nil {
		return fail
	}

	if err := machine.ConfirmSummary(); err != nil {
		return transitionError(c, err)
	}

	// Order ID diterbitkan sekali; konfirmasi ulang memakai yang sudah ada.
	if machine.Draft.Payment == nil || machine.Draft.Payment.OrderID == "" {
		orderID, err := service.GenerateSafeOrderID(ctrl.DB, machine.Draft.SchoolData.SchoolName, time.Now())
		if err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat Order ID")
		}
		machine.Draft.Payment = &dto.DraftPayment{OrderID: orderID}

		if err := ctrl.DB.Model(&model.TemporaryRegistration{}).
			Where("temp_registration_id = ?", session.TempRegistrationID).
			Update("temp_registration_order_id", orderID).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan Order ID")
		}
	}

	return ctrl.saveAndReply(c, machine, "Ringkasan dikonfirmasi")
}

// --------------------------------------------------
// internal
// --------------------------------------------------

// loadSession memuat sesi wizard. Error yang dikembalikan selalu non-nil
// *fiber.Error; handler cukup meneruskannya dan ErrorHandler aplikasi yang
// merendernya.
func (ctrl *RegistrationController) loadSession(c *fiber.Ctx) (*model.TemporaryRegistration, *service.DraftMachine, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, nil, fiber.NewError(fiber.StatusBadRequest, "ID sesi tidak valid")
	}

	var session model.TemporaryRegistration
	if err := ctrl.DB.Where("temp_registration_id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fiber.NewError(fiber.StatusNotFound, "Sesi pendaftaran tidak ditemukan")
		}
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Gagal memuat sesi")
	}

	if session.TempRegistrationStatus == model.TempStatusFinalized {
		return nil, nil, fiber.NewError(fiber.StatusConflict, "Sesi sudah difinalisasi")
	}

	machine, err := service.LoadDraftMachine(&session)
	if err != nil {
		log.Printf("[ERROR] draft sesi %s rusak: %v", id, err)
		return nil, nil, fiber.NewError(fiber.StatusInternalServerError, "Draft sesi rusak")
	}
	return &session, machine, nil
}

func (ctrl *RegistrationController) saveAndReply(c *fiber.Ctx, machine *service.DraftMachine, message string) error {
	payload, err := machine.Payload()
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan draft")
	}

	if err := ctrl.DB.Model(&model.TemporaryRegistration{}).
		Where("temp_registration_id = ?", machine.Draft.TempRegID).
		Updates(map[string]interface{}{
			"temp_registration_data": payload,
			"temp_registration_step": int(machine.Step),
		}).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menyimpan draft")
	}

	return helper.Success(c, message, fiber.Map{
		"step":  machine.Step.String(),
		"draft": machine.Draft,
	})
}

func transitionError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrTransitionBlocked) {
		return helper.Error(c, fiber.StatusConflict, err.Error())
	}
	return helper.Error(c, fiber.StatusInternalServerError, "Terjadi kesalahan")
}
