// 📁 controller/admin_controller.go
package controller

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	paymentModel "pelpmr_backend/internals/features/payments/model"
	"pelpmr_backend/internals/features/registrations/model"
	"pelpmr_backend/internals/features/registrations/service"
	helper "pelpmr_backend/internals/helpers"
)

// AdminController melayani back-office: rekap pendaftaran, daftar peserta,
// dan penghapusan. Semua route-nya di belakang middleware admin.
type AdminController struct {
	DB      *gorm.DB
	Actions *service.AdminActions
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db, Actions: service.NewAdminActions(db)}
}

// 🟢 LIST REGISTRATIONS: rekap semua pendaftaran + sekolah + status bayar.
func (ctrl *AdminController) ListRegistrations(c *fiber.Ctx) error {
	var registrations []model.Registration
	query := ctrl.DB.Preload("School").Order("registration_id DESC")

	if category := c.Query("category"); category != "" {
		if !constants.IsValidCategory(category) {
			return helper.Error(c, fiber.StatusBadRequest, "Kategori tidak dikenal")
		}
		query = query.Joins("JOIN schools ON schools.school_id = registrations.registration_school_id").
			Where("schools.school_category = ?", category)
	}

	if err := query.Find(&registrations).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil data pendaftaran")
	}

	// Status pembayaran di-join manual supaya payload list tetap ringkas.
	ids := make([]uint, 0, len(registrations))
	for _, r := range registrations {
		ids = append(ids, r.RegistrationID)
	}
	var payments []paymentModel.Payment
	if len(ids) > 0 {
		if err := ctrl.DB.Where("payment_registration_id IN ?", ids).Find(&payments).Error; err != nil {
			return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil data pembayaran")
		}
	}
	paymentByReg := make(map[uint]*paymentModel.Payment, len(payments))
	for i := range payments {
		paymentByReg[payments[i].PaymentRegistrationID] = &payments[i]
	}

	type item struct {
		model.Registration
		Payment *paymentModel.Payment `json:"payment,omitempty"`
	}
	out := make([]item, 0, len(registrations))
	for _, r := range registrations {
		out = append(out, item{Registration: r, Payment: paymentByReg[r.RegistrationID]})
	}

	return helper.Success(c, "Daftar pendaftaran", out)
}

// 🟢 GET REGISTRATION DETAIL: satu pendaftaran lengkap dengan roster.
func (ctrl *AdminController) GetRegistration(c *fiber.Ctx) error {
	id, fail := parseRegistrationID(c)
	if fail != nil {
		return fail
	}

	var registration model.Registration
	if err := ctrl.DB.
		Preload("School").
		Preload("Participants").
		Preload("Companions").
		Where("registration_id = ?", id).
		First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Pendaftaran tidak ditemukan")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil detail pendaftaran")
	}

	var payment paymentModel.Payment
	var paymentPtr *paymentModel.Payment
	if err := ctrl.DB.Where("payment_registration_id = ?", id).First(&payment).Error; err == nil {
		paymentPtr = &payment
	}

	return helper.Success(c, "Detail pendaftaran", fiber.Map{
		"registration": registration,
		"payment":      paymentPtr,
	})
}

// 🟢 LIST ALL PARTICIPANTS: seluruh peserta lintas sekolah (untuk id card dll).
func (ctrl *AdminController) ListAllParticipants(c *fiber.Ctx) error {
	type row struct {
		model.Participant
		SchoolName     string `json:"school_name"`
		SchoolCategory string `json:"school_category"`
	}
	var rows []row
	if err := ctrl.DB.Model(&model.Participant{}).
		Select("participants.*, schools.school_name, schools.school_category").
		Joins("JOIN registrations ON registrations.registration_id = participants.participant_registration_id").
		Joins("JOIN schools ON schools.school_id = registrations.registration_school_id").
		Order("schools.school_name, participants.participant_id").
		Scan(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil data peserta")
	}
	return helper.Success(c, "Daftar seluruh peserta", rows)
}

// 🟢 LIST ALL COMPANIONS
func (ctrl *AdminController) ListAllCompanions(c *fiber.Ctx) error {
	type row struct {
		model.Companion
		SchoolName     string `json:"school_name"`
		SchoolCategory string `json:"school_category"`
	}
	var rows []row
	if err := ctrl.DB.Model(&model.Companion{}).
		Select("companions.*, schools.school_name, schools.school_category").
		Joins("JOIN registrations ON registrations.registration_id = companions.companion_registration_id").
		Joins("JOIN schools ON schools.school_id = registrations.registration_school_id").
		Order("schools.school_name, companions.companion_id").
		Scan(&rows).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil data pendamping")
	}
	return helper.Success(c, "Daftar seluruh pendamping", rows)
}

// 🟢 STATS: angka ringkas untuk dashboard.
func (ctrl *AdminController) GetStats(c *fiber.Ctx) error {
	var (
		schools      int64
		participants int64
		companions   int64
		paidAmount   int64
		kavlingUsed  int64
	)

	if err := ctrl.DB.Model(&model.School{}).Count(&schools).Error; err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghitung statistik")
	}
	ctrl.DB.Model(&model.Participant{}).Count(&participants)
	ctrl.DB.Model(&model.Companion{}).Count(&companions)
	ctrl.DB.Model(&paymentModel.Payment{}).
		Where("payment_status = ?", paymentModel.StatusSuccess).
		Select("COALESCE(SUM(payment_amount), 0)").Scan(&paidAmount)
	ctrl.DB.Table("kavling_bookings").Where("kavling_is_booked = ?", true).Count(&kavlingUsed)

	return helper.Success(c, "Statistik pendaftaran", fiber.Map{
		"schools":       schools,
		"participants":  participants,
		"companions":    companions,
		"paidAmount":    paidAmount,
		"kavlingBooked": kavlingUsed,
	})
}

// 🔴 DELETE REGISTRATION: hapus satu pendaftaran beserta turunannya.
func (ctrl *AdminController) DeleteRegistration(c *fiber.Ctx) error {
	id, fail := parseRegistrationID(c)
	if fail != nil {
		return fail
	}

	if err := ctrl.Actions.DeleteRegistration(c.Context(), uint(id)); err != nil {
		if errors.Is(err, service.ErrRegistrationNotFound) {
			return helper.Error(c, fiber.StatusNotFound, "Pendaftaran tidak ditemukan")
		}
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal menghapus pendaftaran")
	}

	return helper.Success(c, "Pendaftaran dihapus", fiber.Map{"registrationId": id})
}

// parseRegistrationID mengembalikan *fiber.Error non-nil saat param tidak
// valid; handler meneruskannya ke ErrorHandler aplikasi.
func parseRegistrationID(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "ID pendaftaran tidak valid")
	}
	return id, nil
}
