package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	kavlingService "pelpmr_backend/internals/features/kavling/service"
	paymentModel "pelpmr_backend/internals/features/payments/model"
	"pelpmr_backend/internals/features/registrations/model"
)

var (
	ErrPaymentNotFound = errors.New("data pembayaran tidak ditemukan")
	// ErrPaymentNotConfirmable: konfirmasi satu arah — hanya status
	// WAITING_CONFIRMATION yang boleh dikonfirmasi.
	ErrPaymentNotConfirmable = errors.New("pembayaran tidak bisa dikonfirmasi")
	ErrRegistrationNotFound  = errors.New("pendaftaran tidak ditemukan")
)

// AdminActions memuat aksi back-office yang memutasi entitas buatan
// Finalizer dan wajib menjaga invariant yang sama.
type AdminActions struct {
	DB        *gorm.DB
	Inventory *kavlingService.KavlingInventory
}

func NewAdminActions(db *gorm.DB) *AdminActions {
	return &AdminActions{DB: db, Inventory: kavlingService.NewKavlingInventory(db)}
}

// ConfirmPayment menaikkan WAITING_CONFIRMATION → SUCCESS. Status lain
// ditolak sebagai konflik (pemanggil tidak boleh retry membabi buta).
// Gerbangnya conditional update supaya dua admin yang mengklik bersamaan
// tidak saling menimpa timestamp.
func (a *AdminActions) ConfirmPayment(ctx context.Context, orderID string) (*paymentModel.Payment, error) {
	var payment paymentModel.Payment
	if err := a.DB.WithContext(ctx).
		Where("payment_order_id = ?", orderID).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	now := time.Now()
	res := a.DB.WithContext(ctx).Model(&paymentModel.Payment{}).
		Where("payment_order_id = ? AND payment_status = ?", orderID, paymentModel.StatusWaitingConfirmation).
		Updates(map[string]interface{}{
			"payment_status":       paymentModel.StatusSuccess,
			"payment_confirmed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w (status saat ini: %s)", ErrPaymentNotConfirmable, payment.PaymentStatus)
	}

	payment.PaymentStatus = paymentModel.StatusSuccess
	payment.PaymentConfirmedAt = &now
	return &payment, nil
}

// DeleteRegistration menghapus satu pendaftaran dalam satu transaksi dengan
// urutan yang tidak boleh dibalik: lepas kavling → hapus registrasi
// (peserta/pendamping/pembayaran ikut lewat cascade) → hapus sekolah jika
// itu registrasi terakhirnya.
func (a *AdminActions) DeleteRegistration(ctx context.Context, registrationID uint) error {
	return a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var registration model.Registration
		if err := tx.Preload("School").
			Where("registration_id = ?", registrationID).
			First(&registration).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}

		if registration.RegistrationKavlingNumber != nil &&
			registration.RegistrationTentCapacity != nil &&
			registration.School != nil {
			if err := a.Inventory.Release(tx,
				*registration.RegistrationKavlingNumber,
				*registration.RegistrationTentCapacity,
				registration.School.SchoolCategory); err != nil {
				return err
			}
		}

		if err := tx.Delete(&model.Registration{}, registrationID).Error; err != nil {
			return err
		}

		var remaining int64
		if err := tx.Model(&model.Registration{}).
			Where("registration_school_id = ?", registration.RegistrationSchoolID).
			Count(&remaining).Error; err != nil {
			return err
		}
		if remaining == 0 {
			if err := tx.Delete(&model.School{}, registration.RegistrationSchoolID).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
