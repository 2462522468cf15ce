package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status sesi pendaftaran sementara.
const (
	TempStatusPending           = "PENDING"
	TempStatusProcessingPayment = "PROCESSING_PAYMENT"
	TempStatusFinalized         = "FINALIZED"
	TempStatusFailed            = "FAILED"
)

// TemporaryRegistration menyimpan draft wizard milik satu sesi pendaftaran.
// Isinya (payload JSON) belum punya invariant apa pun; baru saat finalisasi
// draft dipindah ke entitas permanen.
type TemporaryRegistration struct {
	TempRegistrationID uuid.UUID `gorm:"column:temp_registration_id;type:uuid;primaryKey" json:"temp_registration_id"`

	TempRegistrationData   datatypes.JSON `gorm:"column:temp_registration_data" json:"temp_registration_data"`
	TempRegistrationStep   int            `gorm:"column:temp_registration_step;not null;default:1" json:"temp_registration_step"`
	TempRegistrationStatus string         `gorm:"column:temp_registration_status;type:varchar(30);not null;default:'PENDING'" json:"temp_registration_status"`

	// Diisi saat order id dibuat, supaya webhook gateway bisa menemukan
	// kembali sesi yang membayar.
	TempRegistrationOrderID *string `gorm:"column:temp_registration_order_id;type:varchar(60);index" json:"temp_registration_order_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TemporaryRegistration) TableName() string {
	return "temporary_registrations"
}

func (t *TemporaryRegistration) BeforeCreate(tx *gorm.DB) error {
	if t.TempRegistrationID == uuid.Nil {
		t.TempRegistrationID = uuid.New()
	}
	return nil
}
