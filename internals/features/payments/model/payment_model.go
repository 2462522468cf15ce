package model

import (
	"time"

	registrationModel "pelpmr_backend/internals/features/registrations/model"
)

// Metode pembayaran.
const (
	MethodManual  = "MANUAL"  // transfer bank + upload bukti
	MethodGateway = "GATEWAY" // Midtrans Snap
)

// Status pembayaran. Konfirmasi satu arah: hanya WAITING_CONFIRMATION yang
// boleh naik ke SUCCESS lewat jalur konfirmasi admin.
const (
	StatusPending             = "PENDING"
	StatusWaitingConfirmation = "WAITING_CONFIRMATION"
	StatusSuccess             = "SUCCESS"
	StatusFailed              = "FAILED"
	StatusExpired             = "EXPIRED"
)

// Payment 1:1 dengan Registration, primary key-nya Order ID yang
// human-decodable (join key dengan gateway pembayaran).
type Payment struct {
	PaymentOrderID string `gorm:"column:payment_order_id;type:varchar(60);primaryKey" json:"payment_order_id"`

	PaymentRegistrationID uint                            `gorm:"column:payment_registration_id;not null;uniqueIndex" json:"payment_registration_id"`
	Registration          *registrationModel.Registration `gorm:"foreignKey:PaymentRegistrationID;references:RegistrationID;constraint:OnDelete:CASCADE" json:"registration,omitempty"`

	PaymentAmount int    `gorm:"column:payment_amount;not null" json:"payment_amount"`
	PaymentMethod string `gorm:"column:payment_method;type:varchar(20);not null" json:"payment_method"`
	PaymentStatus string `gorm:"column:payment_status;type:varchar(30);not null;default:'PENDING'" json:"payment_status"`

	PaymentManualProofPath *string    `gorm:"column:payment_manual_proof_path;type:text" json:"payment_manual_proof_path,omitempty"`
	PaymentConfirmedAt     *time.Time `gorm:"column:payment_confirmed_at" json:"payment_confirmed_at,omitempty"`
	PaymentReceiptPath     *string    `gorm:"column:payment_receipt_path;type:text" json:"payment_receipt_path,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
