package model

import (
	"time"
)

// KavlingBooking adalah satu slot kavling pada inventori tetap.
// Kunci alami (nomor, kapasitas, kategori) yang dipakai UI dan pengecekan
// konflik reservasi, bukan surrogate id-nya.
type KavlingBooking struct {
	KavlingID uint `gorm:"column:kavling_id;primaryKey;autoIncrement" json:"kavling_id"`

	KavlingNumber   int    `gorm:"column:kavling_number;not null;uniqueIndex:uq_kavling_natural_key" json:"kavling_number"`
	KavlingCapacity int    `gorm:"column:kavling_capacity;not null;uniqueIndex:uq_kavling_natural_key" json:"kavling_capacity"`
	KavlingCategory string `gorm:"column:kavling_category;type:varchar(10);not null;uniqueIndex:uq_kavling_natural_key" json:"kavling_category"`

	KavlingIsBooked       bool  `gorm:"column:kavling_is_booked;not null;default:false" json:"kavling_is_booked"`
	KavlingRegistrationID *uint `gorm:"column:kavling_registration_id" json:"kavling_registration_id,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (KavlingBooking) TableName() string {
	return "kavling_bookings"
}
