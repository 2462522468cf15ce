package model

import (
	"time"
)

// School adalah identitas sekolah pendaftar. Nama ternormalisasi dipakai
// sebagai kunci unik sistem agar sekolah yang sama tidak mendaftar dua kali
// dengan ejaan yang berbeda.
type School struct {
	SchoolID uint `gorm:"column:school_id;primaryKey;autoIncrement" json:"school_id"`

	SchoolName           string `gorm:"column:school_name;type:varchar(120);not null" json:"school_name"`
	SchoolNormalizedName string `gorm:"column:school_normalized_name;type:varchar(120);not null;unique" json:"school_normalized_name"`
	SchoolCoachName      string `gorm:"column:school_coach_name;type:varchar(100);not null" json:"school_coach_name"`
	SchoolWhatsappNumber string `gorm:"column:school_whatsapp_number;type:varchar(20);not null" json:"school_whatsapp_number"`
	SchoolCategory       string `gorm:"column:school_category;type:varchar(10);not null" json:"school_category"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Registrations []Registration `gorm:"foreignKey:RegistrationSchoolID;references:SchoolID" json:"registrations,omitempty"`
}

func (School) TableName() string {
	return "schools"
}
