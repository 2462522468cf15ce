package model

import (
	"time"
)

// Companion adalah pendamping kontingen; strukturnya sama dengan peserta
// minus foto.
type Companion struct {
	CompanionID uint `gorm:"column:companion_id;primaryKey;autoIncrement" json:"companion_id"`

	CompanionRegistrationID uint          `gorm:"column:companion_registration_id;not null;index" json:"companion_registration_id"`
	Registration            *Registration `gorm:"foreignKey:CompanionRegistrationID;references:RegistrationID;constraint:OnDelete:CASCADE" json:"-"`

	CompanionFullName       string  `gorm:"column:companion_full_name;type:varchar(120);not null" json:"companion_full_name"`
	CompanionBirthPlaceDate string  `gorm:"column:companion_birth_place_date;type:varchar(120);not null" json:"companion_birth_place_date"`
	CompanionAddress        string  `gorm:"column:companion_address;type:text;not null" json:"companion_address"`
	CompanionReligion       string  `gorm:"column:companion_religion;type:varchar(30);not null" json:"companion_religion"`
	CompanionBloodType      *string `gorm:"column:companion_blood_type;type:varchar(3)" json:"companion_blood_type,omitempty"`
	CompanionEntryYear      int     `gorm:"column:companion_entry_year;not null" json:"companion_entry_year"`
	CompanionPhoneNumber    *string `gorm:"column:companion_phone_number;type:varchar(20)" json:"companion_phone_number,omitempty"`
	CompanionGender         string  `gorm:"column:companion_gender;type:varchar(10);not null" json:"companion_gender"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Companion) TableName() string {
	return "companions"
}
