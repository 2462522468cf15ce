package model

import (
	"time"
)

// Registration adalah satu pendaftaran kontingen yang sudah final.
// Invariant: jika tendanya SEWA_PANITIA maka kapasitas & nomor kavling wajib
// terisi dan menunjuk slot inventori yang sudah direservasi; jika
// BAWA_SENDIRI, nomor kavling kosong.
type Registration struct {
	RegistrationID uint `gorm:"column:registration_id;primaryKey;autoIncrement" json:"registration_id"`

	RegistrationSchoolID uint    `gorm:"column:registration_school_id;not null;index" json:"registration_school_id"`
	School               *School `gorm:"foreignKey:RegistrationSchoolID;references:SchoolID;constraint:OnDelete:RESTRICT" json:"school,omitempty"`

	RegistrationTentType      string `gorm:"column:registration_tent_type;type:varchar(20);not null" json:"registration_tent_type"`
	RegistrationTentCapacity  *int   `gorm:"column:registration_tent_capacity" json:"registration_tent_capacity,omitempty"`
	RegistrationKavlingNumber *int   `gorm:"column:registration_kavling_number" json:"registration_kavling_number,omitempty"`

	RegistrationParticipantCount int `gorm:"column:registration_participant_count;not null" json:"registration_participant_count"`
	RegistrationCompanionCount   int `gorm:"column:registration_companion_count;not null" json:"registration_companion_count"`

	// Biaya tersimpan adalah satu-satunya sumber kebenaran; tidak pernah
	// dihitung ulang dari panjang roster saat dibaca.
	RegistrationBaseFee  int `gorm:"column:registration_base_fee;not null" json:"registration_base_fee"`
	RegistrationTentFee  int `gorm:"column:registration_tent_fee;not null" json:"registration_tent_fee"`
	RegistrationTotalFee int `gorm:"column:registration_total_fee;not null" json:"registration_total_fee"`

	RegistrationExcelFilePath *string `gorm:"column:registration_excel_file_path;type:text" json:"registration_excel_file_path,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Participants []Participant `gorm:"foreignKey:ParticipantRegistrationID;references:RegistrationID" json:"participants,omitempty"`
	Companions   []Companion   `gorm:"foreignKey:CompanionRegistrationID;references:RegistrationID" json:"companions,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}
