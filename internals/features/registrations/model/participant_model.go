package model

import (
	"time"
)

// Jenis kelamin hasil parsing kolom bebas "GENDER (L/P)".
const (
	GenderLakiLaki  = "LAKI_LAKI"
	GenderPerempuan = "PEREMPUAN"
)

// Participant adalah satu baris peserta dari roster Excel, dimiliki penuh
// oleh Registration (ikut terhapus saat registrasi dihapus).
type Participant struct {
	ParticipantID uint `gorm:"column:participant_id;primaryKey;autoIncrement" json:"participant_id"`

	ParticipantRegistrationID uint          `gorm:"column:participant_registration_id;not null;index" json:"participant_registration_id"`
	Registration              *Registration `gorm:"foreignKey:ParticipantRegistrationID;references:RegistrationID;constraint:OnDelete:CASCADE" json:"-"`

	ParticipantFullName       string  `gorm:"column:participant_full_name;type:varchar(120);not null" json:"participant_full_name"`
	ParticipantBirthPlaceDate string  `gorm:"column:participant_birth_place_date;type:varchar(120);not null" json:"participant_birth_place_date"`
	ParticipantAddress        string  `gorm:"column:participant_address;type:text;not null" json:"participant_address"`
	ParticipantReligion       string  `gorm:"column:participant_religion;type:varchar(30);not null" json:"participant_religion"`
	ParticipantBloodType      *string `gorm:"column:participant_blood_type;type:varchar(3)" json:"participant_blood_type,omitempty"`
	ParticipantEntryYear      int     `gorm:"column:participant_entry_year;not null" json:"participant_entry_year"`
	ParticipantPhoneNumber    *string `gorm:"column:participant_phone_number;type:varchar(20)" json:"participant_phone_number,omitempty"`
	ParticipantGender         string  `gorm:"column:participant_gender;type:varchar(10);not null" json:"participant_gender"`

	// Nama file foto hasil ekstraksi Excel; URL publiknya diisi setelah
	// migrasi file staging → permanen selesai.
	ParticipantPhotoFilename *string `gorm:"column:participant_photo_filename;type:varchar(120)" json:"participant_photo_filename,omitempty"`
	ParticipantPhotoURL      *string `gorm:"column:participant_photo_url;type:text" json:"participant_photo_url,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Participant) TableName() string {
	return "participants"
}
