package dto

// SchoolDataRequest adalah identitas sekolah dari langkah pertama wizard.
type SchoolDataRequest struct {
	SchoolName     string `json:"schoolName" validate:"required,min=5,max=120"`
	CoachName      string `json:"coachName" validate:"required,min=3,max=100"`
	WhatsappNumber string `json:"whatsappNumber" validate:"required,min=10,max=15"`
	Category       string `json:"category" validate:"required,oneof=WIRA MADYA"`
}

// RosterRow adalah satu baris hasil ekstraksi Excel (peserta maupun
// pendamping). Nilainya masih longgar; aturan skip/default diterapkan saat
// finalisasi, bukan di sini.
type RosterRow struct {
	No             int    `json:"no"`
	FullName       string `json:"fullName"`
	BirthPlaceDate string `json:"birthPlaceDate"`
	Address        string `json:"address"`
	Religion       string `json:"religion"`
	BloodType      string `json:"bloodType"`
	EntryYear      int    `json:"entryYear"`
	PhoneNumber    string `json:"phoneNumber"`
	Gender         string `json:"gender"`
	PhotoURL       string `json:"photoUrl,omitempty"` // khusus peserta, path staging
}

type TentChoice struct {
	Type     string `json:"type" validate:"required,oneof=BAWA_SENDIRI SEWA_PANITIA"`
	Capacity int    `json:"capacity"`
	Cost     int    `json:"cost" validate:"gte=0"`
}

type KavlingChoice struct {
	Number   int `json:"number" validate:"required,min=1"`
	Capacity int `json:"capacity" validate:"required"`
}

type Costs struct {
	Participants int `json:"participants"`
	Companions   int `json:"companions"`
	Total        int `json:"total"`
}

type DraftPayment struct {
	OrderID string `json:"orderId"`
}

// RegistrationDraft adalah seluruh isi wizard milik satu sesi; disimpan
// sebagai payload JSON TemporaryRegistration sampai difinalisasi.
type RegistrationDraft struct {
	TempRegID    string             `json:"tempRegId"`
	SchoolData   *SchoolDataRequest `json:"schoolData"`
	Participants []RosterRow        `json:"participants"`
	Companions   []RosterRow        `json:"companions"`
	TentChoice   *TentChoice        `json:"tentChoice"`
	Kavling      *KavlingChoice     `json:"kavling"`
	Costs        *Costs             `json:"costs"`
	Payment      *DraftPayment      `json:"payment,omitempty"`
}

// PaymentOutcome adalah hasil dari kolaborator pembayaran eksternal yang
// menyertai permintaan finalisasi.
type PaymentOutcome struct {
	Method          string `json:"method" validate:"required,oneof=MANUAL GATEWAY"`
	Status          string `json:"status" validate:"required"`
	ManualProofPath string `json:"manualProofPath,omitempty"`
}
