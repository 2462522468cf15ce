package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/registrations/dto"
	"pelpmr_backend/internals/features/registrations/model"
)

// DraftStep adalah posisi wizard pendaftaran. Transisi antar langkah dijaga
// eksplisit di sini, bukan tersebar sebagai conditional di tiap endpoint.
type DraftStep int

const (
	StepCollectingIdentity DraftStep = iota + 1
	StepAwaitingRoster
	StepVerifyingRoster
	StepChoosingTent
	StepChoosingPlot
	StepReviewingSummary
	StepAwaitingPayment
)

func (s DraftStep) String() string {
	switch s {
	case StepCollectingIdentity:
		return "COLLECTING_IDENTITY"
	case StepAwaitingRoster:
		return "AWAITING_ROSTER"
	case StepVerifyingRoster:
		return "VERIFYING_ROSTER"
	case StepChoosingTent:
		return "CHOOSING_TENT"
	case StepChoosingPlot:
		return "CHOOSING_PLOT"
	case StepReviewingSummary:
		return "REVIEWING_SUMMARY"
	case StepAwaitingPayment:
		return "AWAITING_PAYMENT"
	}
	return "UNKNOWN"
}

// ErrTransitionBlocked: guard transisi wizard menolak perpindahan langkah.
var ErrTransitionBlocked = errors.New("transisi wizard ditolak")

func blocked(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTransitionBlocked, fmt.Sprintf(format, args...))
}

// DraftMachine membungkus draft + posisi wizard-nya.
type DraftMachine struct {
	Draft *dto.RegistrationDraft
	Step  DraftStep
}

func NewDraftMachine(tempRegID string) *DraftMachine {
	return &DraftMachine{
		Draft: &dto.RegistrationDraft{TempRegID: tempRegID},
		Step:  StepCollectingIdentity,
	}
}

// LoadDraftMachine menghidupkan kembali draft dari baris sesi sementara.
func LoadDraftMachine(tr *model.TemporaryRegistration) (*DraftMachine, error) {
	var draft dto.RegistrationDraft
	if len(tr.TempRegistrationData) > 0 {
		if err := json.Unmarshal(tr.TempRegistrationData, &draft); err != nil {
			return nil, fmt.Errorf("payload draft rusak: %w", err)
		}
	}
	draft.TempRegID = tr.TempRegistrationID.String()
	return &DraftMachine{Draft: &draft, Step: DraftStep(tr.TempRegistrationStep)}, nil
}

// Payload menyerialisasi draft untuk disimpan ke kolom JSON sesi.
func (m *DraftMachine) Payload() (datatypes.JSON, error) {
	b, err := json.Marshal(m.Draft)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// SetSchoolData mengisi identitas sekolah. Boleh diulang (koreksi) sampai
// ringkasan dikonfirmasi; setelah itu Order ID sudah memuat nama sekolah
// tersanitasi, jadi identitas terkunci.
func (m *DraftMachine) SetSchoolData(data *dto.SchoolDataRequest) error {
	if data == nil {
		return blocked("identitas sekolah kosong")
	}
	if m.Step >= StepAwaitingPayment {
		return blocked("identitas sekolah terkunci setelah ringkasan dikonfirmasi")
	}
	m.Draft.SchoolData = data
	if m.Step == StepCollectingIdentity {
		m.Step = StepAwaitingRoster
	}
	return nil
}

// SetRoster menerima hasil ekstraksi Excel. Tidak bisa dicapai sebelum
// identitas sekolah terisi.
func (m *DraftMachine) SetRoster(participants, companions []dto.RosterRow) error {
	if m.Step < StepAwaitingRoster {
		return blocked("identitas sekolah belum terisi")
	}
	m.Draft.Participants = participants
	m.Draft.Companions = companions
	m.recalculateCosts()
	if m.Step == StepAwaitingRoster {
		m.Step = StepVerifyingRoster
	}
	return nil
}

// ConfirmRoster: pendaftar sudah memeriksa hasil ekstraksi secara visual.
func (m *DraftMachine) ConfirmRoster() error {
	if m.Step < StepVerifyingRoster {
		return blocked("roster belum diunggah")
	}
	if len(m.Draft.Participants) == 0 {
		return blocked("roster minimal satu peserta")
	}
	if m.Step == StepVerifyingRoster {
		m.Step = StepChoosingTent
	}
	return nil
}

// SetTentChoice memilih mode tenda. Sewa panitia lanjut ke pemilihan
// kavling; bawa sendiri melompatinya (dan membuang pilihan kavling lama).
func (m *DraftMachine) SetTentChoice(choice *dto.TentChoice) error {
	if m.Step < StepChoosingTent {
		return blocked("roster belum dikonfirmasi")
	}
	if choice == nil {
		return blocked("pilihan tenda kosong")
	}
	switch choice.Type {
	case constants.TentSewaPanitia:
		if !constants.IsValidTentCapacity(choice.Capacity) {
			return blocked("kapasitas tenda %d tidak tersedia", choice.Capacity)
		}
		// Tarif ditetapkan server, bukan dari payload klien.
		choice.Cost = constants.BiayaTenda(choice.Capacity)
		m.Draft.TentChoice = choice
		m.Step = StepChoosingPlot
	case constants.TentBawaSendiri:
		choice.Capacity = 0
		choice.Cost = 0
		m.Draft.TentChoice = choice
		m.Draft.Kavling = nil
		m.Step = StepReviewingSummary
	default:
		return blocked("mode tenda %q tidak dikenal", choice.Type)
	}
	m.recalculateCosts()
	return nil
}

// SetKavling memilih slot kavling; hanya valid untuk penyewa tenda dan
// kapasitasnya harus sama dengan tenda yang disewa.
func (m *DraftMachine) SetKavling(choice *dto.KavlingChoice) error {
	if m.Step < StepChoosingPlot {
		return blocked("pilihan tenda belum dibuat")
	}
	if m.Draft.TentChoice == nil || m.Draft.TentChoice.Type != constants.TentSewaPanitia {
		return blocked("kavling hanya untuk penyewa tenda panitia")
	}
	if choice == nil {
		return blocked("pilihan kavling kosong")
	}
	if choice.Capacity != m.Draft.TentChoice.Capacity {
		return blocked("kapasitas kavling %d tidak cocok dengan tenda %d",
			choice.Capacity, m.Draft.TentChoice.Capacity)
	}
	m.Draft.Kavling = choice
	m.Step = StepReviewingSummary
	return nil
}

// ConfirmSummary mengunci draft menuju pembayaran. Seluruh kelengkapan
// struktural dicek ulang di sini (dan sekali lagi oleh finalizer).
func (m *DraftMachine) ConfirmSummary() error {
	if m.Step < StepReviewingSummary {
		return blocked("draft belum sampai ringkasan")
	}
	if err := ValidateDraftComplete(m.Draft); err != nil {
		return blocked("%v", err)
	}
	m.Step = StepAwaitingPayment
	return nil
}

// recalculateCosts menghitung ulang pratinjau biaya dari konstanta tarif.
// Nilai inilah yang nanti dibekukan ke Registration saat commit; setelah itu
// tidak pernah diturunkan ulang dari panjang roster.
func (m *DraftMachine) recalculateCosts() {
	participantCost := len(m.Draft.Participants) * constants.BiayaPeserta()
	companionCost := len(m.Draft.Companions) * constants.BiayaPendamping()
	tentCost := 0
	if m.Draft.TentChoice != nil {
		tentCost = m.Draft.TentChoice.Cost
	}
	m.Draft.Costs = &dto.Costs{
		Participants: participantCost,
		Companions:   companionCost,
		Total:        participantCost + companionCost + tentCost,
	}
}
