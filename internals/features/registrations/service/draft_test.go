package service

import (
	"errors"
	"testing"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/registrations/dto"
	"pelpmr_backend/internals/features/registrations/model"
)

func sampleSchoolData() *dto.SchoolDataRequest {
	return &dto.SchoolDataRequest{
		SchoolName:     "SMA Contoh",
		CoachName:      "Pak Budi",
		WhatsappNumber: "081234567890",
		Category:       constants.CategoryWira,
	}
}

func sampleRoster(n int) []dto.RosterRow {
	rows := make([]dto.RosterRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, dto.RosterRow{
			No:       i + 1,
			FullName: "Peserta",
			Gender:   "L",
		})
	}
	return rows
}

func TestDraftHappyPathRentedTent(t *testing.T) {
	m := NewDraftMachine("sesi-1")
	if m.Step != StepCollectingIdentity {
		t.Fatalf("new draft should start at identity step, got %s", m.Step)
	}

	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if m.Step != StepAwaitingRoster {
		t.Fatalf("expected AWAITING_ROSTER, got %s", m.Step)
	}

	if err := m.SetRoster(sampleRoster(10), sampleRoster(2)); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); err != nil {
		t.Fatal(err)
	}

	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentSewaPanitia, Capacity: 20}); err != nil {
		t.Fatal(err)
	}
	if m.Step != StepChoosingPlot {
		t.Fatalf("renting a tent should lead to plot choice, got %s", m.Step)
	}
	if m.Draft.TentChoice.Cost != constants.BiayaTenda(20) {
		t.Errorf("tent cost must come from the server tariff, got %d", m.Draft.TentChoice.Cost)
	}

	if err := m.SetKavling(&dto.KavlingChoice{Number: 21, Capacity: 20}); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmSummary(); err != nil {
		t.Fatal(err)
	}
	if m.Step != StepAwaitingPayment {
		t.Fatalf("expected AWAITING_PAYMENT, got %s", m.Step)
	}

	wantTotal := 10*constants.BiayaPeserta() + 2*constants.BiayaPendamping() + constants.BiayaTenda(20)
	if m.Draft.Costs.Total != wantTotal {
		t.Errorf("total cost = %d, want %d", m.Draft.Costs.Total, wantTotal)
	}
}

func TestDraftOwnTentSkipsPlotChoice(t *testing.T) {
	m := NewDraftMachine("sesi-2")
	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoster(sampleRoster(5), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); err != nil {
		t.Fatal(err)
	}

	// Pilih sewa dulu + kavling, lalu ganti jadi bawa sendiri.
	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentSewaPanitia, Capacity: 15}); err != nil {
		t.Fatal(err)
	}
	if err := m.SetKavling(&dto.KavlingChoice{Number: 41, Capacity: 15}); err != nil {
		t.Fatal(err)
	}

	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentBawaSendiri}); err != nil {
		t.Fatal(err)
	}
	if m.Step != StepReviewingSummary {
		t.Fatalf("own tent should jump to summary, got %s", m.Step)
	}
	if m.Draft.Kavling != nil {
		t.Error("switching to own tent must discard the stale plot choice")
	}
	if m.Draft.TentChoice.Cost != 0 || m.Draft.TentChoice.Capacity != 0 {
		t.Errorf("own tent carries no capacity/cost, got %+v", m.Draft.TentChoice)
	}
	if m.Draft.Costs.Total != 5*constants.BiayaPeserta() {
		t.Errorf("total should drop the tent fee, got %d", m.Draft.Costs.Total)
	}
}

func TestDraftGuardsBlockOutOfOrderSteps(t *testing.T) {
	m := NewDraftMachine("sesi-3")

	if err := m.SetRoster(sampleRoster(1), nil); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("roster before identity should be blocked, got %v", err)
	}
	if err := m.ConfirmRoster(); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("confirm before roster should be blocked, got %v", err)
	}
	if err := m.SetKavling(&dto.KavlingChoice{Number: 1, Capacity: 50}); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("plot before tent should be blocked, got %v", err)
	}
	if err := m.ConfirmSummary(); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("summary before review should be blocked, got %v", err)
	}
}

func TestDraftRejectsEmptyRosterAndBadTent(t *testing.T) {
	m := NewDraftMachine("sesi-4")
	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoster(nil, nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("empty roster must not be confirmable, got %v", err)
	}

	if err := m.SetRoster(sampleRoster(3), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); err != nil {
		t.Fatal(err)
	}

	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentSewaPanitia, Capacity: 99}); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("unknown capacity should be blocked, got %v", err)
	}
	if err := m.SetTentChoice(&dto.TentChoice{Type: "NUMPANG"}); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("unknown tent mode should be blocked, got %v", err)
	}
}

func TestDraftKavlingCapacityMustMatchTent(t *testing.T) {
	m := NewDraftMachine("sesi-5")
	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoster(sampleRoster(3), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentSewaPanitia, Capacity: 20}); err != nil {
		t.Fatal(err)
	}

	if err := m.SetKavling(&dto.KavlingChoice{Number: 1, Capacity: 50}); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("plot capacity mismatch should be blocked, got %v", err)
	}
}

func TestDraftSchoolDataLockedAfterSummary(t *testing.T) {
	m := NewDraftMachine("sesi-6")
	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoster(sampleRoster(3), nil); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmRoster(); err != nil {
		t.Fatal(err)
	}
	if err := m.SetTentChoice(&dto.TentChoice{Type: constants.TentBawaSendiri}); err != nil {
		t.Fatal(err)
	}
	if err := m.ConfirmSummary(); err != nil {
		t.Fatal(err)
	}

	// Order ID terbit dari nama sekolah saat ringkasan dikonfirmasi; ganti
	// nama setelah itu akan membuat keduanya tidak sinkron.
	renamed := sampleSchoolData()
	renamed.SchoolName = "SMA Lain"
	if err := m.SetSchoolData(renamed); !errors.Is(err, ErrTransitionBlocked) {
		t.Errorf("rename after summary should be blocked, got %v", err)
	}
	if m.Draft.SchoolData.SchoolName != "SMA Contoh" {
		t.Errorf("school name mutated to %q despite the lock", m.Draft.SchoolData.SchoolName)
	}
}

func TestDraftPayloadRoundTrip(t *testing.T) {
	m := NewDraftMachine("11111111-2222-3333-4444-555555555555")
	if err := m.SetSchoolData(sampleSchoolData()); err != nil {
		t.Fatal(err)
	}
	if err := m.SetRoster(sampleRoster(2), sampleRoster(1)); err != nil {
		t.Fatal(err)
	}

	payload, err := m.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}

	session := model.TemporaryRegistration{
		TempRegistrationData: payload,
		TempRegistrationStep: int(m.Step),
	}
	restored, err := LoadDraftMachine(&session)
	if err != nil {
		t.Fatalf("LoadDraftMachine: %v", err)
	}

	if restored.Step != m.Step {
		t.Errorf("step lost in round trip: %s != %s", restored.Step, m.Step)
	}
	if restored.Draft.SchoolData == nil || restored.Draft.SchoolData.SchoolName != "SMA Contoh" {
		t.Errorf("school data lost in round trip: %+v", restored.Draft.SchoolData)
	}
	if len(restored.Draft.Participants) != 2 || len(restored.Draft.Companions) != 1 {
		t.Errorf("roster lost in round trip: %d/%d",
			len(restored.Draft.Participants), len(restored.Draft.Companions))
	}
}
