package service

import (
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"pelpmr_backend/internals/configs"
	"pelpmr_backend/internals/constants"
	registrationDTO "pelpmr_backend/internals/features/registrations/dto"
)

var SnapClient snap.Client

// InitMidtrans menginisialisasi Midtrans Snap Client dengan server key.
func InitMidtrans(serverKey string, production bool) {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	SnapClient.New(serverKey, env)
}

// GenerateSnapToken membuat token Snap Midtrans untuk satu draft pendaftaran
// beserta rincian item biayanya.
func GenerateSnapToken(orderID string, draft *registrationDTO.RegistrationDraft) (token string, redirectURL string, err error) {
	items := []midtrans.ItemDetails{
		{
			ID:    "FEE_PESERTA",
			Price: int64(constants.BiayaPeserta()),
			Qty:   int32(len(draft.Participants)),
			Name:  fmt.Sprintf("Biaya Pendaftaran %d Peserta", len(draft.Participants)),
		},
		{
			ID:    "FEE_PENDAMPING",
			Price: int64(constants.BiayaPendamping()),
			Qty:   int32(len(draft.Companions)),
			Name:  fmt.Sprintf("Biaya Pendaftaran %d Pendamping", len(draft.Companions)),
		},
	}
	if draft.TentChoice != nil && draft.TentChoice.Cost > 0 {
		items = append(items, midtrans.ItemDetails{
			ID:    "FEE_TENDA",
			Price: int64(draft.TentChoice.Cost),
			Qty:   1,
			Name:  fmt.Sprintf("Sewa Tenda (Kapasitas %d)", draft.TentChoice.Capacity),
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: int64(draft.Costs.Total),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: draft.SchoolData.CoachName,
			Phone: draft.SchoolData.WhatsappNumber,
		},
		Items: &items,
		Callbacks: &snap.Callbacks{
			Finish: configs.AppURL + "/status",
		},
	}

	resp, respErr := SnapClient.CreateTransaction(req)
	if respErr != nil {
		return "", "", respErr
	}
	return resp.Token, resp.RedirectURL, nil
}
