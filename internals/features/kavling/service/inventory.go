package service

import (
	"errors"
	"sort"

	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/kavling/model"
)

var (
	// ErrKavlingNotFound: kunci alami tidak menunjuk slot inventori mana pun.
	ErrKavlingNotFound = errors.New("kavling tidak ditemukan")
	// ErrKavlingTaken: slot sudah direservasi registrasi lain (konflik, bukan fatal).
	ErrKavlingTaken = errors.New("kavling sudah dipesan")
)

type KavlingInventory struct {
	DB *gorm.DB
}

func NewKavlingInventory(db *gorm.DB) *KavlingInventory {
	return &KavlingInventory{DB: db}
}

// Reserve menandai satu kavling terpesan untuk registrationID.
//
// Eksklusivitas dijaga lewat conditional update tunggal (bukan baca-lalu-
// tulis): UPDATE hanya mengenai baris yang masih kosong, jadi dua pemanggil
// yang berebut slot yang sama dipastikan hanya satu yang berhasil. Harus
// dipanggil di dalam transaksi commit registrasi (tx) supaya kegagalan
// reservasi ikut membatalkan seluruh commit.
func (s *KavlingInventory) Reserve(tx *gorm.DB, number, capacity int, category string, registrationID uint) error {
	res := tx.Model(&model.KavlingBooking{}).
		Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ? AND kavling_is_booked = ?",
			number, capacity, category, false).
		Updates(map[string]interface{}{
			"kavling_is_booked":       true,
			"kavling_registration_id": registrationID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Nol baris: bedakan "tidak ada" dari "sudah dipesan".
	var count int64
	if err := tx.Model(&model.KavlingBooking{}).
		Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", number, capacity, category).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrKavlingNotFound
	}
	return ErrKavlingTaken
}

// Release mengosongkan kembali satu kavling. Idempoten: melepas slot yang
// sudah kosong bukan error. Dipakai hanya oleh jalur hapus registrasi.
func (s *KavlingInventory) Release(tx *gorm.DB, number, capacity int, category string) error {
	return tx.Model(&model.KavlingBooking{}).
		Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", number, capacity, category).
		Updates(map[string]interface{}{
			"kavling_is_booked":       false,
			"kavling_registration_id": nil,
		}).Error
}

// ListAvailable mengembalikan nomor kavling kosong per kapasitas, terurut
// naik. Snapshot ini boleh basi — precondition Reserve yang jadi penentu.
func (s *KavlingInventory) ListAvailable(category string) (map[int][]int, error) {
	var rows []model.KavlingBooking
	if err := s.DB.
		Where("kavling_category = ? AND kavling_is_booked = ?", category, false).
		Order("kavling_number asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	grouped := make(map[int][]int)
	for _, k := range rows {
		grouped[k.KavlingCapacity] = append(grouped[k.KavlingCapacity], k.KavlingNumber)
	}
	return grouped, nil
}

// TentAvailability menghitung sisa tenda sewaan per kelas kapasitas.
type TentAvailability struct {
	Capacity  int `json:"capacity"`
	Available int `json:"available"`
	Total     int `json:"total"`
}

func (s *KavlingInventory) TentsAvailability(category string) ([]TentAvailability, error) {
	grouped, err := s.ListAvailable(category)
	if err != nil {
		return nil, err
	}

	out := make([]TentAvailability, 0, len(constants.KavlingLayout))
	for _, r := range constants.KavlingLayout {
		out = append(out, TentAvailability{
			Capacity:  r.Capacity,
			Available: len(grouped[r.Capacity]),
			Total:     r.To - r.From + 1,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Capacity > out[j].Capacity })
	return out, nil
}
