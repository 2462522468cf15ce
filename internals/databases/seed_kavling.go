package database

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pelpmr_backend/internals/constants"
	kavlingModel "pelpmr_backend/internals/features/kavling/model"
)

// SeedKavling mengisi inventori kavling tetap: per kategori, tiga kelas
// kapasitas dengan rentang nomor masing-masing. Idempoten: slot yang sudah
// ada tidak disentuh supaya booking yang berjalan tidak ter-reset.
func SeedKavling(db *gorm.DB) error {
	var rows []kavlingModel.KavlingBooking
	for _, category := range constants.SchoolCategories {
		for _, r := range constants.KavlingLayout {
			for number := r.From; number <= r.To; number++ {
				rows = append(rows, kavlingModel.KavlingBooking{
					KavlingNumber:   number,
					KavlingCapacity: r.Capacity,
					KavlingCategory: category,
					KavlingIsBooked: false,
				})
			}
		}
	}

	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "kavling_number"},
			{Name: "kavling_capacity"},
			{Name: "kavling_category"},
		},
		DoNothing: true,
	}).CreateInBatches(&rows, 100).Error
	if err != nil {
		return err
	}

	log.Printf("✅ Seed kavling selesai (%d slot).", len(rows))
	return nil
}
