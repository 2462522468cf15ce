package service

import (
	"errors"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	database "pelpmr_backend/internals/databases"
	"pelpmr_backend/internals/features/kavling/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	// :memory: per koneksi adalah DB terpisah; kunci ke satu koneksi.
	sqlDB.SetMaxOpenConns(1)
	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(&model.KavlingBooking{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := database.SeedKavling(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func TestSeedKavlingIdempotent(t *testing.T) {
	db := newTestDB(t)

	var before int64
	db.Model(&model.KavlingBooking{}).Count(&before)
	if before != 120 {
		t.Fatalf("expected 120 seeded slots (60 per category), got %d", before)
	}

	// Booking yang berjalan tidak boleh ter-reset oleh seed ulang.
	regID := uint(9)
	db.Model(&model.KavlingBooking{}).
		Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", 5, 15, constants.CategoryWira).
		Updates(map[string]interface{}{"kavling_is_booked": true, "kavling_registration_id": regID})

	if err := database.SeedKavling(db); err != nil {
		t.Fatalf("re-seed: %v", err)
	}

	var after int64
	db.Model(&model.KavlingBooking{}).Count(&after)
	if after != before {
		t.Errorf("re-seed changed row count: %d -> %d", before, after)
	}
	var slot model.KavlingBooking
	db.Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", 5, 15, constants.CategoryWira).First(&slot)
	if !slot.KavlingIsBooked {
		t.Error("re-seed reset an active booking")
	}
}

func TestReserveAndConflict(t *testing.T) {
	db := newTestDB(t)
	inv := NewKavlingInventory(db)

	if err := inv.Reserve(db, 5, 15, constants.CategoryWira, 1); err != nil {
		t.Fatalf("first reserve: %v", err)
	}

	err := inv.Reserve(db, 5, 15, constants.CategoryWira, 2)
	if !errors.Is(err, ErrKavlingTaken) {
		t.Errorf("expected ErrKavlingTaken, got %v", err)
	}

	var slot model.KavlingBooking
	db.Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", 5, 15, constants.CategoryWira).First(&slot)
	if !slot.KavlingIsBooked || slot.KavlingRegistrationID == nil || *slot.KavlingRegistrationID != 1 {
		t.Errorf("slot should stay with registration 1, got %+v", slot)
	}
}

func TestReserveUnknownKey(t *testing.T) {
	db := newTestDB(t)
	inv := NewKavlingInventory(db)

	// Nomor 5 ada di kelas kapasitas 15, bukan 50.
	err := inv.Reserve(db, 5, 50, constants.CategoryWira, 1)
	if !errors.Is(err, ErrKavlingNotFound) {
		t.Errorf("expected ErrKavlingNotFound, got %v", err)
	}
}

func TestReserveConcurrent(t *testing.T) {
	db := newTestDB(t)
	inv := NewKavlingInventory(db)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = db.Transaction(func(tx *gorm.DB) error {
				return inv.Reserve(tx, 21, 20, constants.CategoryMadya, uint(i+1))
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, ErrKavlingTaken) {
			t.Errorf("unexpected error under contention: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
}

func TestReleaseIdempotent(t *testing.T) {
	db := newTestDB(t)
	inv := NewKavlingInventory(db)

	if err := inv.Reserve(db, 41, 15, constants.CategoryMadya, 7); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := inv.Release(db, 41, 15, constants.CategoryMadya); err != nil {
		t.Fatalf("release: %v", err)
	}
	// Melepas slot yang sudah kosong: no-op, bukan error.
	if err := inv.Release(db, 41, 15, constants.CategoryMadya); err != nil {
		t.Fatalf("second release should be a no-op: %v", err)
	}

	var slot model.KavlingBooking
	db.Where("kavling_number = ? AND kavling_capacity = ? AND kavling_category = ?", 41, 15, constants.CategoryMadya).First(&slot)
	if slot.KavlingIsBooked || slot.KavlingRegistrationID != nil {
		t.Errorf("slot should be free after release, got %+v", slot)
	}
}

func TestListAvailableGrouping(t *testing.T) {
	db := newTestDB(t)
	inv := NewKavlingInventory(db)

	if err := inv.Reserve(db, 1, 50, constants.CategoryWira, 1); err != nil {
		t.Fatal(err)
	}

	grouped, err := inv.ListAvailable(constants.CategoryWira)
	if err != nil {
		t.Fatalf("ListAvailable: %v", err)
	}

	if got := len(grouped[50]); got != 19 {
		t.Errorf("capacity 50 should have 19 free slots, got %d", got)
	}
	if got := len(grouped[20]); got != 20 {
		t.Errorf("capacity 20 should have 20 free slots, got %d", got)
	}
	for i, n := range grouped[50] {
		if i > 0 && grouped[50][i-1] >= n {
			t.Errorf("numbers not ascending: %v", grouped[50])
			break
		}
	}
	// Reservasi kategori WIRA tidak menyentuh inventori MADYA.
	groupedMadya, err := inv.ListAvailable(constants.CategoryMadya)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(groupedMadya[50]); got != 20 {
		t.Errorf("MADYA capacity 50 should be untouched, got %d free", got)
	}
}
