package constants

import (
	"os"
	"strconv"
)

// =======================
// IDENTITAS EVENT
// =======================

// EventTag dipakai sebagai penanda tetap di setiap Order ID.
const EventTag = "PelPMR"

// Kategori sekolah peserta.
const (
	CategoryWira  = "WIRA"  // SMA/SMK sederajat
	CategoryMadya = "MADYA" // SMP sederajat
)

var SchoolCategories = []string{CategoryWira, CategoryMadya}

func IsValidCategory(c string) bool {
	return c == CategoryWira || c == CategoryMadya
}

// =======================
// BIAYA PENDAFTARAN
// =======================

const (
	defaultBiayaPeserta    = 25000
	defaultBiayaPendamping = 20000
)

// BiayaPeserta per kepala; bisa dioverride lewat ENV BIAYA_PESERTA.
func BiayaPeserta() int {
	return envInt("BIAYA_PESERTA", defaultBiayaPeserta)
}

// BiayaPendamping per kepala; bisa dioverride lewat ENV BIAYA_PENDAMPING.
func BiayaPendamping() int {
	return envInt("BIAYA_PENDAMPING", defaultBiayaPendamping)
}

// BiayaTenda adalah tarif sewa tenda panitia per kelas kapasitas; override
// lewat ENV BIAYA_TENDA_<KAPASITAS>. Kapasitas tak dikenal bertarif 0.
func BiayaTenda(capacity int) int {
	switch capacity {
	case 50:
		return envInt("BIAYA_TENDA_50", 250000)
	case 20:
		return envInt("BIAYA_TENDA_20", 150000)
	case 15:
		return envInt("BIAYA_TENDA_15", 100000)
	}
	return 0
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

// =======================
// MODE & KAPASITAS TENDA
// =======================

const (
	TentBawaSendiri = "BAWA_SENDIRI" // sekolah bawa tenda sendiri
	TentSewaPanitia = "SEWA_PANITIA" // sewa tenda dari panitia
)

// Tiga kelas kapasitas tenda yang disediakan panitia.
var TentCapacities = []int{50, 20, 15}

func IsValidTentCapacity(cap int) bool {
	for _, c := range TentCapacities {
		if c == cap {
			return true
		}
	}
	return false
}

// KavlingRange memetakan kapasitas ke rentang nomor kavling yang disediakan.
// Inventori tetap: 60 kavling per kategori, 20 per kelas kapasitas.
type KavlingRange struct {
	Capacity int
	From     int
	To       int
}

var KavlingLayout = []KavlingRange{
	{Capacity: 50, From: 1, To: 20},
	{Capacity: 20, From: 21, To: 40},
	{Capacity: 15, From: 41, To: 60},
}
