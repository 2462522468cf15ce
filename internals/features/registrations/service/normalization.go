package service

import (
	"strings"

	"pelpmr_backend/internals/features/registrations/model"
)

// Aturan penyingkatan nama sekolah negeri. Urutan penting: varian panjang
// dicek sebelum varian pendeknya.
var schoolAbbreviations = []struct {
	from string
	to   string
}{
	{"SMK NEGERI ", "SMKN "},
	{"SMK N ", "SMKN "},
	{"SMA NEGERI ", "SMAN "},
	{"SMA N ", "SMAN "},
	{"SMP NEGERI ", "SMPN "},
	{"SMP N ", "SMPN "},
	{"MA NEGERI ", "MAN "},
	{"MTS NEGERI ", "MTSN "},
	{"SMP ISLAM TERPADU ", "SMPIT "},
	{"SMP IT ", "SMPIT "},
}

// NormalizeSchoolName membentuk nama kanonik yang dipakai sebagai kunci unik
// sistem: uppercase, singkatan baku (SMK NEGERI → SMKN, dst.), spasi rapat.
func NormalizeSchoolName(name string) string {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.Join(strings.Fields(normalized), " ")

	for _, rule := range schoolAbbreviations {
		normalized = strings.ReplaceAll(normalized, rule.from, rule.to)
	}

	return strings.Join(strings.Fields(normalized), " ")
}

// ParseGender menurunkan enum gender dari teks bebas kolom "GENDER (L/P)":
// nilai yang diawali huruf L dianggap laki-laki, selainnya perempuan.
func ParseGender(raw string) string {
	g := strings.ToUpper(strings.TrimSpace(raw))
	if strings.HasPrefix(g, "L") {
		return model.GenderLakiLaki
	}
	return model.GenderPerempuan
}

// NormalizeBloodType membersihkan kolom "GOL DARAH": placeholder "-" dan
// string kosong jadi nil, sisanya di-uppercase.
func NormalizeBloodType(raw string) *string {
	bt := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(raw, "-", "")))
	if bt == "" {
		return nil
	}
	return &bt
}

// NormalizePhone: kolom "NO HP" opsional, kosong jadi nil.
func NormalizePhone(raw string) *string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return nil
	}
	return &p
}
