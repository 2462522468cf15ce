package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/registrations/model"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reOrderUnsafe = regexp.MustCompile(`[^A-Z0-9-]`)
	reOrderHyphen = regexp.MustCompile(`-+`)
)

// SanitizeSchoolNameForOrderID membentuk potongan nama sekolah yang URL-safe
// untuk Order ID: uppercase, spasi → "-", buang karakter lain, rapatkan dan
// pangkas "-", maksimal 25 karakter. Prefix nomor urutlah yang menjamin
// keunikan saat hasil pemotongan bertabrakan.
func SanitizeSchoolNameForOrderID(schoolName string) string {
	safe := strings.ToUpper(schoolName)
	safe = reSpaces.ReplaceAllString(safe, "-")
	safe = reOrderUnsafe.ReplaceAllString(safe, "")
	safe = reOrderHyphen.ReplaceAllString(safe, "-")
	safe = strings.Trim(safe, "-")
	if len(safe) > 25 {
		safe = safe[:25]
	}
	return safe
}

// GenerateSafeOrderID membuat Order ID human-decodable:
// {nomor-urut}-{NAMA-SEKOLAH}-{tag event}-{bulan 2 digit}-{tahun}.
func GenerateSafeOrderID(db *gorm.DB, schoolName string, now time.Time) (string, error) {
	var registrationCount int64
	if err := db.Model(&model.Registration{}).Count(&registrationCount).Error; err != nil {
		return "", err
	}
	nextNumber := registrationCount + 1

	return fmt.Sprintf("%d-%s-%s-%02d-%d",
		nextNumber,
		SanitizeSchoolNameForOrderID(schoolName),
		constants.EventTag,
		int(now.Month()),
		now.Year(),
	), nil
}
