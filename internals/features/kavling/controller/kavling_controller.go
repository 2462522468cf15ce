// 📁 controller/kavling_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"pelpmr_backend/internals/constants"
	"pelpmr_backend/internals/features/kavling/service"
	helper "pelpmr_backend/internals/helpers"
)

type KavlingController struct {
	DB        *gorm.DB
	Inventory *service.KavlingInventory
}

func NewKavlingController(db *gorm.DB) *KavlingController {
	return &KavlingController{DB: db, Inventory: service.NewKavlingInventory(db)}
}

// 🟢 GET AVAILABLE KAVLING: nomor kavling kosong per kapasitas untuk satu kategori
func (ctrl *KavlingController) GetAvailable(c *fiber.Ctx) error {
	category := c.Query("category")
	if !constants.IsValidCategory(category) {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter 'category' (WIRA/MADYA) dibutuhkan.")
	}

	grouped, err := ctrl.Inventory.ListAvailable(category)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil data kavling")
	}

	return c.JSON(grouped)
}

// 🟢 GET TENTS AVAILABILITY: sisa tenda sewaan per kelas kapasitas
func (ctrl *KavlingController) GetTentsAvailability(c *fiber.Ctx) error {
	category := c.Query("category")
	if !constants.IsValidCategory(category) {
		return helper.Error(c, fiber.StatusBadRequest, "Parameter 'category' (WIRA/MADYA) dibutuhkan.")
	}

	tents, err := ctrl.Inventory.TentsAvailability(category)
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal mengambil ketersediaan tenda")
	}

	return helper.Success(c, "Ketersediaan tenda", tents)
}
