// 📁 controller/auth_controller.go
package controller

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"pelpmr_backend/internals/configs"
	helper "pelpmr_backend/internals/helpers"
	"pelpmr_backend/internals/middlewares/auth"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthController menangani login admin back-office. Kredensialnya single
// account dari ENV (ADMIN_EMAIL + ADMIN_PASSWORD_HASH bcrypt).
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// 🟢 LOGIN ADMIN: verifikasi kredensial, terbitkan JWT 12 jam.
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Format request tidak valid")
	}
	if err := validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	adminEmail := configs.GetEnv("ADMIN_EMAIL")
	adminHash := configs.GetEnv("ADMIN_PASSWORD_HASH")
	if adminEmail == "" || adminHash == "" {
		return helper.Error(c, fiber.StatusServiceUnavailable, "Akun admin belum dikonfigurasi")
	}

	if req.Email != adminEmail ||
		bcrypt.CompareHashAndPassword([]byte(adminHash), []byte(req.Password)) != nil {
		return helper.Error(c, fiber.StatusUnauthorized, "Email atau password salah")
	}

	now := time.Now()
	claims := auth.AdminClaims{
		Email: req.Email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(12 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(configs.JWTSecret))
	if err != nil {
		return helper.Error(c, fiber.StatusInternalServerError, "Gagal membuat token")
	}

	return helper.Success(c, "Login berhasil", fiber.Map{
		"token":     token,
		"expiresAt": claims.ExpiresAt.Time,
	})
}
