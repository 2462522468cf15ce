package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	helper "pelpmr_backend/internals/helpers"
)

// AdminClaims adalah isi token admin back-office.
type AdminClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AdminOnly memverifikasi Bearer token dan mensyaratkan role admin.
func AdminOnly(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return helper.Error(c, fiber.StatusUnauthorized, "Token tidak ditemukan")
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return helper.Error(c, fiber.StatusUnauthorized, "Format Authorization harus Bearer")
		}

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return helper.Error(c, fiber.StatusUnauthorized, "Token tidak valid atau kedaluwarsa")
		}

		if claims.Role != "admin" {
			return helper.Error(c, fiber.StatusForbidden, "Akses khusus admin")
		}

		c.Locals("admin_email", claims.Email)
		return c.Next()
	}
}
