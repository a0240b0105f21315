package auth

import (
	"strings"
	"time"

	"restoran-pos/internal/config"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterPlatformAdminRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	MerchantID *uint           `json:"merchant_id"`
	LocationID *uint           `json:"location_id"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		MerchantID: u.MerchantID,
		LocationID: u.LocationID,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// POST /api/auth/register-platform-admin
// Only works while no platform admin exists.
func RegisterPlatformAdminHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterPlatformAdminRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)
		body.Name = strings.TrimSpace(body.Name)
		if body.Email == "" || body.Password == "" || body.Name == "" {
			return httpx.BadRequest("name, email and password are required")
		}
		if len(body.Password) < 8 {
			return httpx.BadRequest("password must be at least 8 characters")
		}

		var count int64
		if err := database.DB.Model(&models.User{}).
			Where("role = ?", models.RolePlatformAdmin).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "a platform admin already exists")
		}

		hash, err := HashPassword(body.Password)
		if err != nil {
			return err
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Role:         models.RolePlatformAdmin,
			Active:       true,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			return err
		}

		return httpx.OK(c, fiber.StatusCreated, toUserResponse(&user))
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}

		body.Email = NormalizeEmail(body.Email)

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "email or password is incorrect")
		}
		if !user.Active {
			return fiber.NewError(fiber.StatusUnauthorized, "account is disabled")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "email or password is incorrect")
		}

		token, err := GenerateToken(cfg.JWTSecret, &user, cfg.SessionTTL)
		if err != nil {
			return err
		}

		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(cfg.SessionTTL),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return httpx.OK(c, fiber.StatusOK, fiber.Map{
			"token": token,
			"user":  toUserResponse(&user),
		})
	}
}

// POST /api/auth/logout
func LogoutHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"logged_out": true})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var user models.User
		if err := database.DB.First(&user, UserID(c)).Error; err != nil {
			return httpx.NotFound("user not found")
		}

		resp := fiber.Map{"user": toUserResponse(&user)}
		if user.MerchantID != nil {
			var merchant models.Merchant
			if err := database.DB.First(&merchant, *user.MerchantID).Error; err == nil {
				resp["merchant"] = fiber.Map{
					"id":     merchant.ID,
					"name":   merchant.Name,
					"slug":   merchant.Slug,
					"status": merchant.Status,
				}
			}
		}
		return httpx.OK(c, fiber.StatusOK, resp)
	}
}
