package auth

import (
	"strconv"
	"strings"

	"restoran-pos/internal/config"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey     = "user_id"
	CtxUserRoleKey   = "user_role"
	CtxMerchantIDKey = "merchant_id"
	CtxLocationIDKey = "location_id"

	MerchantHeader = "X-Merchant-ID"
)

// JWTMiddleware accepts the session cookie first, then an Authorization bearer token.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Cookies(cfg.SessionCookieName)
		if tokenStr == "" {
			authHeader := c.Get("Authorization")
			if authHeader == "" {
				return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
			}
			tokenStr = parts[1]
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired session")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		c.Locals(CtxUserRoleKey, claims.Role)
		c.Locals(CtxMerchantIDKey, claims.MerchantID)
		c.Locals(CtxLocationIDKey, claims.LocationID)

		return c.Next()
	}
}

// RequireRole lets platform admins through every check.
func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "role missing from session")
		}
		if role == models.RolePlatformAdmin {
			return c.Next()
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to perform this action")
	}
}

// RequirePlatform restricts a route group to internal staff.
func RequirePlatform(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok || !role.IsPlatform() {
			return fiber.NewError(fiber.StatusForbidden, "platform personnel only")
		}
		if len(allowedRoles) == 0 {
			return c.Next()
		}
		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "you are not allowed to perform this action")
	}
}

// MerchantScope resolves the tenant of the request and stores it in locals.
// Merchant staff are bound to their claim; platform personnel pick one explicitly.
func MerchantScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := resolveMerchantID(c)
		if err != nil {
			return err
		}
		c.Locals(CtxMerchantIDKey, &id)
		return c.Next()
	}
}

func resolveMerchantID(c *fiber.Ctx) (uint, error) {
	role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "role missing from session")
	}

	if !role.IsPlatform() {
		mPtr, ok := c.Locals(CtxMerchantIDKey).(*uint)
		if !ok || mPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "user is not bound to a merchant")
		}
		return *mPtr, nil
	}

	raw := c.Get(MerchantHeader)
	if raw == "" {
		raw = c.Query("merchant_id")
	}
	if raw == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "merchant_id is required for platform personnel")
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "merchant_id is invalid")
	}
	return uint(id), nil
}

// MerchantID returns the tenant resolved by MerchantScope.
func MerchantID(c *fiber.Ctx) uint {
	if mPtr, ok := c.Locals(CtxMerchantIDKey).(*uint); ok && mPtr != nil {
		return *mPtr
	}
	return 0
}

func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

func Role(c *fiber.Ctx) models.UserRole {
	role, _ := c.Locals(CtxUserRoleKey).(models.UserRole)
	return role
}

// LocationID picks the staff member's own location, or ?location_id= for roles spanning locations.
func LocationID(c *fiber.Ctx) (uint, error) {
	if raw := c.Query("location_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, "location_id is invalid")
		}
		return uint(id), nil
	}
	if lPtr, ok := c.Locals(CtxLocationIDKey).(*uint); ok && lPtr != nil {
		return *lPtr, nil
	}
	return 0, fiber.NewError(fiber.StatusBadRequest, "location_id is required")
}
