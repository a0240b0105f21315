package admin

import (
	"errors"
	"strings"
	"time"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const InvitationTTL = 7 * 24 * time.Hour

var now = time.Now

type CreateInvitationRequest struct {
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	LocationID *uint           `json:"location_id"`
}

type AcceptInvitationRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// InvitationView is what an invitee sees before accepting.
type InvitationView struct {
	MerchantName string          `json:"merchant_name"`
	Email        string          `json:"email"`
	Role         models.UserRole `json:"role"`
	LocationID   *uint           `json:"location_id"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

type InvitationCreated struct {
	models.Invitation
	Token string `json:"token"`
}

// canInvite: managers may add staff but not owners.
func canInvite(inviter, target models.UserRole) bool {
	if !target.IsMerchantRole() {
		return false
	}
	switch inviter {
	case models.RolePlatformAdmin, models.RoleOwner:
		return true
	case models.RoleManager:
		return target != models.RoleOwner
	}
	return false
}

// usable reports why an invitation cannot be accepted anymore, or nil.
func usable(inv *models.Invitation, at time.Time) error {
	if inv.AcceptedAt != nil {
		return ErrInvitationUsed
	}
	if !at.Before(inv.ExpiresAt) {
		return ErrInvitationExpired
	}
	return nil
}

func CreateInvitation(db *gorm.DB, merchantID, inviterID uint, inviterRole models.UserRole, body CreateInvitationRequest) (*InvitationCreated, error) {
	email := auth.NormalizeEmail(body.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, httpx.BadRequest("a valid email is required")
	}
	if !body.Role.IsMerchantRole() {
		return nil, httpx.BadRequest("role must be owner, manager, server or kitchen")
	}
	if !canInvite(inviterRole, body.Role) {
		return nil, httpx.Forbidden("you cannot invite this role")
	}

	if body.LocationID != nil {
		var n int64
		if err := db.Model(&models.Location{}).
			Where("id = ? AND merchant_id = ?", *body.LocationID, merchantID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, ErrLocationNotFound
		}
	}

	var existing int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	inv := models.Invitation{
		MerchantID: merchantID,
		LocationID: body.LocationID,
		Email:      email,
		Role:       body.Role,
		Token:      uuid.NewString(),
		InvitedBy:  inviterID,
		ExpiresAt:  now().Add(InvitationTTL),
	}
	if err := db.Create(&inv).Error; err != nil {
		return nil, err
	}
	return &InvitationCreated{Invitation: inv, Token: inv.Token}, nil
}

func findInvitation(db *gorm.DB, token string) (*models.Invitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}
	var inv models.Invitation
	if err := db.Preload("Merchant").Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func LookupInvitation(db *gorm.DB, token string) (*InvitationView, error) {
	inv, err := findInvitation(db, token)
	if err != nil {
		return nil, err
	}
	if err := usable(inv, now()); err != nil {
		return nil, err
	}
	view := &InvitationView{
		Email:      inv.Email,
		Role:       inv.Role,
		LocationID: inv.LocationID,
		ExpiresAt:  inv.ExpiresAt,
	}
	if inv.Merchant != nil {
		view.MerchantName = inv.Merchant.Name
	}
	return view, nil
}

// AcceptInvitation creates the staff user and marks the token used in one transaction.
func AcceptInvitation(db *gorm.DB, token string, body AcceptInvitationRequest) (*models.User, error) {
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return nil, httpx.BadRequest("name is required")
	}
	if len(body.Password) < 8 {
		return nil, httpx.BadRequest("password must be at least 8 characters")
	}

	var user models.User
	err := database.WithTx(db, func(tx *gorm.DB) error {
		inv, err := findInvitation(tx, token)
		if err != nil {
			return err
		}
		at := now()
		if err := usable(inv, at); err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&models.User{}).Where("email = ?", inv.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}

		hash, err := auth.HashPassword(body.Password)
		if err != nil {
			return err
		}
		merchantID := inv.MerchantID
		user = models.User{
			MerchantID:   &merchantID,
			LocationID:   inv.LocationID,
			Name:         name,
			Email:        inv.Email,
			PasswordHash: hash,
			Role:         inv.Role,
			Active:       true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND accepted_at IS NULL", inv.ID).
			Update("accepted_at", at)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvitationUsed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// POST /api/invitations
func CreateInvitationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInvitationRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		inv, err := CreateInvitation(database.DB.WithContext(c.UserContext()),
			auth.MerchantID(c), auth.UserID(c), auth.Role(c), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, inv)
	}
}

// GET /api/invitations/:token
func LookupInvitationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := LookupInvitation(database.DB.WithContext(c.UserContext()), c.Params("token"))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, view)
	}
}

// POST /api/invitations/:token/accept
func AcceptInvitationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AcceptInvitationRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		user, err := AcceptInvitation(database.DB.WithContext(c.UserContext()), c.Params("token"), body)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, StaffMember{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       user.Role,
			LocationID: user.LocationID,
			Active:     user.Active,
		})
	}
}
