package admin

import (
	"errors"

	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrMerchantNotFound   = errors.New("merchant not found")
	ErrSlugTaken          = errors.New("slug is already taken")
	ErrLocationNotFound   = errors.New("location not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrTableLabelTaken    = errors.New("table label already exists at this location")
	ErrTableInUse         = errors.New("table has an open session")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrInvitationExpired  = errors.New("invitation has expired")
	ErrInvitationUsed     = errors.New("invitation was already accepted")
	ErrEmailTaken         = errors.New("a user with this email already exists")
)

func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrMerchantNotFound, fiber.StatusNotFound, "MERCHANT_NOT_FOUND").
		Register(ErrSlugTaken, fiber.StatusConflict, "SLUG_TAKEN").
		Register(ErrLocationNotFound, fiber.StatusNotFound, "LOCATION_NOT_FOUND").
		Register(ErrTableNotFound, fiber.StatusNotFound, "TABLE_NOT_FOUND").
		Register(ErrTableLabelTaken, fiber.StatusConflict, "TABLE_LABEL_TAKEN").
		Register(ErrTableInUse, fiber.StatusConflict, "TABLE_IN_USE").
		Register(ErrInvitationNotFound, fiber.StatusNotFound, "INVITATION_NOT_FOUND").
		Register(ErrInvitationExpired, fiber.StatusGone, "INVITATION_EXPIRED").
		Register(ErrInvitationUsed, fiber.StatusGone, "INVITATION_USED").
		Register(ErrEmailTaken, fiber.StatusConflict, "EMAIL_TAKEN")
}
