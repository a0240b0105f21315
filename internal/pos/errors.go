package pos

import (
	"errors"

	"restoran-pos/internal/httpx"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrValidation          = errors.New("invalid input")
	ErrLocationNotFound    = errors.New("location not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrTableOccupied       = errors.New("table already has an open session")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionNotOpen      = errors.New("session is not open")
	ErrBalanceDue          = errors.New("session has an unpaid balance")
	ErrHeldWavePending     = errors.New("session has held waves that were never fired")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrSeatHasItems        = errors.New("seat has order items and cannot be removed")
	ErrWaveNotFound        = errors.New("wave not found")
	ErrWaveNotHeld         = errors.New("wave is not held")
	ErrEmptyWave           = errors.New("wave has no items to fire")
	ErrInvalidTransition   = errors.New("invalid wave status transition")
	ErrItemNotFound        = errors.New("order item not found")
	ErrItemAlreadyVoided   = errors.New("order item is already voided")
	ErrItemVoided          = errors.New("order item is voided")
	ErrItemNotFired        = errors.New("order item was never sent to the kitchen")
	ErrMenuItemUnavailable = errors.New("menu item is unavailable")
)

// RegisterErrors adds the HTTP mapping of every pos error.
func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrValidation, fiber.StatusBadRequest, "VALIDATION").
		Register(ErrLocationNotFound, fiber.StatusNotFound, "LOCATION_NOT_FOUND").
		Register(ErrTableNotFound, fiber.StatusNotFound, "TABLE_NOT_FOUND").
		Register(ErrTableOccupied, fiber.StatusConflict, "TABLE_OCCUPIED").
		Register(ErrSessionNotFound, fiber.StatusNotFound, "SESSION_NOT_FOUND").
		Register(ErrSessionNotOpen, fiber.StatusConflict, "SESSION_NOT_OPEN").
		Register(ErrBalanceDue, fiber.StatusConflict, "BALANCE_DUE").
		Register(ErrHeldWavePending, fiber.StatusConflict, "HELD_WAVE_PENDING").
		Register(ErrSeatNotFound, fiber.StatusNotFound, "SEAT_NOT_FOUND").
		Register(ErrSeatHasItems, fiber.StatusConflict, "SEAT_HAS_ITEMS").
		Register(ErrWaveNotFound, fiber.StatusNotFound, "WAVE_NOT_FOUND").
		Register(ErrWaveNotHeld, fiber.StatusConflict, "WAVE_NOT_HELD").
		Register(ErrEmptyWave, fiber.StatusConflict, "EMPTY_WAVE").
		Register(ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION").
		Register(ErrItemNotFound, fiber.StatusNotFound, "ITEM_NOT_FOUND").
		Register(ErrItemAlreadyVoided, fiber.StatusConflict, "ITEM_ALREADY_VOIDED").
		Register(ErrItemVoided, fiber.StatusConflict, "ITEM_VOIDED").
		Register(ErrItemNotFired, fiber.StatusConflict, "ITEM_NOT_FIRED").
		Register(ErrMenuItemUnavailable, fiber.StatusUnprocessableEntity, "MENU_ITEM_UNAVAILABLE")
}

func invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }
