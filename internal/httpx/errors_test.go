package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errSeatBusy = errors.New("seat has order items")

func TestResolve(t *testing.T) {
	m := NewErrorMapper().Register(errSeatBusy, fiber.StatusConflict, "SEAT_HAS_ITEMS")

	got := m.Resolve(fmt.Errorf("remove seat: %w", errSeatBusy))
	assert.Equal(t, fiber.StatusConflict, got.Status)
	assert.Equal(t, "SEAT_HAS_ITEMS", got.Code)

	got = m.Resolve(fiber.NewError(fiber.StatusForbidden, "nope"))
	assert.Equal(t, fiber.StatusForbidden, got.Status)
	assert.Equal(t, "FORBIDDEN", got.Code)
	assert.Equal(t, "nope", got.Message)

	got = m.Resolve(gorm.ErrRecordNotFound)
	assert.Equal(t, fiber.StatusNotFound, got.Status)

	got = m.Resolve(BadRequest("name is required"))
	assert.Equal(t, "BAD_REQUEST", got.Code)

	got = m.Resolve(errors.New("boom"))
	assert.Equal(t, fiber.StatusInternalServerError, got.Status)
	assert.Equal(t, "INTERNAL", got.Code)
	assert.Equal(t, "boom", got.Message)
}

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	m := NewErrorMapper().Register(errSeatBusy, fiber.StatusConflict, "SEAT_HAS_ITEMS")
	app := fiber.New(fiber.Config{ErrorHandler: m.ErrorHandler()})
	app.Get("/fail", func(c *fiber.Ctx) error { return errSeatBusy })
	app.Get("/ok", func(c *fiber.Ctx) error { return OK(c, fiber.StatusCreated, fiber.Map{"id": 7}) })

	resp, err := app.Test(httptest.NewRequest("GET", "/fail", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var env Envelope
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &env))
	assert.False(t, env.OK)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SEAT_HAS_ITEMS", env.Error.Code)

	resp, err = app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"ok":true,"data":{"id":7}}`, string(body))
}

func TestRequestLoggerKeepsErrorStatus(t *testing.T) {
	m := NewErrorMapper()
	app := fiber.New(fiber.Config{ErrorHandler: m.ErrorHandler()})
	app.Use(RequestLogger())
	app.Get("/missing", func(c *fiber.Ctx) error { return NotFound("session not found") })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
