package pos

import (
	"strconv"

	"restoran-pos/internal/auth"
	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
)

type OpenSessionRequest struct {
	LocationID uint   `json:"location_id"`
	TableID    *uint  `json:"table_id"`
	ServerID   *uint  `json:"server_id"`
	GuestCount int    `json:"guest_count"`
	Note       string `json:"note"`
}

type CloseSessionRequest struct {
	Force bool `json:"force"`
}

type TransferSessionRequest struct {
	TableID uint `json:"table_id"`
}

type AddSeatRequest struct {
	Label string `json:"label"`
}

type AddItemsRequest struct {
	Wave  *int        `json:"wave"`
	Items []ItemInput `json:"items"`
}

type AdvanceWaveRequest struct {
	Status models.WaveStatus `json:"status"`
}

type ItemReasonRequest struct {
	Reason string `json:"reason"`
}

type PaymentRequest struct {
	Method    models.PaymentMethod `json:"method"`
	Amount    int64                `json:"amount"`
	Tip       int64                `json:"tip"`
	Reference string               `json:"reference"`
}

// POST /api/sessions
func OpenSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if body.LocationID == 0 {
			loc, err := auth.LocationID(c)
			if err != nil {
				return err
			}
			body.LocationID = loc
		}

		session, err := OpenSession(database.DB.WithContext(c.UserContext()), OpenSessionInput{
			MerchantID: auth.MerchantID(c),
			LocationID: body.LocationID,
			TableID:    body.TableID,
			ServerID:   body.ServerID,
			GuestCount: body.GuestCount,
			Note:       body.Note,
			UserID:     auth.UserID(c),
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, session)
	}
}

// GET /api/sessions?location_id=&status=&table_id=&date=
func ListSessionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f SessionFilter
		var err error
		if f.LocationID, err = httpx.QueryUint(c, "location_id"); err != nil {
			return err
		}
		if f.TableID, err = httpx.QueryUint(c, "table_id"); err != nil {
			return err
		}
		if raw := c.Query("status"); raw != "" {
			switch s := models.SessionStatus(raw); s {
			case models.SessionStatusOpen, models.SessionStatusClosed, models.SessionStatusCancelled:
				f.Status = s
			default:
				return httpx.BadRequest("status is invalid")
			}
		}
		db := database.DB.WithContext(c.UserContext())
		day, ok, err := httpx.QueryDate(c, "date", database.MerchantTimezone(db, auth.MerchantID(c)))
		if err != nil {
			return err
		}
		if ok {
			end := day.AddDate(0, 0, 1)
			f.From, f.To = &day, &end
		}

		sessions, err := ListSessions(db, auth.MerchantID(c), f)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, sessions)
	}
}

// GET /api/sessions/:id
func GetSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		session, err := GetSession(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{
			"session":     session,
			"balance_due": session.BalanceDue(),
		})
	}
}

// POST /api/sessions/:id/close
func CloseSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body CloseSessionRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return httpx.BadRequest("invalid request body")
			}
		}
		if body.Force && !canForceClose(auth.Role(c)) {
			return httpx.Forbidden("only owners and managers can force close a session")
		}

		session, err := CloseSession(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body.Force)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, session)
	}
}

func canForceClose(role models.UserRole) bool {
	return role == models.RoleOwner || role == models.RoleManager || role == models.RolePlatformAdmin
}

// POST /api/sessions/:id/transfer
func TransferSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body TransferSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		if body.TableID == 0 {
			return httpx.BadRequest("table_id is required")
		}

		session, err := TransferSession(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, body.TableID, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, session)
	}
}

// POST /api/sessions/:id/seats
func AddSeatHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AddSeatRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return httpx.BadRequest("invalid request body")
			}
		}

		seat, err := AddSeat(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body.Label)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, seat)
	}
}

// DELETE /api/sessions/:id/seats/:seat_id
func RemoveSeatHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		seatID, err := httpx.ParamID(c, "seat_id")
		if err != nil {
			return err
		}

		if err := RemoveSeat(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, seatID, auth.UserID(c)); err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"removed": seatID})
	}
}

// POST /api/sessions/:id/waves
func CreateWaveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		order, err := CreateWave(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, order)
	}
}

// POST /api/sessions/:id/items
func AddItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AddItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}

		order, err := AddItems(database.DB.WithContext(c.UserContext()), AddItemsInput{
			MerchantID: auth.MerchantID(c),
			SessionID:  id,
			UserID:     auth.UserID(c),
			Wave:       body.Wave,
			Items:      body.Items,
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, order)
	}
}

// POST /api/sessions/:id/waves/:wave/fire
func FireWaveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		wave, err := strconv.Atoi(c.Params("wave"))
		if err != nil || wave < 1 {
			return httpx.BadRequest("wave is invalid")
		}

		order, err := FireWave(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, wave, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, order)
	}
}

// POST /api/orders/:id/advance
func AdvanceWaveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AdvanceWaveRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}
		to, ok := ParseWaveStatus(string(body.Status))
		if !ok {
			return httpx.BadRequest("status must be one of held, sent, cooking, ready, served")
		}

		order, err := AdvanceWave(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, to, auth.UserID(c))
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, order)
	}
}

// POST /api/order-items/:id/void
func VoidItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ItemReasonRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}

		item, err := VoidItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body.Reason)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, item)
	}
}

// POST /api/order-items/:id/refire
func RefireItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body ItemReasonRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return httpx.BadRequest("invalid request body")
			}
		}

		item, err := RefireItem(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id, auth.UserID(c), body.Reason)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, item)
	}
}

// POST /api/sessions/:id/payments
func RecordPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body PaymentRequest
		if err := c.BodyParser(&body); err != nil {
			return httpx.BadRequest("invalid request body")
		}

		payment, err := RecordPayment(database.DB.WithContext(c.UserContext()), PaymentInput{
			MerchantID: auth.MerchantID(c),
			SessionID:  id,
			UserID:     auth.UserID(c),
			Method:     body.Method,
			Amount:     body.Amount,
			Tip:        body.Tip,
			Reference:  body.Reference,
		})
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusCreated, payment)
	}
}

// GET /api/sessions/:id/events
func ListEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c, "id")
		if err != nil {
			return err
		}
		events, err := ListEvents(database.DB.WithContext(c.UserContext()), auth.MerchantID(c), id)
		if err != nil {
			return err
		}
		return httpx.OK(c, fiber.StatusOK, events)
	}
}
