package reservations

import (
	"errors"
	"strings"
	"time"

	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrReservationNotBooked = errors.New("reservation is no longer booked")
	ErrInPast               = errors.New("reservation time is in the past")
)

// now is swapped in tests.
var now = time.Now

func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrReservationNotFound, fiber.StatusNotFound, "RESERVATION_NOT_FOUND").
		Register(ErrReservationNotBooked, fiber.StatusConflict, "RESERVATION_NOT_BOOKED").
		Register(ErrInPast, fiber.StatusBadRequest, "RESERVATION_IN_PAST")
}

type CreateInput struct {
	LocationID  uint      `json:"location_id"`
	TableID     *uint     `json:"table_id"`
	GuestName   string    `json:"guest_name"`
	Phone       string    `json:"phone"`
	PartySize   int       `json:"party_size"`
	ReservedFor time.Time `json:"reserved_for"`
	Note        string    `json:"note"`
}

func Create(db *gorm.DB, merchantID uint, in CreateInput) (*models.Reservation, error) {
	in.GuestName = strings.TrimSpace(in.GuestName)
	switch {
	case in.GuestName == "":
		return nil, httpx.BadRequest("guest_name is required")
	case in.PartySize < 1:
		return nil, httpx.BadRequest("party_size must be at least 1")
	case in.ReservedFor.IsZero():
		return nil, httpx.BadRequest("reserved_for is required")
	case in.ReservedFor.Before(now()):
		return nil, ErrInPast
	}

	var loc int64
	if err := db.Model(&models.Location{}).Where("id = ? AND merchant_id = ?", in.LocationID, merchantID).
		Count(&loc).Error; err != nil {
		return nil, err
	}
	if loc == 0 {
		return nil, pos.ErrLocationNotFound
	}
	if in.TableID != nil {
		var n int64
		if err := db.Model(&models.DiningTable{}).
			Where("id = ? AND merchant_id = ? AND location_id = ?", *in.TableID, merchantID, in.LocationID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, pos.ErrTableNotFound
		}
	}

	r := models.Reservation{
		MerchantID:  merchantID,
		LocationID:  in.LocationID,
		TableID:     in.TableID,
		GuestName:   in.GuestName,
		Phone:       strings.TrimSpace(in.Phone),
		PartySize:   in.PartySize,
		ReservedFor: in.ReservedFor,
		Status:      models.ReservationBooked,
		Note:        strings.TrimSpace(in.Note),
	}
	if err := db.Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// DayBounds returns [start, end) of the calendar day of t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func ListForDay(db *gorm.DB, merchantID, locationID uint, day time.Time, loc *time.Location) ([]models.Reservation, error) {
	start, end := DayBounds(day, loc)
	var out []models.Reservation
	err := db.Where("merchant_id = ? AND location_id = ? AND reserved_for >= ? AND reserved_for < ?",
		merchantID, locationID, start, end).
		Order("reserved_for ASC").
		Find(&out).Error
	return out, err
}

func find(db *gorm.DB, merchantID, id uint) (*models.Reservation, error) {
	var r models.Reservation
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &r, nil
}

func setStatus(db *gorm.DB, merchantID, id uint, to models.ReservationStatus, extra map[string]interface{}) (*models.Reservation, error) {
	r, err := find(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	if r.Status != models.ReservationBooked {
		return nil, ErrReservationNotBooked
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	if err := leaveBooked(db, id, updates); err != nil {
		return nil, err
	}
	r.Status = to
	return r, nil
}

// leaveBooked applies updates only while the reservation is still booked.
func leaveBooked(db *gorm.DB, id uint, updates map[string]interface{}) error {
	res := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.ReservationBooked).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReservationNotBooked
	}
	return nil
}

func Cancel(db *gorm.DB, merchantID, id uint) (*models.Reservation, error) {
	return setStatus(db, merchantID, id, models.ReservationCancelled, nil)
}

func MarkNoShow(db *gorm.DB, merchantID, id uint) (*models.Reservation, error) {
	return setStatus(db, merchantID, id, models.ReservationNoShow, nil)
}

type SeatInput struct {
	TableID  *uint `json:"table_id"`
	ServerID *uint `json:"server_id"`
}

// Seat opens a session for the booked party, at the reserved table unless another is given.
// The reservation update and the session are committed together.
func Seat(db *gorm.DB, merchantID, id, userID uint, in SeatInput) (*models.Reservation, *models.DiningSession, error) {
	r, err := find(db, merchantID, id)
	if err != nil {
		return nil, nil, err
	}
	if r.Status != models.ReservationBooked {
		return nil, nil, ErrReservationNotBooked
	}

	table := in.TableID
	if table == nil {
		table = r.TableID
	}

	var session *models.DiningSession
	err = database.WithTx(db, func(tx *gorm.DB) error {
		if err := leaveBooked(tx, id, map[string]interface{}{
			"status":   models.ReservationSeated,
			"table_id": table,
		}); err != nil {
			return err
		}

		var err error
		session, err = pos.OpenSession(tx, pos.OpenSessionInput{
			MerchantID: merchantID,
			LocationID: r.LocationID,
			TableID:    table,
			ServerID:   in.ServerID,
			GuestCount: r.PartySize,
			Note:       r.GuestName,
			UserID:     userID,
		})
		if err != nil {
			return err
		}
		return tx.Model(&models.Reservation{}).Where("id = ?", id).
			Update("session_id", session.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}

	r.Status = models.ReservationSeated
	r.SessionID = &session.ID
	r.TableID = table
	return r, session, nil
}
