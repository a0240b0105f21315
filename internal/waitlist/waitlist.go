package waitlist

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
	ErrEntryNotFound   = errors.New("waitlist entry not found")
	ErrEntryNotActive  = errors.New("waitlist entry is no longer waiting")
	ErrAlreadyNotified = errors.New("guest was already notified")
)

var activeStatuses = []models.WaitlistStatus{models.WaitlistWaiting, models.WaitlistNotified}

// now is swapped in tests.
var now = time.Now

func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrEntryNotFound, fiber.StatusNotFound, "WAITLIST_ENTRY_NOT_FOUND").
		Register(ErrEntryNotActive, fiber.StatusConflict, "WAITLIST_ENTRY_NOT_ACTIVE").
		Register(ErrAlreadyNotified, fiber.StatusConflict, "WAITLIST_ALREADY_NOTIFIED")
}

type AddInput struct {
	LocationID    uint   `json:"location_id"`
	GuestName     string `json:"guest_name"`
	Phone         string `json:"phone"`
	PartySize     int    `json:"party_size"`
	QuotedMinutes int    `json:"quoted_minutes"`
	Note          string `json:"note"`
}

func Add(db *gorm.DB, merchantID uint, in AddInput) (*models.WaitlistEntry, error) {
	in.GuestName = strings.TrimSpace(in.GuestName)
	if in.GuestName == "" {
		return nil, httpx.BadRequest("guest_name is required")
	}
	if in.PartySize < 1 {
		return nil, httpx.BadRequest("party_size must be at least 1")
	}
	if in.QuotedMinutes < 0 {
		return nil, httpx.BadRequest("quoted_minutes cannot be negative")
	}

	var n int64
	if err := db.Model(&models.Location{}).Where("id = ? AND merchant_id = ?", in.LocationID, merchantID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, pos.ErrLocationNotFound
	}

	entry := models.WaitlistEntry{
		MerchantID:    merchantID,
		LocationID:    in.LocationID,
		GuestName:     in.GuestName,
		Phone:         strings.TrimSpace(in.Phone),
		PartySize:     in.PartySize,
		QuotedMinutes: in.QuotedMinutes,
		Status:        models.WaitlistWaiting,
		Note:          strings.TrimSpace(in.Note),
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListActive returns waiting and notified guests in arrival order.
func ListActive(db *gorm.DB, merchantID, locationID uint) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	err := db.Where("merchant_id = ? AND location_id = ? AND status IN ?", merchantID, locationID, activeStatuses).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func find(db *gorm.DB, merchantID, id uint) (*models.WaitlistEntry, error) {
	var entry models.WaitlistEntry
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// transition applies updates only while the entry is in one of from.
func transition(db *gorm.DB, id uint, from []models.WaitlistStatus, updates map[string]interface{}) error {
	res := db.Model(&models.WaitlistEntry{}).Where("id = ? AND status IN ?", id, from).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotActive
	}
	return nil
}

func Notify(db *gorm.DB, merchantID, id uint) (*models.WaitlistEntry, error) {
	entry, err := find(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	switch entry.Status {
	case models.WaitlistNotified:
		return nil, ErrAlreadyNotified
	case models.WaitlistWaiting:
	default:
		return nil, ErrEntryNotActive
	}

	at := now()
	if err := transition(db, id, []models.WaitlistStatus{models.WaitlistWaiting}, map[string]interface{}{
		"status":      models.WaitlistNotified,
		"notified_at": at,
	}); err != nil {
		return nil, err
	}
	entry.Status = models.WaitlistNotified
	entry.NotifiedAt = &at
	return entry, nil
}

func Cancel(db *gorm.DB, merchantID, id uint) (*models.WaitlistEntry, error) {
	entry, err := find(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	if err := transition(db, id, activeStatuses, map[string]interface{}{
		"status": models.WaitlistCancelled,
	}); err != nil {
		return nil, err
	}
	entry.Status = models.WaitlistCancelled
	return entry, nil
}

type SeatInput struct {
	TableID  *uint `json:"table_id"`
	ServerID *uint `json:"server_id"`
}

// Seat opens a dining session for the party and links it to the entry. The entry update and
// the session are committed together.
func Seat(db *gorm.DB, merchantID, id, userID uint, in SeatInput) (*models.WaitlistEntry, *models.DiningSession, error) {
	entry, err := find(db, merchantID, id)
	if err != nil {
		return nil, nil, err
	}
	if entry.Status != models.WaitlistWaiting && entry.Status != models.WaitlistNotified {
		return nil, nil, ErrEntryNotActive
	}

	at := now()
	var session *models.DiningSession
	err = database.WithTx(db, func(tx *gorm.DB) error {
		// entry is claimed before the session exists; a concurrent seat gets ErrEntryNotActive
		if err := transition(tx, id, activeStatuses, map[string]interface{}{
			"status":    models.WaitlistSeated,
			"seated_at": at,
		}); err != nil {
			return err
		}

		var err error
		session, err = pos.OpenSession(tx, pos.OpenSessionInput{
			MerchantID: merchantID,
			LocationID: entry.LocationID,
			TableID:    in.TableID,
			ServerID:   in.ServerID,
			GuestCount: entry.PartySize,
			Note:       entry.GuestName,
			UserID:     userID,
		})
		if err != nil {
			return err
		}
		return tx.Model(&models.WaitlistEntry{}).Where("id = ?", id).
			Update("session_id", session.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}

	entry.Status = models.WaitlistSeated
	entry.SeatedAt = &at
	entry.SessionID = &session.ID
	return entry, session, nil
}
