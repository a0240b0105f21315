package pos

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OpenSessionInput struct {
	MerchantID uint
	LocationID uint
	TableID    *uint
	ServerID   *uint
	GuestCount int
	Note       string
	UserID     uint
}

type SessionFilter struct {
	LocationID uint
	Status     models.SessionStatus
	TableID    uint
	From       *time.Time
	To         *time.Time
}

// now is swapped in tests.
var now = time.Now

// OpenSession seats a party: the session, one seat per guest and the held wave 1.
func OpenSession(db *gorm.DB, in OpenSessionInput) (*models.DiningSession, error) {
	if in.GuestCount < 1 {
		return nil, invalid("guest_count must be at least 1")
	}
	if in.GuestCount > 50 {
		return nil, invalid("guest_count must be at most 50")
	}

	var sessionID uint
	err := database.WithTx(db, func(tx *gorm.DB) error {
		var location models.Location
		if err := tx.Where("id = ? AND merchant_id = ?", in.LocationID, in.MerchantID).
			First(&location).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLocationNotFound
			}
			return err
		}

		if in.TableID != nil {
			if err := ensureTableFree(tx, in.MerchantID, in.LocationID, *in.TableID, 0); err != nil {
				return err
			}
		}

		serverID := in.ServerID
		if serverID == nil && in.UserID != 0 {
			uid := in.UserID
			serverID = &uid
		}

		opened := now()
		session := models.DiningSession{
			PublicID:   uuid.NewString(),
			MerchantID: in.MerchantID,
			LocationID: in.LocationID,
			TableID:    in.TableID,
			ServerID:   serverID,
			GuestCount: in.GuestCount,
			Status:     models.SessionStatusOpen,
			Note:       strings.TrimSpace(in.Note),
			OpenedAt:   opened,
		}
		if err := tx.Create(&session).Error; err != nil {
			return tableConflict(err)
		}

		seats := make([]models.Seat, in.GuestCount)
		for i := range seats {
			seats[i] = models.Seat{SessionID: session.ID, Number: i + 1}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}

		wave := models.Order{
			MerchantID: in.MerchantID,
			SessionID:  session.ID,
			Wave:       1,
			Status:     models.WaveHeld,
		}
		if err := tx.Create(&wave).Error; err != nil {
			return err
		}

		sessionID = session.ID
		return RecordEvent(tx, EventOptions{
			MerchantID:  in.MerchantID,
			SessionID:   session.ID,
			UserID:      in.UserID,
			Type:        models.EventSessionOpened,
			Description: fmt.Sprintf("Session opened for %d guests", in.GuestCount),
			Data:        map[string]any{"table_id": in.TableID, "guest_count": in.GuestCount},
		})
	})
	if err != nil {
		return nil, err
	}
	return GetSession(db, in.MerchantID, sessionID)
}

// ensureTableFree checks the table belongs to the location and has no other open session.
func ensureTableFree(tx *gorm.DB, merchantID, locationID, tableID, exceptSessionID uint) error {
	var table models.DiningTable
	if err := tx.Where("id = ? AND merchant_id = ? AND location_id = ? AND active = ?",
		tableID, merchantID, locationID, true).
		First(&table).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTableNotFound
		}
		return err
	}

	var open int64
	q := tx.Model(&models.DiningSession{}).
		Where("table_id = ? AND status = ?", tableID, models.SessionStatusOpen)
	if exceptSessionID != 0 {
		q = q.Where("id <> ?", exceptSessionID)
	}
	if err := q.Count(&open).Error; err != nil {
		return err
	}
	if open > 0 {
		return ErrTableOccupied
	}
	return nil
}

// openTableIndex is the partial unique index on sessions(table_id) WHERE status = 'open'.
const openTableIndex = "ux_sessions_open_table"

// tableConflict maps a lost race on the open-table index to ErrTableOccupied.
func tableConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openTableIndex {
		return ErrTableOccupied
	}
	return err
}

func GetSession(db *gorm.DB, merchantID, sessionID uint) (*models.DiningSession, error) {
	var session models.DiningSession
	err := db.
		Preload("Table").
		Preload("Seats", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("wave ASC") }).
		Preload("Orders.Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Tags").
		Where("id = ? AND merchant_id = ?", sessionID, merchantID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func ListSessions(db *gorm.DB, merchantID uint, f SessionFilter) ([]models.DiningSession, error) {
	q := db.Model(&models.DiningSession{}).Preload("Table").Preload("Tags").
		Where("merchant_id = ?", merchantID)
	if f.LocationID != 0 {
		q = q.Where("location_id = ?", f.LocationID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != 0 {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.From != nil {
		q = q.Where("opened_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("opened_at < ?", *f.To)
	}

	var sessions []models.DiningSession
	if err := q.Order("opened_at DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// LockOpenSession loads the session FOR UPDATE so concurrent writes on it serialize.
func LockOpenSession(tx *gorm.DB, merchantID, sessionID uint) (*models.DiningSession, error) {
	var session models.DiningSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND merchant_id = ?", sessionID, merchantID).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Status != models.SessionStatusOpen {
		return nil, ErrSessionNotOpen
	}
	return &session, nil
}

// CloseSession requires a settled balance and no unfired held items, unless force is set.
func CloseSession(db *gorm.DB, merchantID, sessionID, userID uint, force bool) (*models.DiningSession, error) {
	err := database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := LockOpenSession(tx, merchantID, sessionID); err != nil {
			return err
		}
		if err := RecalculateTotals(tx, sessionID); err != nil {
			return err
		}

		var session models.DiningSession
		if err := tx.First(&session, sessionID).Error; err != nil {
			return err
		}

		if !force {
			if session.BalanceDue() > 0 {
				return ErrBalanceDue
			}
			var pending int64
			if err := tx.Model(&models.OrderItem{}).
				Joins("JOIN orders ON orders.id = order_items.order_id").
				Where("orders.session_id = ? AND orders.status = ? AND order_items.voided = ?",
					sessionID, models.WaveHeld, false).
				Count(&pending).Error; err != nil {
				return err
			}
			if pending > 0 {
				return ErrHeldWavePending
			}
		}

		closed := now()
		if err := tx.Model(&models.DiningSession{}).
			Where("id = ? AND status = ?", sessionID, models.SessionStatusOpen).
			Updates(map[string]interface{}{
				"status":    models.SessionStatusClosed,
				"closed_at": closed,
			}).Error; err != nil {
			return err
		}

		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventSessionClosed,
			Description: "Session closed",
			Data: map[string]any{
				"force": force,
				"total": session.Total,
				"paid":  session.Paid,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return GetSession(db, merchantID, sessionID)
}

// TransferSession moves an open session to another free table of the same location.
func TransferSession(db *gorm.DB, merchantID, sessionID, tableID, userID uint) (*models.DiningSession, error) {
	err := database.WithTx(db, func(tx *gorm.DB) error {
		session, err := LockOpenSession(tx, merchantID, sessionID)
		if err != nil {
			return err
		}
		if session.TableID != nil && *session.TableID == tableID {
			return invalid("session is already at this table")
		}
		if err := ensureTableFree(tx, merchantID, session.LocationID, tableID, sessionID); err != nil {
			return err
		}

		if err := tx.Model(&models.DiningSession{}).Where("id = ?", sessionID).
			Update("table_id", tableID).Error; err != nil {
			return tableConflict(err)
		}

		return RecordEvent(tx, EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventSessionTransferred,
			Description: "Session moved to another table",
			Data:        map[string]any{"from_table_id": session.TableID, "to_table_id": tableID},
		})
	})
	if err != nil {
		return nil, err
	}
	return GetSession(db, merchantID, sessionID)
}
