package tags

import (
	"errors"
	"fmt"
	"strings"

	"restoran-pos/internal/database"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTagNotFound = errors.New("tag not found")
	ErrTagExists   = errors.New("a tag with this name already exists")
)

func RegisterErrors(m *httpx.ErrorMapper) {
	m.Register(ErrTagNotFound, fiber.StatusNotFound, "TAG_NOT_FOUND").
		Register(ErrTagExists, fiber.StatusConflict, "TAG_EXISTS")
}

type TagInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func List(db *gorm.DB, merchantID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := db.Where("merchant_id = ?", merchantID).Order("name ASC").Find(&tags).Error
	return tags, err
}

func ensureUniqueName(db *gorm.DB, merchantID uint, name string, exceptID uint) error {
	var n int64
	q := db.Model(&models.Tag{}).Where("merchant_id = ? AND LOWER(name) = LOWER(?)", merchantID, name)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrTagExists
	}
	return nil
}

func Create(db *gorm.DB, merchantID uint, in TagInput) (*models.Tag, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, httpx.BadRequest("name is required")
	}
	tag := models.Tag{MerchantID: merchantID, Name: strings.TrimSpace(*in.Name)}
	if in.Color != nil {
		tag.Color = strings.TrimSpace(*in.Color)
	}
	if err := ensureUniqueName(db, merchantID, tag.Name, 0); err != nil {
		return nil, err
	}
	if err := db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func find(db *gorm.DB, merchantID, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	return &tag, nil
}

func Update(db *gorm.DB, merchantID, id uint, in TagInput) (*models.Tag, error) {
	tag, err := find(db, merchantID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, httpx.BadRequest("name cannot be empty")
		}
		if err := ensureUniqueName(db, merchantID, name, id); err != nil {
			return nil, err
		}
		tag.Name = name
	}
	if in.Color != nil {
		tag.Color = strings.TrimSpace(*in.Color)
	}
	if err := db.Save(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes the tag together with every session link to it.
func Delete(db *gorm.DB, merchantID, id uint) error {
	return database.WithTx(db, func(tx *gorm.DB) error {
		if _, err := find(tx, merchantID, id); err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", id).Delete(&models.SessionTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
}

func sessionExists(tx *gorm.DB, merchantID, sessionID uint) error {
	var n int64
	if err := tx.Model(&models.DiningSession{}).
		Where("id = ? AND merchant_id = ?", sessionID, merchantID).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return pos.ErrSessionNotFound
	}
	return nil
}

// Attach is a no-op when the tag is already on the session.
func Attach(db *gorm.DB, merchantID, sessionID, tagID, userID uint) error {
	return database.WithTx(db, func(tx *gorm.DB) error {
		if err := sessionExists(tx, merchantID, sessionID); err != nil {
			return err
		}
		tag, err := find(tx, merchantID, tagID)
		if err != nil {
			return err
		}

		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SessionTag{SessionID: sessionID, TagID: tagID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return pos.RecordEvent(tx, pos.EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventTagAttached,
			Description: fmt.Sprintf("Tagged %s", tag.Name),
			Data:        map[string]any{"tag_id": tag.ID},
		})
	})
}

func Detach(db *gorm.DB, merchantID, sessionID, tagID, userID uint) error {
	return database.WithTx(db, func(tx *gorm.DB) error {
		if err := sessionExists(tx, merchantID, sessionID); err != nil {
			return err
		}
		tag, err := find(tx, merchantID, tagID)
		if err != nil {
			return err
		}

		res := tx.Where("session_id = ? AND tag_id = ?", sessionID, tagID).Delete(&models.SessionTag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return pos.RecordEvent(tx, pos.EventOptions{
			MerchantID:  merchantID,
			SessionID:   sessionID,
			UserID:      userID,
			Type:        models.EventTagDetached,
			Description: fmt.Sprintf("Removed tag %s", tag.Name),
			Data:        map[string]any{"tag_id": tag.ID},
		})
	})
}
