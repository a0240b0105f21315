package idempotency

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"restoran-pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxKeyLength = 128

// HashRequest fingerprints a write so a reused key with a different payload can be told apart.
func HashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns nil when the key was never seen or has expired. Expired rows are removed.
func Lookup(db *gorm.DB, merchantID uint, key string, now time.Time) (*models.IdempotencyKey, error) {
	var rec models.IdempotencyKey
	err := db.Where("merchant_id = ? AND key = ?", merchantID, key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !rec.ExpiresAt.After(now) {
		if err := db.Delete(&models.IdempotencyKey{}, rec.ID).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}
	return &rec, nil
}

// Reserve inserts an in-progress row. False means another request holds the key.
func Reserve(db *gorm.DB, rec *models.IdempotencyKey) (bool, error) {
	if rec.ResponseBody == "" {
		rec.ResponseBody = "null"
	}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(rec)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func Complete(db *gorm.DB, id uint, status int, body []byte) error {
	if len(body) == 0 {
		body = []byte("null")
	}
	return db.Model(&models.IdempotencyKey{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status_code":   status,
			"response_body": string(body),
		}).Error
}

// Release drops a reservation so the client can retry after a failure.
func Release(db *gorm.DB, id uint) error {
	return db.Delete(&models.IdempotencyKey{}, id).Error
}

func PurgeExpired(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Where("expires_at <= ?", now).Delete(&models.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
