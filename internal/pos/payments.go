package pos

import (
	"fmt"
	"strings"

	"restoran-pos/internal/database"
	"restoran-pos/internal/models"

	"gorm.io/gorm"
)

type PaymentInput struct {
	MerchantID uint
	SessionID  uint
	UserID     uint
	Method     models.PaymentMethod
	Amount     int64
	Tip        int64
	Reference  string
}

func validatePayment(in PaymentInput) error {
	switch in.Method {
	case models.PaymentMethodCash, models.PaymentMethodCard, models.PaymentMethodOther:
	default:
		return invalid("method must be one of cash, card, other")
	}
	if in.Amount <= 0 {
		return invalid("amount must be positive")
	}
	if in.Tip < 0 {
		return invalid("tip cannot be negative")
	}
	if len(in.Reference) > 100 {
		return invalid("reference is too long")
	}
	return nil
}

// RecordPayment books a payment against an open session. Tips are not part of the bill.
func RecordPayment(db *gorm.DB, in PaymentInput) (*models.Payment, error) {
	if err := validatePayment(in); err != nil {
		return nil, err
	}

	var payment models.Payment
	err := database.WithTx(db, func(tx *gorm.DB) error {
		session, err := LockOpenSession(tx, in.MerchantID, in.SessionID)
		if err != nil {
			return err
		}

		payment = models.Payment{
			MerchantID: in.MerchantID,
			LocationID: session.LocationID,
			SessionID:  session.ID,
			Method:     in.Method,
			Amount:     in.Amount,
			Tip:        in.Tip,
			Reference:  strings.TrimSpace(in.Reference),
			TakenBy:    in.UserID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if err := RecalculateTotals(tx, session.ID); err != nil {
			return err
		}

		return RecordEvent(tx, EventOptions{
			MerchantID:  in.MerchantID,
			SessionID:   session.ID,
			UserID:      in.UserID,
			Type:        models.EventPaymentRecorded,
			Description: fmt.Sprintf("%s payment of %d", in.Method, in.Amount),
			Data:        map[string]any{"payment_id": payment.ID, "amount": in.Amount, "tip": in.Tip},
		})
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
