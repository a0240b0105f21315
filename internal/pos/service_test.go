package pos

import (
	"errors"
	"testing"
	"time"

	"restoran-pos/internal/models"
	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow       = time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)
	sessionColumns = []string{"id", "public_id", "merchant_id", "location_id", "table_id", "guest_count", "status", "opened_at", "subtotal", "tax", "total", "paid"}
	orderColumns   = []string{"id", "merchant_id", "session_id", "wave", "status", "subtotal", "tax", "total"}
)

func init() {
	now = func() time.Time { return fixedNow }
}

func openSessionRow(id uint) *sqlmock.Rows {
	return sqlmock.NewRows(sessionColumns).
		AddRow(id, "8b0f6a4e-2f1c-4f57-9d43-5d1f0c7a9e10", 7, 3, 12, 2, "open", fixedNow, 0, 0, 0, 0)
}

func TestOpenSessionRejectsZeroGuests(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	_, err := OpenSession(db, OpenSessionInput{MerchantID: 7, LocationID: 3, GuestCount: 0})

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenSessionRejectsOccupiedTable(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	table := uint(12)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "name", "tax_rate_bps"}).AddRow(3, 7, "Downtown", 825))
	mock.ExpectQuery(`SELECT \* FROM "dining_tables"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "location_id", "label", "active"}).AddRow(12, 7, 3, "T12", true))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := OpenSession(db, OpenSessionInput{MerchantID: 7, LocationID: 3, TableID: &table, GuestCount: 2})

	assert.ErrorIs(t, err, ErrTableOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSeatWithItemsIsRejected(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectQuery(`SELECT \* FROM "seats"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "number"}).AddRow(5, 1, 2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := RemoveSeat(db, 7, 1, 5, 42)

	assert.ErrorIs(t, err, ErrSeatHasItems)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSeatOnClosedSession(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(1, "8b0f6a4e-2f1c-4f57-9d43-5d1f0c7a9e10", 7, 3, 12, 2, "closed", fixedNow, 0, 0, 0, 0))
	mock.ExpectRollback()

	err := RemoveSeat(db, 7, 1, 5, 42)

	assert.ErrorIs(t, err, ErrSessionNotOpen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFireEmptyWave(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "held", 0, 0, 0))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := FireWave(db, 7, 1, 1, 42)

	assert.ErrorIs(t, err, ErrEmptyWave)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFireWaveAlreadySent(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "sent", 0, 0, 0))
	mock.ExpectRollback()

	_, err := FireWave(db, 7, 1, 1, 42)

	assert.ErrorIs(t, err, ErrWaveNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFireWaveLosesRace(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "held", 0, 0, 0))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "name", "status"}).AddRow(30, 20, "Soup", "held"))
	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := FireWave(db, 7, 1, 1, 42)

	assert.ErrorIs(t, err, ErrWaveNotHeld)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceWaveRejectsSkip(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "sent", 0, 0, 0))
	mock.ExpectRollback()

	_, err := AdvanceWave(db, 7, 20, models.WaveReady, 42)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceWaveUnknownOrder(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "orders"`).WillReturnRows(sqlmock.NewRows(orderColumns))
	mock.ExpectRollback()

	_, err := AdvanceWave(db, 7, 99, models.WaveCooking, 42)

	assert.ErrorIs(t, err, ErrWaveNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoidItemRequiresReason(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	_, err := VoidItem(db, 7, 30, 42, "   ")

	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoidItemTwice(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "order_id", "session_id", "name", "voided"}).
			AddRow(30, 7, 20, 1, "Soup", true))
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectRollback()

	_, err := VoidItem(db, 7, 30, 42, "guest changed mind")

	assert.ErrorIs(t, err, ErrItemAlreadyVoided)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefireHeldItem(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "order_id", "session_id", "name", "voided", "status"}).
			AddRow(30, 7, 20, 1, "Soup", false, "held"))
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "held", 0, 0, 0))
	mock.ExpectRollback()

	_, err := RefireItem(db, 7, 30, 42, "dropped")

	assert.ErrorIs(t, err, ErrItemNotFired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseSessionWithBalanceDue(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).WillReturnRows(openSessionRow(1))
	// RecalculateTotals
	mock.ExpectQuery(`SELECT "id","location_id" FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "location_id"}).AddRow(1, 3))
	mock.ExpectQuery(`SELECT "id","tax_rate_bps" FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tax_rate_bps"}).AddRow(3, 0))
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(20, 7, 1, 1, "served", 1000, 0, 1000))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "line_total", "voided"}).AddRow(30, 20, 1000, false))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(400))
	mock.ExpectExec(`UPDATE "sessions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows(sessionColumns).
			AddRow(1, "8b0f6a4e-2f1c-4f57-9d43-5d1f0c7a9e10", 7, 3, 12, 2, "open", fixedNow, 1000, 0, 1000, 400))
	mock.ExpectRollback()

	_, err := CloseSession(db, 7, 1, 42, false)

	assert.ErrorIs(t, err, ErrBalanceDue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatePayment(t *testing.T) {
	ok := PaymentInput{Method: models.PaymentMethodCard, Amount: 1500, Tip: 200}
	require.NoError(t, validatePayment(ok))

	bad := []PaymentInput{
		{Method: "crypto", Amount: 100},
		{Method: models.PaymentMethodCash, Amount: 0},
		{Method: models.PaymentMethodCash, Amount: 100, Tip: -1},
	}
	for _, in := range bad {
		assert.ErrorIs(t, validatePayment(in), ErrValidation, "%+v", in)
	}
}

func TestValidateItems(t *testing.T) {
	assert.ErrorIs(t, validateItems(nil), ErrValidation)
	assert.ErrorIs(t, validateItems([]ItemInput{{MenuItemID: 1, Quantity: 0}}), ErrValidation)
	assert.ErrorIs(t, validateItems([]ItemInput{{Quantity: 1}}), ErrValidation)
	assert.NoError(t, validateItems([]ItemInput{{MenuItemID: 1, Quantity: 2}}))
}

func TestValidationMessageSurvives(t *testing.T) {
	err := invalid("guest_count must be at least 1")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "guest_count must be at least 1", err.Error())
}
