package waitlist

import (
	"testing"
	"time"

	"restoran-pos/internal/models"
	"restoran-pos/internal/pos"
	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryColumns = []string{"id", "merchant_id", "location_id", "guest_name", "party_size", "status"}

func TestAddValidates(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	_, err := Add(db, 7, AddInput{LocationID: 3, GuestName: " ", PartySize: 2})
	assert.Error(t, err)
	_, err = Add(db, 7, AddInput{LocationID: 3, GuestName: "Ayşe", PartySize: 0})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyWaitingGuest(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	fixed := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "waiting"))
	mock.ExpectExec(`UPDATE "waitlist" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	entry, err := Notify(db, 7, 5)

	require.NoError(t, err)
	assert.Equal(t, models.WaitlistNotified, entry.Status)
	assert.Equal(t, fixed, *entry.NotifiedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifyTwice(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "notified"))

	_, err := Notify(db, 7, 5)

	assert.ErrorIs(t, err, ErrAlreadyNotified)
}

func TestCancelRaceLost(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "waiting"))
	mock.ExpectExec(`UPDATE "waitlist" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := Cancel(db, 7, 5)

	assert.ErrorIs(t, err, ErrEntryNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatCancelledEntry(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "cancelled"))

	_, _, err := Seat(db, 7, 5, 42, SeatInput{})

	assert.ErrorIs(t, err, ErrEntryNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatLosesRaceBeforeOpening(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "notified"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "waitlist" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := Seat(db, 7, 5, 42, SeatInput{})

	assert.ErrorIs(t, err, ErrEntryNotActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatOccupiedTableKeepsEntryWaiting(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	table := uint(12)

	mock.ExpectQuery(`SELECT \* FROM "waitlist"`).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(5, 7, 3, "Ayşe", 4, "waiting"))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "waitlist" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id"}).AddRow(3, 7))
	mock.ExpectQuery(`SELECT \* FROM "dining_tables"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "location_id", "label", "active"}).AddRow(12, 7, 3, "T12", true))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`ROLLBACK TO SAVEPOINT`).WillReturnResult(sqlmock.NewResult(0, 0))
	// the seated status is rolled back with the failed open
	mock.ExpectRollback()

	_, _, err := Seat(db, 7, 5, 42, SeatInput{TableID: &table})

	assert.ErrorIs(t, err, pos.ErrTableOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}
