package admin

import (
	"context"
	"testing"
	"time"

	"restoran-pos/internal/cache"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"
	"restoran-pos/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanInvite(t *testing.T) {
	cases := []struct {
		inviter, target models.UserRole
		want            bool
	}{
		{models.RoleOwner, models.RoleOwner, true},
		{models.RoleOwner, models.RoleKitchen, true},
		{models.RoleManager, models.RoleServer, true},
		{models.RoleManager, models.RoleOwner, false},
		{models.RoleServer, models.RoleServer, false},
		{models.RolePlatformAdmin, models.RoleOwner, true},
		{models.RoleOwner, models.RolePlatformAdmin, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, canInvite(tc.inviter, tc.target), "%s invites %s", tc.inviter, tc.target)
	}
}

func TestInvitationUsable(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	accepted := at.Add(-time.Hour)

	assert.NoError(t, usable(&models.Invitation{ExpiresAt: at.Add(time.Minute)}, at))
	assert.ErrorIs(t, usable(&models.Invitation{ExpiresAt: at}, at), ErrInvitationExpired)
	assert.ErrorIs(t, usable(&models.Invitation{ExpiresAt: at.Add(time.Hour), AcceptedAt: &accepted}, at), ErrInvitationUsed)
}

func TestCreateInvitationValidation(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	_, err := CreateInvitation(db, 7, 1, models.RoleOwner, CreateInvitationRequest{Email: "nope", Role: models.RoleServer})
	assert.ErrorContains(t, err, "valid email")

	_, err = CreateInvitation(db, 7, 1, models.RoleOwner, CreateInvitationRequest{Email: "a@b.co", Role: models.RolePlatformAdmin})
	assert.ErrorContains(t, err, "role must be")

	_, err = CreateInvitation(db, 7, 1, models.RoleManager, CreateInvitationRequest{Email: "a@b.co", Role: models.RoleOwner})
	var apiErr *httpx.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInvitationSetsTokenAndExpiry(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	mock.ExpectQuery(`SELECT count\(\*\) FROM "users" WHERE email = \$1`).
		WithArgs("new@cafe.io").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "invitations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	inv, err := CreateInvitation(db, 7, 1, models.RoleOwner,
		CreateInvitationRequest{Email: " New@Cafe.io ", Role: models.RoleServer})
	require.NoError(t, err)
	assert.Equal(t, "new@cafe.io", inv.Email)
	assert.Len(t, inv.Token, 36)
	assert.Equal(t, fixed.Add(InvitationTTL), inv.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupUnknownInvitation(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "invitations" WHERE token = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := LookupInvitation(db, "6f1c")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLookupExpiredInvitation(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	fixed := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	mock.ExpectQuery(`SELECT \* FROM "invitations" WHERE token = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "email", "role", "token", "expires_at"}).
			AddRow(3, 7, "x@y.io", "server", "6f1c", fixed.Add(-time.Hour)))
	mock.ExpectQuery(`SELECT \* FROM "merchants" WHERE "merchants"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(7, "Corner Bistro"))

	_, err := LookupInvitation(db, "6f1c")
	assert.ErrorIs(t, err, ErrInvitationExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptInvitationValidatesBeforeQuerying(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	_, err := AcceptInvitation(db, "6f1c", AcceptInvitationRequest{Name: "Ana", Password: "short"})
	assert.ErrorContains(t, err, "at least 8")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMerchantSlugTaken(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "merchants" WHERE slug = \$1`).
		WithArgs("kebapci-iskender").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := CreateMerchant(db, CreateMerchantRequest{Name: "Kebapçı İskender"})
	assert.ErrorIs(t, err, ErrSlugTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMerchantRejectsBadTimezone(t *testing.T) {
	db, _ := testutil.NewMockDB(t)

	_, err := CreateMerchant(db, CreateMerchantRequest{Name: "Diner", Timezone: "Mars/Olympus"})
	assert.ErrorContains(t, err, "timezone")

	_, err = CreateMerchant(db, CreateMerchantRequest{Name: "Diner", Currency: "EURO"})
	assert.ErrorContains(t, err, "currency")
}

func TestSearchMerchantsEscapesAndClamps(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "merchants" WHERE name ILIKE \$1 OR slug ILIKE \$2`).
		WithArgs(`%50\%\_%`, `%50\%\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := SearchMerchants(db, " 50%_ ", "", 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageSize, page.PageSize)
	assert.Empty(t, page.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchMerchantsSecondPage(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "merchants"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "merchants" .*ORDER BY name ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(3, "Zest", "zest"))

	page, err := SearchMerchants(db, "", models.MerchantStatusActive, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "zest", page.Items[0].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTableWithOpenSession(t *testing.T) {
	db, mock := testutil.NewMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "dining_tables"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "merchant_id", "location_id", "label"}).AddRow(5, 7, 2, "T5"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "sessions" WHERE table_id = \$1 AND status = \$2`).
		WithArgs(5, "open").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	assert.ErrorIs(t, DeleteTable(db, 7, 5), ErrTableInUse)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTableDuplicateLabel(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	loc, label := uint(2), " t5 "

	mock.ExpectQuery(`SELECT count\(\*\) FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "dining_tables" WHERE location_id = \$1 AND LOWER\(label\) = LOWER\(\$2\)`).
		WithArgs(2, "t5", 0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err := CreateTable(db, 7, TableRequest{LocationID: &loc, Label: &label})
	assert.ErrorIs(t, err, ErrTableLabelTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type prefixRecorder struct {
	cache.Noop
	prefixes []string
}

func (r *prefixRecorder) DeletePrefix(_ context.Context, prefix string) (int, error) {
	r.prefixes = append(r.prefixes, prefix)
	return 1, nil
}

func TestSuspendMerchantDropsCache(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	rec := &prefixRecorder{}
	prev := cache.Default
	cache.Default = rec
	t.Cleanup(func() { cache.Default = prev })

	mock.ExpectQuery(`SELECT \* FROM "merchants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "currency", "timezone", "status"}).
			AddRow(7, "Kebab House", "kebab-house", "TRY", "Europe/Istanbul", "active"))
	mock.ExpectExec(`UPDATE "merchants" SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	suspended := models.MerchantStatusSuspended
	m, err := UpdateMerchant(context.Background(), db, 7, UpdateMerchantRequest{Status: &suspended})

	require.NoError(t, err)
	assert.Equal(t, models.MerchantStatusSuspended, m.Status)
	assert.Equal(t, []string{cache.MerchantPrefix(7)}, rec.prefixes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMerchantRejectsUnknownStatus(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	rec := &prefixRecorder{}
	prev := cache.Default
	cache.Default = rec
	t.Cleanup(func() { cache.Default = prev })

	mock.ExpectQuery(`SELECT \* FROM "merchants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "status"}).AddRow(7, "Kebab House", "active"))

	closed := models.MerchantStatus("closed")
	_, err := UpdateMerchant(context.Background(), db, 7, UpdateMerchantRequest{Status: &closed})

	assert.Error(t, err)
	assert.Empty(t, rec.prefixes)
	assert.NoError(t, mock.ExpectationsWereMet())
}
