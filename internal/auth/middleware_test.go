package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"restoran-pos/internal/config"
	"restoran-pos/internal/httpx"
	"restoran-pos/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         strings.Repeat("k", 32),
		SessionCookieName: "pos_session",
		SessionTTL:        time.Hour,
	}
}

func uintPtr(v uint) *uint { return &v }

func newApp(cfg *config.Config, handlers ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.NewErrorMapper().ErrorHandler()})
	chain := append([]fiber.Handler{JWTMiddleware(cfg)}, handlers...)
	chain = append(chain, func(c *fiber.Ctx) error {
		return httpx.OK(c, fiber.StatusOK, fiber.Map{"merchant_id": MerchantID(c), "user_id": UserID(c)})
	})
	app.Get("/x", chain...)
	return app
}

func token(t *testing.T, cfg *config.Config, u *models.User) string {
	t.Helper()
	tok, err := GenerateToken(cfg.JWTSecret, u, cfg.SessionTTL)
	require.NoError(t, err)
	return tok
}

func TestTokenRoundTrip(t *testing.T) {
	cfg := testConfig()
	u := &models.User{ID: 4, Email: "a@b.c", Role: models.RoleServer, MerchantID: uintPtr(9)}

	claims, err := ParseToken(cfg.JWTSecret, token(t, cfg, u))
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.UserID)
	assert.Equal(t, models.RoleServer, claims.Role)
	require.NotNil(t, claims.MerchantID)
	assert.Equal(t, uint(9), *claims.MerchantID)

	_, err = ParseToken(strings.Repeat("z", 32), token(t, cfg, u))
	assert.Error(t, err)
}

func TestJWTMiddlewareRejectsMissingToken(t *testing.T) {
	app := newApp(testConfig())
	resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTMiddlewareAcceptsCookie(t *testing.T) {
	cfg := testConfig()
	app := newApp(cfg, MerchantScope())
	u := &models.User{ID: 1, Role: models.RoleOwner, MerchantID: uintPtr(3)}

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Cookie", cfg.SessionCookieName+"="+token(t, cfg, u))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	cfg := testConfig()
	app := newApp(cfg, RequireRole(models.RoleOwner, models.RoleManager))

	cases := []struct {
		role models.UserRole
		want int
	}{
		{models.RoleOwner, fiber.StatusOK},
		{models.RoleServer, fiber.StatusForbidden},
		{models.RolePlatformAdmin, fiber.StatusOK},
		{models.RolePlatformSupport, fiber.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token(t, cfg, &models.User{ID: 1, Role: tc.role, MerchantID: uintPtr(1)}))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.role)
	}
}

func TestMerchantScopeForPlatformPersonnel(t *testing.T) {
	cfg := testConfig()
	app := newApp(cfg, MerchantScope())
	tok := token(t, cfg, &models.User{ID: 1, Role: models.RolePlatformSupport})

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set(MerchantHeader, "12")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMerchantScopeRejectsUnboundStaff(t *testing.T) {
	cfg := testConfig()
	app := newApp(cfg, MerchantScope())

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, cfg, &models.User{ID: 1, Role: models.RoleServer}))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
