package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/relief-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/relief-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "relief-ledger-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con AuthMiddleware + RequireRole.
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenFor genera un JWT con el usuario y rol indicados.
func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, userID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp("admin")
	resp := doGet(t, app, "/protected", tokenFor(t, testUserID, "admin"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole_UsuarioBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp("admin")
	resp := doGet(t, app, "/protected", tokenFor(t, testUserID, "user"))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRolEsUsuarioComun(t *testing.T) {
	app := buildTestApp("user")
	resp := doGet(t, app, "/protected", tokenFor(t, testUserID, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode, "token sin rol se trata como user")
}

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp("admin")
	resp := doGet(t, app, "/protected", "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp("admin")
	resp := doGet(t, app, "/protected", "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_ExtraeActor(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		a := apphttp.GetActor(c)
		return c.JSON(fiber.Map{"user_id": a.UserID, "role": a.Role})
	})

	resp := doGet(t, app, "/me", tokenFor(t, testUserID, "admin"))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "admin", body["role"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireWarehouseOwner
// ──────────────────────────────────────────────────────────────────────────────

type fakeOwners struct {
	owners map[string]string
	err    error
}

func (f fakeOwners) IsOwner(_ context.Context, warehouseID, userID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.owners[warehouseID] == userID, nil
}

func buildOwnerApp(checker fakeOwners) *fiber.App {
	app := fiber.New()
	app.Get("/warehouses/:id",
		apphttp.AuthMiddleware(testJWTSecret),
		apphttp.RequireWarehouseOwner(checker),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) },
	)
	return app
}

func TestRequireWarehouseOwner(t *testing.T) {
	checker := fakeOwners{owners: map[string]string{"w1": "u1"}}

	cases := []struct {
		name   string
		app    *fiber.App
		user   string
		role   string
		status int
	}{
		{"dueño pasa", buildOwnerApp(checker), "u1", "user", http.StatusOK},
		{"no dueño 403", buildOwnerApp(checker), "u2", "user", http.StatusForbidden},
		{"admin pasa", buildOwnerApp(checker), "u2", "admin", http.StatusOK},
		{"falla de DB 503", buildOwnerApp(fakeOwners{err: errors.New("db caída")}), "u1", "user", http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doGet(t, tc.app, "/warehouses/w1", tokenFor(t, tc.user, tc.role))
			defer resp.Body.Close()
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

type failingUsers struct{}

func (failingUsers) Upsert(context.Context, string) error { return errors.New("db caída") }

type countingUsers struct{ calls int }

func (u *countingUsers) Upsert(context.Context, string) error {
	u.calls++
	return nil
}

func TestTrackUsers_RegistraUnaVezPorUsuario(t *testing.T) {
	users := &countingUsers{}
	app := fiber.New()
	app.Get("/x", apphttp.AuthMiddleware(testJWTSecret), apphttp.TrackUsers(users), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 3; i++ {
		resp := doGet(t, app, "/x", tokenFor(t, testUserID, "user"))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, 1, users.calls)
}

func TestTrackUsers_FalloDelRegistro_Retorna503(t *testing.T) {
	app := fiber.New()
	app.Get("/x", apphttp.AuthMiddleware(testJWTSecret), apphttp.TrackUsers(failingUsers{}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	resp := doGet(t, app, "/x", tokenFor(t, testUserID, "user"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
