package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operaloja/operaloja-api/internal/domain/entity"
	apphttp "github.com/operaloja/operaloja-api/internal/interfaces/http"
	pkgjwt "github.com/operaloja/operaloja-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "operaloja-test"
	testExpMin    = 60
)

type fakeProfileLoader struct {
	profiles map[string]*entity.Profile
	loadErr  error
}

func (f *fakeProfileLoader) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.profiles[id], nil
}

func loaderWith(p *entity.Profile) *fakeProfileLoader {
	loader := &fakeProfileLoader{profiles: map[string]*entity.Profile{}}
	if p != nil {
		loader.profiles[p.ID] = p
	}
	return loader
}

func conferenteValidade() *entity.Profile {
	storeID := "s1"
	return &entity.Profile{
		ID:      testUserID,
		Name:    "Conferente",
		Role:    entity.RoleConferente,
		StoreID: &storeID,
		Permissions: map[entity.Module]entity.Grant{
			entity.ModuleValidade: {Function: "conferente", StoreID: &storeID},
		},
	}
}

func buildApp(loader *fakeProfileLoader, module entity.Module) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, loader),
		apphttp.RequireModule(module),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"ok": true, "user_id": apphttp.GetUserID(c)})
		},
	)
	return app
}

func tokenFor(t *testing.T, p *entity.Profile) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, p.ID, p.Role, p.StoreID, p.IsAdmin, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestRequireModule_ComAcesso(t *testing.T) {
	p := conferenteValidade()
	app := buildApp(loaderWith(p), entity.ModuleValidade)
	resp := doRequest(t, app, tokenFor(t, p))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, testUserID, body["user_id"])
}

func TestRequireModule_SemAcesso(t *testing.T) {
	// conferente não tem concessão de acougue (nem pela tabela legada)
	p := conferenteValidade()
	app := buildApp(loaderWith(p), entity.ModuleAcougue)
	resp := doRequest(t, app, tokenFor(t, p))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MODULE_DENIED")
}

func TestRequireModule_AdminSempreAcessa(t *testing.T) {
	admin := &entity.Profile{ID: testUserID, Role: entity.RoleAdmin, IsAdmin: true}
	app := buildApp(loaderWith(admin), entity.ModuleConfiguracoes)
	resp := doRequest(t, app, tokenFor(t, admin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthMiddleware_SemHeader(t *testing.T) {
	app := buildApp(loaderWith(conferenteValidade()), entity.ModuleValidade)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := buildApp(loaderWith(conferenteValidade()), entity.ModuleValidade)
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_UsuarioRemovido(t *testing.T) {
	// token válido, mas o perfil já não existe na DB
	p := conferenteValidade()
	app := buildApp(loaderWith(nil), entity.ModuleValidade)
	resp := doRequest(t, app, tokenFor(t, p))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "UNKNOWN_USER")
}

func TestAuthMiddleware_FalhaDeInfra(t *testing.T) {
	p := conferenteValidade()
	loader := loaderWith(p)
	loader.loadErr = assert.AnError
	app := buildApp(loader, entity.ModuleValidade)
	resp := doRequest(t, app, tokenFor(t, p))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRequireAdmin(t *testing.T) {
	p := conferenteValidade()
	loader := loaderWith(p)
	app := fiber.New()
	app.Get("/admin",
		apphttp.AuthMiddleware(testJWTSecret, loader),
		apphttp.RequireAdmin(),
		func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) },
	)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", tokenFor(t, p))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestJWT_GenerateAndParse(t *testing.T) {
	storeID := "s1"
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, entity.RoleEncarregado, &storeID, false, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUserID, claims.UserID)
	assert.Equal(t, entity.RoleEncarregado, claims.Role)
	require.NotNil(t, claims.StoreID)
	assert.Equal(t, "s1", *claims.StoreID)
	assert.False(t, claims.IsAdmin)
}

func TestJWT_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, entity.RoleAdmin, nil, true, testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testJWTSecret, tok)
	assert.Error(t, err)
}

func TestJWT_SecretIncorreto(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, entity.RoleAdmin, nil, true, testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("outro-secret-completamente-diferente", tok)
	assert.Error(t, err)
}
