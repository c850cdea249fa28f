package auth

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v2"
	"golang.org/x/crypto/bcrypt"
)

func testApp(t *testing.T, mock pgxmock.PgxPoolIface) (*fiber.App, *Service) {
	t.Helper()
	app := fiber.New()
	svc := NewService("secret", mock)
	RegisterRoutes(app.Group("/auth"), svc)
	return app, svc
}

func TestRegisterRoute(t *testing.T) {
	mock := newMock(t)
	app, _ := testApp(t, mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body := `{"email":"runner@example.com","password":"pw123456"}`
	req := httptest.NewRequest("POST", "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload struct {
		User   User          `json:"user"`
		Tokens TokenResponse `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.User.Email != "runner@example.com" || payload.Tokens.AccessToken == "" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.User.PasswordHash != "" {
		t.Fatalf("password hash must not serialize")
	}
}

func TestLoginRoute(t *testing.T) {
	mock := newMock(t)
	app, _ := testApp(t, mock)

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "runner@example.com", string(hash), time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body := `{"email":"runner@example.com","password":"pw123456"}`
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
}

func TestLoginRouteMissingFields(t *testing.T) {
	mock := newMock(t)
	app, _ := testApp(t, mock)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"email":"a@b.c"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRefreshRoute(t *testing.T) {
	mock := newMock(t)
	app, svc := testApp(t, mock)

	token, err := svc.signToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(time.Hour)))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body := `{"refresh_token":"` + token + `"}`
	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRefreshRouteInvalidToken(t *testing.T) {
	mock := newMock(t)
	app, _ := testApp(t, mock)

	req := httptest.NewRequest("POST", "/auth/refresh", strings.NewReader(`{"refresh_token":"garbage"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestVerifyRoute(t *testing.T) {
	mock := newMock(t)
	app, svc := testApp(t, mock)

	token, err := svc.signToken("user-1", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/jwt/verify", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user id: %v", payload)
	}
}

func TestVerifyRouteMissingToken(t *testing.T) {
	mock := newMock(t)
	app, _ := testApp(t, mock)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth/jwt/verify", nil))
	if err != nil {
		t.Fatalf("test request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
