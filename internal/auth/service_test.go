package auth

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestRegister(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "runner@example.com", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user, tokens, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "runner@example.com",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" || user.Email != "runner@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw123456")) != nil {
		t.Fatalf("password hash does not verify")
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" || tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected tokens: %+v", tokens)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	if _, _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.c"}); err == nil {
		t.Fatalf("expected error for missing password")
	}
	if _, _, err := svc.Register(context.Background(), RegisterRequest{Password: "pw"}); err == nil {
		t.Fatalf("expected error for missing email")
	}
}

func TestLogin(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WithArgs("runner@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "runner@example.com", string(hash), time.Now()))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	user, tokens, err := svc.Login(context.Background(), LoginRequest{
		Email:    "runner@example.com",
		Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "user-1" || tokens.AccessToken == "" {
		t.Fatalf("unexpected login result")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	hash, _ := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "runner@example.com", string(hash), time.Now()))

	if _, _, err := svc.Login(context.Background(), LoginRequest{Email: "runner@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestValidateAccessToken(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	token, err := svc.signToken("user-1", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	userID, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestValidateAccessTokenExpired(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	token, err := svc.signToken("user-1", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatalf("expected expired token error")
	}
}

func TestValidateAccessTokenWrongSecret(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)
	other := NewService("other", mock)

	token, err := other.signToken("user-1", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateAccessToken(token); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestValidateRefreshToken(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	token, err := svc.signToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WithArgs(token).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(time.Hour)))

	userID, err := svc.ValidateRefreshToken(context.Background(), token)
	if err != nil {
		t.Fatalf("validate refresh: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestValidateRefreshTokenRevoked(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	token, err := svc.signToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WillReturnError(pgx.ErrNoRows)

	if _, err := svc.ValidateRefreshToken(context.Background(), token); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestValidateRefreshTokenExpiredInStore(t *testing.T) {
	mock := newMock(t)
	svc := NewService("secret", mock)

	token, err := svc.signToken("user-1", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	mock.ExpectQuery(`SELECT user_id, expires_at`).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "expires_at"}).
			AddRow("user-1", time.Now().Add(-time.Hour)))

	if _, err := svc.ValidateRefreshToken(context.Background(), token); err == nil {
		t.Fatalf("expected error for expired stored token")
	}
}
