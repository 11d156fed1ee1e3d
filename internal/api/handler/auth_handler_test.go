package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/yao-todolist/todo-api/internal/core/domain"
	"github.com/yao-todolist/todo-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string) (int64, error)
	loginFn    func(ctx context.Context, name, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string) (int64, error) {
	return s.registerFn(ctx, name, email, password)
}

func (s *stubAuthService) Login(ctx context.Context, name, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, name, email, password)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (int64, error) {
			if name != "Alice" || email != "a@x.com" || password != "pw123" {
				t.Fatalf("unexpected args: %s %s %s", name, email, password)
			}
			return 1, nil
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/register", `{"name":"Alice","email":"a@x.com","password":"pw123"}`)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["success"] != true || resp["userId"] != float64(1) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_MissingField(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/register", `{"name":"Alice","email":"a@x.com"}`)
	_ = handler.Register(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["success"] != false || resp["message"] != "password is required" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/register", "not-json")
	_ = handler.Register(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_StoreErrorIsGeneric(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, name, email, password string) (int64, error) {
			return 0, errors.New("connection refused: 10.0.0.3:5432")
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/register", `{"name":"Alice","email":"a@x.com","password":"pw123"}`)
	_ = handler.Register(c)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.3") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, name, email, password string) (*ports.LoginResult, error) {
			if name != "Alice" || email != "a@x.com" || password != "pw123" {
				t.Fatalf("unexpected args: %s %s %s", name, email, password)
			}
			return &ports.LoginResult{Token: "dummy-jwt-token", UserName: "Alice", UserID: 1}, nil
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/login", `{"name":"Alice","email":"a@x.com","password":"pw123"}`)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody(t, rec)
	if resp["success"] != true || resp["token"] != "dummy-jwt-token" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if resp["userName"] != "Alice" || resp["userId"] != float64(1) {
		t.Fatalf("unexpected user fields: %+v", resp)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"not found", domain.ErrUserNotFound, http.StatusUnauthorized, "user not found"},
		{"wrong password", domain.ErrWrongPassword, http.StatusUnauthorized, "wrong password"},
		{"uniform", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"store", errors.New("boom"), http.StatusInternalServerError, "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, name, email, password string) (*ports.LoginResult, error) {
					return nil, tt.err
				},
			}
			handler := NewAuthHandler(stub, zerolog.Nop())

			c, rec := postJSON(e, "/api/login", `{"name":"Alice","email":"a@x.com","password":"bad"}`)
			_ = handler.Login(c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			resp := decodeBody(t, rec)
			if resp["success"] != false || resp["message"] != tt.message {
				t.Fatalf("unexpected payload: %+v", resp)
			}
		})
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, name, email, password string) (*ports.LoginResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, zerolog.Nop())

	c, rec := postJSON(e, "/api/login", "{")
	_ = handler.Login(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
