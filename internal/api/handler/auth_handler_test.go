package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/99minutos/onboarding-api/internal/api/middleware"
	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.Session, error) {
			if in.FirstName != "Ada" || in.Email != "ada@example.com" || in.PasswordConfirm != "password123" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.Origin != "https://app.example.com" {
				t.Fatalf("unexpected origin %q", in.Origin)
			}
			return testSession(testUser()), nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "https://app.example.com/")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"password123","passwordConfirm":"password123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	resp := decode(t, rec.Body.Bytes())
	if resp["status"] != "success" || resp["token"] != "tok.en.value" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user := resp["data"].(map[string]any)["user"].(map[string]any)
	if user["email"] != "ada@example.com" || user["firstName"] != "Ada" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks credentials: %s", rec.Body.String())
	}

	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "jwt=tok.en.value") || !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("session cookie not set: %q", cookie)
	}
}

func TestAuthHandler_Register_ServiceError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.Session, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/register",
		`{"firstName":"Ada","lastName":"Lovelace","email":"ada@example.com","password":"password123","passwordConfirm":"password123"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies, "")

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/register", `{"firstName":"Ada","email":"not-an-email","password":"short"}`)
	assertHTTPError(t, h.Register(c), http.StatusBadRequest)

	c, _ = jsonContext(e, http.MethodPost, "/api/v1/auth/register", `{bad json`)
	assertHTTPError(t, h.Register(c), http.StatusBadRequest)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			if email != "ada@example.com" || password != "password123" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return testSession(testUser()), nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"password123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode(t, rec.Body.Bytes()); resp["token"] != "tok.en.value" {
		t.Fatalf("expected token in response: %+v", resp)
	}
}

func TestAuthHandler_Login_MissingFieldsReachService(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.Session, error) {
			if email != "" || password != "" {
				t.Fatalf("unexpected credentials: %q %q", email, password)
			}
			return nil, domain.ErrMissingCredentials
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/login", `{}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.Session, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/login", `{"email":"ada@example.com","password":"nope"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("cookie must not be set on failure")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	e := newTestEcho()
	session := &ports.SessionInfo{ID: "jti-1", UserID: "u1"}
	var revoked *ports.SessionInfo
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, s *ports.SessionInfo) error {
			revoked = s
			return nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/logout", "")
	c.Set("session", session)
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if revoked != session {
		t.Fatalf("expected current session to be revoked, got %+v", revoked)
	}
	if middleware.CurrentSession(c) != session {
		t.Fatalf("session key mismatch with middleware")
	}
	cookie := rec.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "jwt=;") || !strings.Contains(cookie, "Max-Age=0") {
		t.Fatalf("expected cleared cookie, got %q", cookie)
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		forgotPasswordFn: func(_ context.Context, email, origin string) error {
			if email != "ada@example.com" {
				t.Fatalf("unexpected email %q", email)
			}
			if origin != "http://example.com" {
				t.Fatalf("unexpected origin %q", origin)
			}
			return nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ada@example.com"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec.Body.Bytes())
	if resp["message"] != "token sent to email!" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_ForgotPassword_UnknownEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		forgotPasswordFn: func(context.Context, string, string) error {
			return domain.ErrNoUserWithEmail
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, _ := jsonContext(e, http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"ghost@example.com"}`)
	if err := h.ForgotPassword(c); !errors.Is(err, domain.ErrNoUserWithEmail) {
		t.Fatalf("expected ErrNoUserWithEmail, got %v", err)
	}
}

func TestAuthHandler_ResetPassword_PassesToken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetPasswordFn: func(_ context.Context, token, password, confirm string) (*ports.Session, error) {
			if token != "rawtoken" || password != "newpassword1" || confirm != "newpassword1" {
				t.Fatalf("unexpected args: %s %s %s", token, password, confirm)
			}
			return testSession(testUser()), nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPatch, "/", `{"password":"newpassword1","passwordConfirm":"newpassword1"}`)
	c.SetParamNames("token")
	c.SetParamValues("rawtoken")
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdatePassword_RequiresUser(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{}, testCookies, "")

	c, _ := jsonContext(e, http.MethodPatch, "/api/v1/auth/update-password",
		`{"currentPassword":"password123","password":"newpassword1","passwordConfirm":"newpassword1"}`)
	if err := h.UpdatePassword(c); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_UsesCurrentUser(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		updatePasswordFn: func(_ context.Context, userID, current, password, confirm string) (*ports.Session, error) {
			if userID != "u1" || current != "password123" || password != "newpassword1" {
				t.Fatalf("unexpected args: %s %s %s", userID, current, password)
			}
			return testSession(testUser()), nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodPatch, "/api/v1/auth/update-password",
		`{"currentPassword":"password123","password":"newpassword1","passwordConfirm":"newpassword1"}`)
	withUser(c, testUser())
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "jwt=tok.en.value") {
		t.Fatalf("expected fresh session cookie")
	}
}

func TestAuthHandler_VerifyEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		verifyEmailFn: func(_ context.Context, token string) (*domain.User, error) {
			if token != "verify-me" {
				t.Fatalf("unexpected token %q", token)
			}
			u := testUser()
			u.EmailVerified = true
			return u, nil
		},
	}
	h := NewAuthHandler(stub, testCookies, "")

	c, rec := jsonContext(e, http.MethodGet, "/", "")
	c.SetParamNames("token")
	c.SetParamValues("verify-me")
	if err := h.VerifyEmail(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decode(t, rec.Body.Bytes())
	user := resp["data"].(map[string]any)["user"].(map[string]any)
	if resp["message"] != "email verified" || user["emailVerified"] != true {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
