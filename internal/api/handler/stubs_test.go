package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/onboarding-api/internal/api/middleware"
	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.Session, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.Session, error)
	logoutFn         func(ctx context.Context, session *ports.SessionInfo) error
	forgotPasswordFn func(ctx context.Context, email, origin string) error
	resetPasswordFn  func(ctx context.Context, token, password, passwordConfirm string) (*ports.Session, error)
	updatePasswordFn func(ctx context.Context, userID, current, password, passwordConfirm string) (*ports.Session, error)
	verifyEmailFn    func(ctx context.Context, token string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.User, *ports.SessionInfo, error) {
	return nil, nil, domain.ErrNotLoggedIn
}

func (s *stubAuthService) Logout(ctx context.Context, session *ports.SessionInfo) error {
	return s.logoutFn(ctx, session)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email, origin string) error {
	return s.forgotPasswordFn(ctx, email, origin)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*ports.Session, error) {
	return s.resetPasswordFn(ctx, token, password, passwordConfirm)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, password, passwordConfirm string) (*ports.Session, error) {
	return s.updatePasswordFn(ctx, userID, current, password, passwordConfirm)
}

func (s *stubAuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	return s.verifyEmailFn(ctx, token)
}

type stubUserService struct {
	getFn                func(ctx context.Context, id string) (*domain.User, error)
	updateProfileFn      func(ctx context.Context, id string, in ports.ProfileUpdate) (*domain.User, error)
	deactivateFn         func(ctx context.Context, id string) error
	completeOnboardingFn func(ctx context.Context, id string, in ports.OnboardingInput) (*domain.User, error)
	updatePreferencesFn  func(ctx context.Context, id, theme, layout string) (*domain.User, error)
	uploadPhotoFn        func(ctx context.Context, id string, photo ports.PhotoUpload) (*domain.User, error)
	listFn               func(ctx context.Context) ([]*domain.User, error)
	adminUpdateFn        func(ctx context.Context, id string, in ports.AdminUserUpdate) (*domain.User, error)
	deleteFn             func(ctx context.Context, id string) error
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, id string, in ports.ProfileUpdate) (*domain.User, error) {
	return s.updateProfileFn(ctx, id, in)
}

func (s *stubUserService) Deactivate(ctx context.Context, id string) error {
	return s.deactivateFn(ctx, id)
}

func (s *stubUserService) CompleteOnboarding(ctx context.Context, id string, in ports.OnboardingInput) (*domain.User, error) {
	return s.completeOnboardingFn(ctx, id, in)
}

func (s *stubUserService) UpdatePreferences(ctx context.Context, id, theme, layout string) (*domain.User, error) {
	return s.updatePreferencesFn(ctx, id, theme, layout)
}

func (s *stubUserService) UploadPhoto(ctx context.Context, id string, photo ports.PhotoUpload) (*domain.User, error) {
	return s.uploadPhotoFn(ctx, id, photo)
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) AdminUpdate(ctx context.Context, id string, in ports.AdminUserUpdate) (*domain.User, error) {
	return s.adminUpdateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

var testCookies = CookieConfig{TTL: 24 * time.Hour}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testUser() *domain.User {
	return &domain.User{
		ID:           "u1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
		Preferences:  domain.DefaultPreferences(),
	}
}

func withUser(c echo.Context, u *domain.User) {
	middleware.SetCurrentUser(c, u)
}

func testSession(u *domain.User) *ports.Session {
	return &ports.Session{Token: "tok.en.value", ExpiresAt: time.Now().Add(time.Hour), User: u}
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T (%v)", err, err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}
