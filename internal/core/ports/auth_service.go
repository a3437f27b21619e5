package ports

import (
	"context"
	"time"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// RegisterInput carries the registration form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	PasswordConfirm string
	// Origin is the scheme://host used to build links in outgoing email.
	Origin string
}

// Session is a freshly issued session credential.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// SessionInfo describes a verified session credential.
type SessionInfo struct {
	ID        string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthService covers account creation, sign-in and credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*Session, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*domain.User, *SessionInfo, error)
	Logout(ctx context.Context, session *SessionInfo) error
	ForgotPassword(ctx context.Context, email, origin string) error
	ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*Session, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, password, passwordConfirm string) (*Session, error)
	VerifyEmail(ctx context.Context, token string) (*domain.User, error)
}
