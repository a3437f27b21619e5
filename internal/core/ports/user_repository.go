package ports

import (
	"context"
	"time"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// UserRepository defines persistence operations for users.
//
// Lookups return domain.ErrUserNotFound when nothing matches and a wrapped
// domain.ErrInvalidID when id is not a valid identifier.
type UserRepository interface {
	// Create inserts a new user. Email uniqueness is enforced by the store and
	// surfaces as domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Update replaces the mutable profile fields of an existing user.
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id string) error

	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	// UpdatePassword sets the hash and the password-changed timestamp together.
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	// SetPasswordResetToken stores a reset token hash. An empty hash clears it.
	SetPasswordResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error
	// ResetPassword atomically clears an unexpired reset token matching
	// tokenHash and stores the new password on its owner. A failed write
	// leaves the token in place.
	ResetPassword(ctx context.Context, tokenHash string, now time.Time, passwordHash string, changedAt time.Time) (*domain.User, error)
	// ConsumeEmailVerificationToken atomically clears an unexpired verification
	// token matching tokenHash, marks the email verified and returns the owner.
	ConsumeEmailVerificationToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
}
