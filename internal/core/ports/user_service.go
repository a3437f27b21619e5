package ports

import (
	"context"
	"io"

	"github.com/99minutos/onboarding-api/internal/core/domain"
)

// ProfileUpdate carries the self-service profile fields. Nil means unchanged.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Photo     *string
}

// AdminUserUpdate carries the fields an administrator may change.
type AdminUserUpdate struct {
	ProfileUpdate
	Role        *domain.Role
	Status      *domain.AccountStatus
	IsOnboarded *bool
}

// OnboardingInput is the payload of the onboarding wizard.
type OnboardingInput struct {
	Company domain.Company
	Theme   string
	Layout  string
}

// PhotoUpload is a profile photo received from the client.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UserService defines profile and administration use cases.
type UserService interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileUpdate) (*domain.User, error)
	Deactivate(ctx context.Context, id string) error
	CompleteOnboarding(ctx context.Context, id string, in OnboardingInput) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id, theme, layout string) (*domain.User, error)
	UploadPhoto(ctx context.Context, id string, photo PhotoUpload) (*domain.User, error)

	List(ctx context.Context) ([]*domain.User, error)
	AdminUpdate(ctx context.Context, id string, in AdminUserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
