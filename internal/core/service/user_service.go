package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

// MaxPhotoSize is the largest profile photo accepted, in bytes.
const MaxPhotoSize = 5 << 20

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UserService implements profile management and user administration.
type UserService struct {
	repo    ports.UserRepository
	storage ports.PhotoStorage
	now     func() time.Time
	log     zerolog.Logger
}

func NewUserService(repo ports.UserRepository, storage ports.PhotoStorage, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, storage: storage, now: time.Now, log: log}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ports.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyProfile(user, in)
	return s.save(ctx, user)
}

// Deactivate moves the account to the deactivated state. The document stays.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !user.Status.CanTransitionTo(domain.StatusDeactivated) {
		return domain.ErrInvalidStatusTransition
	}
	user.Status = domain.StatusDeactivated
	if _, err := s.save(ctx, user); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("account deactivated")
	return nil
}

func (s *UserService) CompleteOnboarding(ctx context.Context, id string, in ports.OnboardingInput) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	company := in.Company
	company.Name = strings.TrimSpace(company.Name)
	company.Industry = strings.TrimSpace(company.Industry)
	user.Company = &company
	user.Preferences = domain.DefaultPreferences().Merge(in.Theme, in.Layout)
	user.IsOnboarded = true

	updated, err := s.save(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", id).Msg("onboarding completed")
	return updated, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, id, theme, layout string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Preferences = user.Preferences.Merge(theme, layout)
	return s.save(ctx, user)
}

// UploadPhoto stores a new profile photo and points the profile at it. The
// previous object is removed once the profile references the new one.
func (s *UserService) UploadPhoto(ctx context.Context, id string, photo ports.PhotoUpload) (*domain.User, error) {
	ext, ok := photoExtensions[photo.ContentType]
	if !ok || photo.Size <= 0 || photo.Size > MaxPhotoSize {
		return nil, domain.ErrInvalidPhoto
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("users/%s/%s%s", user.ID, uuid.NewString(), ext)
	url, err := s.storage.Upload(ctx, key, photo.ContentType, photo.Body)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	previous := user.PhotoKey
	user.Photo = url
	user.PhotoKey = key
	updated, err := s.save(ctx, user)
	if err != nil {
		s.removePhoto(ctx, key)
		return nil, err
	}

	if previous != "" {
		s.removePhoto(ctx, previous)
	}
	return updated, nil
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) AdminUpdate(ctx context.Context, id string, in ports.AdminUserUpdate) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProfile(user, in.ProfileUpdate)
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		user.Role = *in.Role
	}
	if in.Status != nil && *in.Status != user.Status {
		if !user.Status.CanTransitionTo(*in.Status) {
			return nil, domain.ErrInvalidStatusTransition
		}
		user.Status = *in.Status
	}
	if in.IsOnboarded != nil {
		user.IsOnboarded = *in.IsOnboarded
	}

	return s.save(ctx, user)
}

// Delete removes the user document permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("user deleted")

	if user.PhotoKey != "" {
		s.removePhoto(ctx, user.PhotoKey)
	}
	return nil
}

func (s *UserService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

func (s *UserService) removePhoto(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete photo")
	}
}

func applyProfile(user *domain.User, in ports.ProfileUpdate) {
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := domain.NormalizeEmail(*in.Email)
		if email != user.Email {
			user.Email = email
			user.EmailVerified = false
		}
	}
	if in.Phone != nil {
		user.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Photo != nil {
		user.Photo = strings.TrimSpace(*in.Photo)
		user.PhotoKey = ""
	}
}
