package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/onboarding-api/internal/core/domain"
	"github.com/99minutos/onboarding-api/internal/core/ports"
)

const (
	defaultResetTokenTTL        = 10 * time.Minute
	defaultVerificationTokenTTL = 24 * time.Hour

	resetPath        = "/api/v1/auth/reset-password/"
	verificationPath = "/api/v1/auth/verify-email/"
)

// AuthConfig tunes the credential lifecycle.
type AuthConfig struct {
	ResetTokenTTL        time.Duration
	VerificationTokenTTL time.Duration
	// SendVerificationEmail enqueues the verification email on registration.
	SendVerificationEmail bool
	BcryptCost            int
}

// AuthService implements registration, login, session verification and the
// password and email-verification token flows.
type AuthService struct {
	repo    ports.UserRepository
	tokens  *TokenManager
	revoker ports.SessionRevoker
	mailer  ports.Mailer
	queue   ports.MailQueue
	cfg     AuthConfig
	now     func() time.Time
	log     zerolog.Logger

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService wires the auth flows. revoker and queue may be nil, in which
// case logout only clears the client cookie and notifications are skipped.
func NewAuthService(
	repo ports.UserRepository,
	tokens *TokenManager,
	revoker ports.SessionRevoker,
	mailer ports.Mailer,
	queue ports.MailQueue,
	cfg AuthConfig,
	log zerolog.Logger,
) *AuthService {
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	if cfg.VerificationTokenTTL <= 0 {
		cfg.VerificationTokenTTL = defaultVerificationTokenTTL
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		revoker: revoker,
		mailer:  mailer,
		queue:   queue,
		cfg:     cfg,
		now:     time.Now,
		log:     log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.Session, error) {
	if in.Password != in.PasswordConfirm {
		return nil, domain.ErrPasswordMismatch
	}

	email := domain.NormalizeEmail(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	raw, digest, err := newOpaqueToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	expires := now.Add(s.cfg.VerificationTokenTTL)
	user := &domain.User{
		FirstName:                  strings.TrimSpace(in.FirstName),
		LastName:                   strings.TrimSpace(in.LastName),
		Email:                      email,
		PasswordHash:               hash,
		Role:                       domain.RoleUser,
		Status:                     domain.StatusActive,
		Preferences:                domain.DefaultPreferences(),
		EmailVerificationTokenHash: digest,
		EmailVerificationExpires:   &expires,
		CreatedAt:                  now,
		UpdatedAt:                  now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", created.ID).Msg("user registered")

	if s.cfg.SendVerificationEmail {
		s.enqueue(ports.Email{
			To:       created.Email,
			Subject:  "Verify your email address",
			Template: ports.TemplateEmailVerification,
			Data: map[string]any{
				"FirstName": created.FirstName,
				"URL":       strings.TrimRight(in.Origin, "/") + verificationPath + raw,
			},
		})
	}

	return s.issueSession(created)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.ErrMissingCredentials
	}

	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Keep the timing of unknown emails in line with wrong passwords.
			_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	now := s.now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	} else {
		user.LastLogin = &now
	}

	return s.issueSession(user)
}

// Authenticate resolves a session token into its user. Revocation lookups fail
// open: an unreachable revocation store is logged and the token is accepted.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, *ports.SessionInfo, error) {
	if token == "" {
		return nil, nil, domain.ErrNotLoggedIn
	}

	info, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, info.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", info.ID).Msg("revocation check failed, accepting session")
		} else if revoked {
			return nil, nil, domain.ErrTokenInvalid
		}
	}

	user, err := s.repo.FindByID(ctx, info.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, nil, domain.ErrSessionUserGone
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.ChangedPasswordAfter(info.IssuedAt) {
		return nil, nil, domain.ErrPasswordChanged
	}

	return user, info, nil
}

func (s *AuthService) Logout(ctx context.Context, session *ports.SessionInfo) error {
	if s.revoker == nil || session == nil {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.ID, session.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", session.UserID).Str("session_id", session.ID).Msg("session revoked")
	return nil
}

// ForgotPassword stores a reset token for the account behind email and mails
// the reset link synchronously. The token is cleared again if delivery fails.
func (s *AuthService) ForgotPassword(ctx context.Context, email, origin string) error {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrNoUserWithEmail
		}
		return fmt.Errorf("forgot password: %w", err)
	}

	raw, digest, err := newOpaqueToken()
	if err != nil {
		return err
	}
	expires := s.now().UTC().Add(s.cfg.ResetTokenTTL)
	if err := s.repo.SetPasswordResetToken(ctx, user.ID, digest, expires); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}

	err = s.mailer.Send(ctx, ports.Email{
		To:       user.Email,
		Subject:  "Your password reset token (valid for 10 min)",
		Template: ports.TemplatePasswordReset,
		Data: map[string]any{
			"FirstName": user.FirstName,
			"URL":       strings.TrimRight(origin, "/") + resetPath + raw,
			"ExpiresIn": s.cfg.ResetTokenTTL.String(),
		},
	})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("password reset email failed")
		if clearErr := s.repo.SetPasswordResetToken(ctx, user.ID, "", time.Time{}); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("failed to clear reset token")
		}
		return fmt.Errorf("%w: %v", domain.ErrMailDispatch, err)
	}

	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, passwordConfirm string) (*ports.Session, error) {
	if password != passwordConfirm {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	changedAt := domain.PasswordChangeTime(now)
	user, err := s.repo.ResetPassword(ctx, hashToken(token), now.UTC(), hash, changedAt)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("reset password: %w", err)
	}

	s.passwordChanged(user, changedAt)
	return s.issueSession(user)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID, currentPassword, password, passwordConfirm string) (*ports.Session, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return nil, domain.ErrWrongCurrentPassword
	}
	if password != passwordConfirm {
		return nil, domain.ErrPasswordMismatch
	}

	if err := s.setPassword(ctx, user, password); err != nil {
		return nil, err
	}
	return s.issueSession(user)
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	user, err := s.repo.ConsumeEmailVerificationToken(ctx, hashToken(token), s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrVerificationTokenInvalid
		}
		return nil, fmt.Errorf("verify email: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	s.enqueue(ports.Email{
		To:       user.Email,
		Subject:  "Welcome aboard!",
		Template: ports.TemplateWelcome,
		Data:     map[string]any{"FirstName": user.FirstName},
	})
	return user, nil
}

// setPassword persists a new password together with the change marker that
// makes sessions issued before it stale.
func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := s.hashPassword(password)
	if err != nil {
		return err
	}
	changedAt := domain.PasswordChangeTime(s.now())
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt

	s.passwordChanged(user, changedAt)
	return nil
}

func (s *AuthService) passwordChanged(user *domain.User, changedAt time.Time) {
	s.log.Info().Str("user_id", user.ID).Msg("password changed")
	s.enqueue(ports.Email{
		To:       user.Email,
		Subject:  "Your password was changed",
		Template: ports.TemplatePasswordChanged,
		Data: map[string]any{
			"FirstName": user.FirstName,
			"ChangedAt": changedAt.Format(time.RFC1123),
		},
	})
}

func (s *AuthService) issueSession(user *domain.User) (*ports.Session, error) {
	token, info, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	return &ports.Session{Token: token, ExpiresAt: info.ExpiresAt, User: user}, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), s.cfg.BcryptCost)
	})
	return s.dummyHash
}

func (s *AuthService) enqueue(email ports.Email) {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue(email)
}
