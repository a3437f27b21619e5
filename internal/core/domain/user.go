package domain

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	LayoutDefault   = "default"
	LayoutAnalytics = "analytics"
	LayoutMinimal   = "minimal"
)

// Company is the business profile captured during onboarding.
type Company struct {
	Name     string `bson:"name"`
	Industry string `bson:"industry"`
	Size     string `bson:"size"`
}

// Preferences holds dashboard display settings.
type Preferences struct {
	Theme  string `bson:"theme"`
	Layout string `bson:"layout"`
}

// DefaultPreferences returns the preferences a new account starts with.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, Layout: LayoutDefault}
}

// Merge overlays the non-empty fields of patch onto p.
func (p Preferences) Merge(theme, layout string) Preferences {
	if theme != "" {
		p.Theme = theme
	}
	if layout != "" {
		p.Layout = layout
	}
	return p
}

// User is the single persisted identity of the application.
// Credential and token fields never leave the service boundary.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Photo     string
	PhotoKey  string

	PasswordHash string
	Role         Role
	Status       AccountStatus

	EmailVerified bool
	IsOnboarded   bool
	Company       *Company
	Preferences   Preferences

	PasswordChangedAt          *time.Time
	PasswordResetTokenHash     string
	PasswordResetExpires       *time.Time
	EmailVerificationTokenHash string
	EmailVerificationExpires   *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// HasRole reports whether the user holds one of roles.
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// ChangedPasswordAfter reports whether the password was changed after a
// session issued at issuedAt. Both timestamps carry millisecond resolution,
// so a session issued in the same millisecond as the change stays valid.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Truncate(time.Millisecond).Before(u.PasswordChangedAt.Truncate(time.Millisecond))
}

// PasswordChangeTime returns the timestamp recorded for a password change made
// at now, truncated to the millisecond resolution of the store.
func PasswordChangeTime(now time.Time) time.Time {
	return now.UTC().Truncate(time.Millisecond)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
