package domain

import (
	"testing"
	"time"
)

func TestUser_ChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	u := &User{}
	if u.ChangedPasswordAfter(issued) {
		t.Fatalf("user without a password change must not invalidate sessions")
	}

	changed := PasswordChangeTime(issued.Add(10 * time.Second))
	u.PasswordChangedAt = &changed
	if !u.ChangedPasswordAfter(issued) {
		t.Fatalf("session issued before the change must be stale")
	}

	if u.ChangedPasswordAfter(issued.Add(10 * time.Second)) {
		t.Fatalf("session issued right after the change must be valid")
	}
}

func TestUser_ChangedPasswordAfter_SubSecond(t *testing.T) {
	issued := time.Date(2026, 1, 10, 12, 0, 0, 200*int(time.Millisecond), time.UTC)
	changed := PasswordChangeTime(issued.Add(1300 * time.Millisecond))
	u := &User{PasswordChangedAt: &changed}

	if !u.ChangedPasswordAfter(issued) {
		t.Fatalf("session issued 1.3s before the change must be stale")
	}
	if !u.ChangedPasswordAfter(changed.Add(-time.Millisecond)) {
		t.Fatalf("session issued 1ms before the change must be stale")
	}
	if u.ChangedPasswordAfter(changed) {
		t.Fatalf("session issued in the same millisecond must be valid")
	}
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Role: RoleUser}
	if u.HasRole(RoleAdmin) {
		t.Fatalf("user must not match admin")
	}
	if !u.HasRole(RoleAdmin, RoleUser) {
		t.Fatalf("user must match allow-list containing user")
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAdmin.Valid() {
		t.Fatalf("known roles must be valid")
	}
	if Role("guide").Valid() {
		t.Fatalf("unknown role must be invalid")
	}
}

func TestPreferences_Merge(t *testing.T) {
	p := DefaultPreferences().Merge(ThemeDark, "")
	if p.Theme != ThemeDark || p.Layout != LayoutDefault {
		t.Fatalf("unexpected merge result: %+v", p)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalized email: %q", got)
	}
}
