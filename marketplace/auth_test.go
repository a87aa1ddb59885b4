package marketplace

import (
	"errors"
	"strings"
	"testing"
)

func TestSignupLoginFlow(t *testing.T) {
	store := newStore(t)
	auth := NewAuthService(store)

	user, err := auth.Signup("Alice", "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" {
		t.Errorf("signup user has no id")
	}

	// Signup logs the user in.
	current, err := auth.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != user.ID {
		t.Errorf("current = %+v, want %+v", current, user)
	}

	// The persisted session must not contain the password hash.
	raw, err := store.Get(keySession)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if strings.Contains(string(raw), "passwordHash") || strings.Contains(string(raw), "s3cret") {
		t.Errorf("session blob leaks credentials: %s", raw)
	}

	if err := auth.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Current(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("current after logout = %v, want ErrNotLoggedIn", err)
	}

	// Signup survives a "restart": a fresh service over the same store can
	// log the account in.
	again := NewAuthService(store)
	if _, err := again.Login("alice@example.com", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth := NewAuthService(newStore(t))
	if _, err := auth.Signup("Alice", "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := auth.Login("alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := auth.Login("nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignupRejectsDuplicateEmail(t *testing.T) {
	auth := NewAuthService(newStore(t))
	if _, err := auth.Signup("Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, err := auth.Signup("Other Alice", "ALICE@example.com", "pw2")
	if !IsValidation(err) {
		t.Errorf("duplicate email = %v, want ValidationError", err)
	}
}

func TestSignupValidatesRequiredFields(t *testing.T) {
	auth := NewAuthService(newStore(t))
	_, err := auth.Signup("", "", "")
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("empty signup = %v, want ValidationError", err)
	}
	for _, field := range []string{"name", "email", "password"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("field %q not flagged: %v", field, ve.Fields)
		}
	}
}

func TestUpdateProfile(t *testing.T) {
	auth := NewAuthService(newStore(t))
	if _, err := auth.Signup("Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	user, err := auth.UpdateProfile("Alicia", "me.jpg")
	if err != nil {
		t.Fatalf("updateProfile: %v", err)
	}
	if user.Name != "Alicia" || user.ProfileImage != "me.jpg" {
		t.Errorf("updated user = %+v", user)
	}

	current, err := auth.Current()
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.Name != "Alicia" {
		t.Errorf("session name = %q, want Alicia", current.Name)
	}
}

func TestProfileStore(t *testing.T) {
	profiles := NewProfileService(newStore(t))

	// No profile yet is an empty profile.
	p, err := profiles.Load("u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Phone != "" || p.Address != "" {
		t.Errorf("fresh profile = %+v, want empty", p)
	}

	if err := profiles.Save("u1", Profile{Phone: "555-0101", Address: "12 Shelf St"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err = profiles.Load("u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Phone != "555-0101" || p.Address != "12 Shelf St" {
		t.Errorf("loaded profile = %+v", p)
	}

	// Profiles are keyed per user.
	other, err := profiles.Load("u2")
	if err != nil {
		t.Fatalf("load u2: %v", err)
	}
	if other.Phone != "" {
		t.Errorf("u2 sees u1's profile: %+v", other)
	}
}
