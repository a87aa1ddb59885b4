package marketplace

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Storage keys for the credential list and the active session.
const (
	keyUsers   = "users"
	keySession = "user"
)

// credential is the stored shape of an account. Unlike User it carries the
// bcrypt hash; it never crosses the service boundary.
type credential struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	ProfileImage string `json:"profileImage,omitempty"`
}

func (c credential) user() User {
	return User{ID: c.ID, Name: c.Name, Email: c.Email, ProfileImage: c.ProfileImage}
}

// AuthService is the credential-store collaborator: signup, login and the
// persisted session. Passwords are verified against salted bcrypt hashes and
// the session blob never contains the hash.
type AuthService struct {
	store *Store
	users *Collection[credential]
}

// NewAuthService binds the service to its storage keys.
func NewAuthService(store *Store) *AuthService {
	return &AuthService{store: store, users: NewCollection[credential](store, keyUsers)}
}

// Signup registers a new account and logs it in. Email must be unique across
// accounts on the device.
func (s *AuthService) Signup(name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "required"
	}
	if email == "" {
		fields["email"] = "required"
	}
	if password == "" {
		fields["password"] = "required"
	}
	if len(fields) > 0 {
		return User{}, &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	cred := credential{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	err = s.users.Mutate(func(items []credential) ([]credential, error) {
		for _, it := range items {
			if strings.EqualFold(it.Email, email) {
				return nil, &ValidationError{Fields: map[string]string{"email": "already registered"}}
			}
		}
		return append(items, cred), nil
	})
	if err != nil {
		return User{}, err
	}

	user := cred.user()
	if err := s.saveSession(user); err != nil {
		return User{}, err
	}
	zap.S().Infow("user signed up", "id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies email and password against the credential store and, on
// success, persists the session profile (without the hash).
func (s *AuthService) Login(email, password string) (User, error) {
	creds, err := s.users.All()
	if err != nil {
		return User{}, err
	}
	for _, c := range creds {
		if !strings.EqualFold(c.Email, strings.TrimSpace(email)) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
			return User{}, ErrInvalidCredentials
		}
		user := c.user()
		if err := s.saveSession(user); err != nil {
			return User{}, err
		}
		zap.S().Infow("user logged in", "id", user.ID)
		return user, nil
	}
	return User{}, ErrInvalidCredentials
}

// Logout clears the persisted session.
func (s *AuthService) Logout() error {
	return s.store.Delete(keySession)
}

// Current returns the session user, or ErrNotLoggedIn.
func (s *AuthService) Current() (User, error) {
	raw, err := s.store.Get(keySession)
	if err != nil {
		return User{}, err
	}
	if raw == nil {
		return User{}, ErrNotLoggedIn
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, &StorageError{Op: "read", Key: keySession, Err: fmt.Errorf("corrupt blob: %w", err)}
	}
	return user, nil
}

// UpdateProfile changes the display name and profile image of the current
// user, in both the credential record and the session.
func (s *AuthService) UpdateProfile(name, profileImage string) (User, error) {
	user, err := s.Current()
	if err != nil {
		return User{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, &ValidationError{Fields: map[string]string{"name": "required"}}
	}

	err = s.users.Update(
		func(c credential) bool { return c.ID == user.ID },
		func(c credential) credential {
			c.Name = name
			c.ProfileImage = profileImage
			return c
		},
	)
	// The session may belong to a seeded account that predates the credential
	// collection; keep the session usable either way.
	if err != nil && !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	user.Name = name
	user.ProfileImage = profileImage
	if err := s.saveSession(user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *AuthService) saveSession(user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return &StorageError{Op: "write", Key: keySession, Err: err}
	}
	return s.store.Put(keySession, raw)
}
