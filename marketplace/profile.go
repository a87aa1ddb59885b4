package marketplace

import (
	"encoding/json"
	"fmt"
)

// ProfileService stores the per-user contact profile (phone and address)
// under its own key, separate from the credential record.
type ProfileService struct {
	store *Store
}

// NewProfileService binds the service to the store.
func NewProfileService(store *Store) *ProfileService {
	return &ProfileService{store: store}
}

func profileKey(userID string) string {
	return fmt.Sprintf("userProfile_%s", userID)
}

// Load returns the stored profile for userID. No profile yet is an empty
// profile, not an error.
func (s *ProfileService) Load(userID string) (Profile, error) {
	key := profileKey(userID)
	raw, err := s.store.Get(key)
	if err != nil {
		return Profile{}, err
	}
	if raw == nil {
		return Profile{}, nil
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, &StorageError{Op: "read", Key: key, Err: fmt.Errorf("corrupt blob: %w", err)}
	}
	return p, nil
}

// Save overwrites the stored profile for userID.
func (s *ProfileService) Save(userID string, p Profile) error {
	key := profileKey(userID)
	raw, err := json.Marshal(p)
	if err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return s.store.Put(key, raw)
}
