// Package credentials persists the session's access token, refresh token and user snapshot
// across process restarts. Backends are interchangeable behind Store.
package credentials

import (
	"encoding/json"

	apperrors "github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
)

// Key names one of the fixed credential slots
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyUser         Key = "user"
)

// SessionKeys are every slot a session owns, in the order ClearAll removes them
var SessionKeys = []Key{KeyAccessToken, KeyRefreshToken, KeyUser}

// Store is durable key/value storage for session credentials.
// Get never fails: anything that cannot be read back is reported as absent.
type Store interface {
	Get(key Key) (string, bool)
	Set(key Key, value string) error
	Delete(key Key) error
}

// ClearAll deletes every session slot. Each delete is attempted once even if an
// earlier one failed; the failures are joined.
func ClearAll(store Store) error {
	var errs []error
	for _, key := range SessionKeys {
		if err := store.Delete(key); err != nil {
			errs = append(errs, errors.Wrapf(err, "delete %s", key))
		}
	}
	return apperrors.Join(errs...)
}

// GetUser decodes the stored user snapshot. An undecodable snapshot reads as absent.
func GetUser(store Store) (*users.Profile, bool) {
	raw, ok := store.Get(KeyUser)
	if !ok || raw == "" {
		return nil, false
	}
	var profile users.Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return nil, false
	}
	return &profile, true
}

func SetUser(store Store, profile users.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return errors.Wrap(err, "[SetUser] Marshal")
	}
	return store.Set(KeyUser, string(raw))
}
