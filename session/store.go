package session

import (
	"encoding/json"

	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
)

// entry is one slot change. remove deletes the slot instead of writing value.
type entry struct {
	key    credentials.Key
	value  string
	remove bool
}

type storedValue struct {
	value   string
	present bool
}

func (m *Manager) snapshotStore() map[credentials.Key]storedValue {
	snapshot := make(map[credentials.Key]storedValue, len(credentials.SessionKeys))
	for _, key := range credentials.SessionKeys {
		v, ok := m.store.Get(key)
		snapshot[key] = storedValue{value: v, present: ok}
	}
	return snapshot
}

func (m *Manager) restoreStore(snapshot map[credentials.Key]storedValue) {
	for _, key := range credentials.SessionKeys {
		prev := snapshot[key]
		var err error
		if prev.present {
			err = m.store.Set(key, prev.value)
		} else {
			err = m.store.Delete(key)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("key", string(key)).Msg("restoring credentials")
		}
	}
}

// writeStore applies every entry or, if any change fails, puts the previous values back
func (m *Manager) writeStore(entries []entry) error {
	previous := m.snapshotStore()
	for _, e := range entries {
		var err error
		if e.remove {
			err = m.store.Delete(e.key)
		} else {
			err = m.store.Set(e.key, e.value)
		}
		if err != nil {
			m.restoreStore(previous)
			return errors.Wrapf(err, "[Manager.writeStore] %s", e.key)
		}
	}
	return nil
}

func marshalProfile(profile users.Profile) (string, error) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return "", errors.Wrap(err, "[marshalProfile]")
	}
	return string(raw), nil
}
