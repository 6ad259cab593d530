package token

import (
	"sync"
	"time"
)

// RevocationList holds the jti of every access token ended by logout. An entry only matters
// until the token's own expiry, after which Verify rejects the token anyway.
type RevocationList interface {
	Revoke(jti string, until, now time.Time)
	Revoked(jti string, now time.Time) bool
}

var _ RevocationList = (*MemoryRevocationList)(nil)

// MemoryRevocationList prunes lapsed entries on every Revoke
type MemoryRevocationList struct {
	lock  sync.RWMutex
	until map[string]time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{until: make(map[string]time.Time)}
}

func (l *MemoryRevocationList) Revoke(jti string, until, now time.Time) {
	l.lock.Lock()
	defer l.lock.Unlock()
	for id, exp := range l.until {
		if !now.Before(exp) {
			delete(l.until, id)
		}
	}
	if now.Before(until) {
		l.until[jti] = until
	}
}

func (l *MemoryRevocationList) Revoked(jti string, now time.Time) bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	exp, ok := l.until[jti]
	return ok && now.Before(exp)
}

func (l *MemoryRevocationList) Len() int {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return len(l.until)
}
