package fakeuserrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/churchai-session/internal/errors"
	"github.com/jrsteele09/churchai-session/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

// FakeUserRepo keeps copies of the stored users so callers can't mutate repo state in place.
type FakeUserRepo struct {
	users    map[string]users.User
	emailIds map[string]string // normalized email to user id
	lock     sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users:    make(map[string]users.User),
		emailIds: make(map[string]string),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if existing, ok := ur.users[user.ID]; ok {
		delete(ur.emailIds, normalizeEmail(existing.Email))
	}
	ur.users[user.ID] = *user
	ur.emailIds[normalizeEmail(user.Email)] = user.ID
	return nil
}

func (ur *FakeUserRepo) Delete(email string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	userID, ok := ur.emailIds[normalizeEmail(email)]
	if !ok {
		return errors.ErrUserNotFound
	}
	delete(ur.emailIds, normalizeEmail(email))
	delete(ur.users, userID)
	return nil
}

func (ur *FakeUserRepo) GetByEmail(email string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userID, ok := ur.emailIds[normalizeEmail(email)]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	u := ur.users[userID]
	return &u, nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &u, nil
}

func (ur *FakeUserRepo) GetByEmailVerificationToken(token string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if token == "" {
		return nil, errors.ErrUserNotFound
	}
	for _, u := range ur.users {
		if u.EmailVerificationToken == token {
			found := u
			return &found, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		u := v
		userList = append(userList, &u)
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].DateJoined.Before(userList[j].DateJoined) ||
			(userList[i].DateJoined.Equal(userList[j].DateJoined) && userList[i].ID < userList[j].ID)
	})

	if offset < 0 || offset >= len(userList) {
		return []*users.User{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(userList) {
		end = len(userList)
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) SetStatus(email string, status users.StatusType) error {
	return ur.update(email, func(u *users.User) { u.Status = status })
}

func (ur *FakeUserRepo) SetEmailVerified(email string, verified bool) error {
	return ur.update(email, func(u *users.User) {
		u.IsEmailVerified = verified
		if verified {
			u.EmailVerificationToken = ""
		}
	})
}

func (ur *FakeUserRepo) update(email string, fn func(u *users.User)) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	userID, ok := ur.emailIds[normalizeEmail(email)]
	if !ok {
		return errors.ErrUserNotFound
	}
	u := ur.users[userID]
	fn(&u)
	ur.users[userID] = u
	return nil
}
