package churchrepofakes

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/churchai-session/churches"
	"github.com/jrsteele09/churchai-session/internal/errors"
)

var _ churches.Repo = (*FakeChurchRepo)(nil)

type FakeChurchRepo struct {
	churches map[string]churches.Church
	lock     sync.RWMutex
}

func NewFakeChurchRepo() churches.Repo {
	return &FakeChurchRepo{
		churches: make(map[string]churches.Church),
	}
}

func (cr *FakeChurchRepo) Upsert(church *churches.Church) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	if church.ID == "" {
		church.ID = uuid.New().String()
	}
	church.InvitationCode = churches.NormalizeInvitationCode(church.InvitationCode)
	cr.churches[church.ID] = *church
	return nil
}

func (cr *FakeChurchRepo) Delete(churchID string) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()
	if _, ok := cr.churches[churchID]; !ok {
		return errors.ErrChurchNotFound
	}
	delete(cr.churches, churchID)
	return nil
}

func (cr *FakeChurchRepo) Get(churchID string) (*churches.Church, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	church, ok := cr.churches[churchID]
	if !ok {
		return nil, errors.ErrChurchNotFound
	}
	return &church, nil
}

func (cr *FakeChurchRepo) GetByInvitationCode(code string) (*churches.Church, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()
	code = churches.NormalizeInvitationCode(code)
	if code == "" {
		return nil, errors.ErrInvalidInvitationCode
	}
	for _, c := range cr.churches {
		if c.InvitationCode == code && c.IsActive {
			church := c
			return &church, nil
		}
	}
	return nil, errors.ErrInvalidInvitationCode
}

func (cr *FakeChurchRepo) List(offset, limit int) ([]*churches.Church, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	list := make([]*churches.Church, 0, len(cr.churches))
	for _, c := range cr.churches {
		church := c
		list = append(list, &church)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset < 0 || offset >= len(list) {
		return []*churches.Church{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
