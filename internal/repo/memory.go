package repo

import (
	"context"
	"strings"
	"sync"
	"time"

	dom "remindme/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps users, reminders and shopping items in process memory.
// It backs the "memory" store driver and service tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]dom.User
	reminders map[string]map[string]dom.Reminder
	items     map[string]map[string]dom.ShoppingItem
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[string]dom.User),
		reminders: make(map[string]map[string]dom.Reminder),
		items:     make(map[string]map[string]dom.ShoppingItem),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Users() UserRepo         { return memUsers{m} }
func (m *MemoryStore) Reminders() ReminderRepo { return memReminders{m} }
func (m *MemoryStore) Shopping() ShoppingRepo  { return memShopping{m} }

type memUsers struct{ m *MemoryStore }

func (r memUsers) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return dom.User{}, ErrNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (dom.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return dom.User{}, ErrNotFound
	}
	return u, nil
}

func (r memUsers) Create(_ context.Context, email, passwordHash string) (dom.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if strings.EqualFold(u.Email, email) {
			return dom.User{}, ErrDuplicate
		}
	}
	u := dom.User{ID: uuid.NewString(), Email: email, PasswordHash: passwordHash, CreatedAt: r.m.now()}
	r.m.users[u.ID] = u
	return u, nil
}

type memReminders struct{ m *MemoryStore }

func (r memReminders) Create(_ context.Context, in dom.Reminder) (dom.Reminder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	now := r.m.now()
	in.ID = uuid.NewString()
	in.CreatedAt = now
	in.UpdatedAt = now
	if r.m.reminders[in.UserID] == nil {
		r.m.reminders[in.UserID] = make(map[string]dom.Reminder)
	}
	r.m.reminders[in.UserID][in.ID] = in
	return in, nil
}

func (r memReminders) GetByID(_ context.Context, userID, id string) (dom.Reminder, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	rem, ok := r.m.reminders[userID][id]
	if !ok {
		return dom.Reminder{}, ErrNotFound
	}
	return rem, nil
}

func (r memReminders) List(_ context.Context, userID string) ([]dom.Reminder, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := make([]dom.Reminder, 0, len(r.m.reminders[userID]))
	for _, rem := range r.m.reminders[userID] {
		list = append(list, rem)
	}
	return list, nil
}

func (r memReminders) Set(_ context.Context, in dom.Reminder, expectRev int64) (dom.Reminder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.reminders[in.UserID][in.ID]
	if !ok {
		return dom.Reminder{}, ErrNotFound
	}
	if cur.Rev != expectRev {
		return dom.Reminder{}, ErrStale
	}
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = r.m.now()
	r.m.reminders[in.UserID][in.ID] = in
	return in, nil
}

func (r memReminders) update(userID, id string, rev, expectRev int64, fn func(*dom.Reminder)) (dom.Reminder, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.reminders[userID][id]
	if !ok {
		return dom.Reminder{}, ErrNotFound
	}
	if cur.Rev != expectRev {
		return dom.Reminder{}, ErrStale
	}
	fn(&cur)
	cur.Rev = rev
	cur.UpdatedAt = r.m.now()
	r.m.reminders[userID][id] = cur
	return cur, nil
}

func (r memReminders) SetDone(_ context.Context, userID, id string, done bool, rev, expectRev int64) (dom.Reminder, error) {
	return r.update(userID, id, rev, expectRev, func(rem *dom.Reminder) { rem.Done = done })
}

func (r memReminders) SetPinned(_ context.Context, userID, id string, pinned bool, rev, expectRev int64) (dom.Reminder, error) {
	return r.update(userID, id, rev, expectRev, func(rem *dom.Reminder) { rem.Pinned = pinned })
}

func (r memReminders) Delete(_ context.Context, userID, id string, expectRev int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.reminders[userID][id]
	if !ok {
		return ErrNotFound
	}
	if cur.Rev != expectRev {
		return ErrStale
	}
	delete(r.m.reminders[userID], id)
	return nil
}

type memShopping struct{ m *MemoryStore }

func (r memShopping) Create(_ context.Context, in dom.ShoppingItem) (dom.ShoppingItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	in.ID = uuid.NewString()
	in.CreatedAt = r.m.now()
	if r.m.items[in.UserID] == nil {
		r.m.items[in.UserID] = make(map[string]dom.ShoppingItem)
	}
	r.m.items[in.UserID][in.ID] = in
	return in, nil
}

func (r memShopping) GetByID(_ context.Context, userID, id string) (dom.ShoppingItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	it, ok := r.m.items[userID][id]
	if !ok {
		return dom.ShoppingItem{}, ErrNotFound
	}
	return it, nil
}

func (r memShopping) FindByNameAndSection(_ context.Context, userID, name, sectionID string) (dom.ShoppingItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, it := range r.m.items[userID] {
		if it.Name == name && it.SectionID == sectionID {
			return it, nil
		}
	}
	return dom.ShoppingItem{}, ErrNotFound
}

func (r memShopping) List(_ context.Context, userID string) ([]dom.ShoppingItem, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	list := make([]dom.ShoppingItem, 0, len(r.m.items[userID]))
	for _, it := range r.m.items[userID] {
		list = append(list, it)
	}
	return list, nil
}

func (r memShopping) SetChecked(_ context.Context, userID, id string, checked bool, rev, expectRev int64) (dom.ShoppingItem, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it, ok := r.m.items[userID][id]
	if !ok {
		return dom.ShoppingItem{}, ErrNotFound
	}
	if it.Rev != expectRev {
		return dom.ShoppingItem{}, ErrStale
	}
	it.Checked = checked
	it.Rev = rev
	r.m.items[userID][id] = it
	return it, nil
}

func (r memShopping) Delete(_ context.Context, userID, id string, expectRev int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	it, ok := r.m.items[userID][id]
	if !ok {
		return ErrNotFound
	}
	if it.Rev != expectRev {
		return ErrStale
	}
	delete(r.m.items[userID], id)
	return nil
}
