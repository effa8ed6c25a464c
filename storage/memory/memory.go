// Package memory provides an in-process UserRepository for tests, demos and single-node
// deployments that keep users outside a database.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrEthical07/sessionauth"
)

// Users is a mutex-guarded map of user records keyed by normalized identity.
type Users struct {
	mu    sync.RWMutex
	users map[sessionauth.Identity]sessionauth.UserRecord
}

var _ sessionauth.UserRepository = (*Users)(nil)

func NewUsers() *Users {
	return &Users{users: make(map[sessionauth.Identity]sessionauth.UserRecord)}
}

func (u *Users) FindByIdentity(_ context.Context, id sessionauth.Identity) (sessionauth.UserRecord, error) {
	const op = "storage.memory.FindByIdentity"

	u.mu.RLock()
	defer u.mu.RUnlock()

	rec, ok := u.users[id]
	if !ok {
		return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, sessionauth.ErrUserNotFound)
	}
	return cloneRecord(rec), nil
}

func (u *Users) Create(_ context.Context, user sessionauth.UserRecord) error {
	const op = "storage.memory.Create"

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.users[user.Email]; ok {
		return fmt.Errorf("%s: %w", op, sessionauth.ErrUserExists)
	}
	u.users[user.Email] = cloneRecord(user)
	return nil
}

func (u *Users) UpdateProfile(_ context.Context, id sessionauth.Identity, p sessionauth.ProfileUpdate) (sessionauth.UserRecord, error) {
	const op = "storage.memory.UpdateProfile"

	u.mu.Lock()
	defer u.mu.Unlock()

	rec, ok := u.users[id]
	if !ok {
		return sessionauth.UserRecord{}, fmt.Errorf("%s: %w", op, sessionauth.ErrUserNotFound)
	}
	first, last, addr, dob := p.FirstName, p.LastName, p.Address, p.DOB
	rec.FirstName, rec.LastName, rec.Address, rec.DOB = &first, &last, &addr, &dob
	u.users[id] = rec
	return cloneRecord(rec), nil
}

// Len reports the number of stored users.
func (u *Users) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.users)
}

// cloneRecord detaches the optional profile fields so callers cannot mutate stored state.
func cloneRecord(r sessionauth.UserRecord) sessionauth.UserRecord {
	r.FirstName = cloneString(r.FirstName)
	r.LastName = cloneString(r.LastName)
	r.Address = cloneString(r.Address)
	if r.DOB != nil {
		d := *r.DOB
		r.DOB = &d
	}
	return r
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
