package memory

import (
	"github.com/jwalitptl/health-portal/internal/model"
)

// ListUsers returns every user in insertion order.
func (s *Store) ListUsers() []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out
}

// FindUserByEmail returns the first user whose email equals email exactly.
// Duplicate emails are allowed; later ones are never returned.
func (s *Store) FindUserByEmail(email string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}
	return model.User{}, false
}

func (s *Store) FindUserByID(id string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return model.User{}, false
}

// AddUser appends a user built from draft. Fields that do not apply to the
// draft's role are dropped. No uniqueness or validity checks are made.
func (s *Store) AddUser(draft model.UserDraft) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := model.User{
		ID:           s.newID(),
		Name:         draft.Name,
		Email:        draft.Email,
		Role:         draft.Role,
		Phone:        draft.Phone,
		Profile:      draft.NewProfile(),
		PasswordHash: draft.PasswordHash,
	}
	s.users = append(s.users, u)
	s.inserted(CollectionUsers, u.ID, len(s.users))
	return u
}
