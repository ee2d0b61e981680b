package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/category"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
)

type UsersRepo struct {
	s *Store
}

func cloneUser(u user.User) user.User {
	u.Interests = slices.Clone(u.Interests)
	return u
}

// stored interests are deduplicated and sorted, like the postgres read path
func normalizeInterests(in []category.Category) []category.Category {
	out := category.Dedupe(in)
	slices.Sort(out)
	return out
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return cloneUser(r.s.users[id]), nil
}

func (r *UsersRepo) List(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var q string
	if f.Query != nil {
		q = strings.ToLower(strings.TrimSpace(*f.Query))
	}

	out := make([]user.User, 0)
	for _, id := range sortedKeys(r.s.users) {
		u := r.s.users[id]

		if q != "" && !matchesAny(q, u.Email, u.FirstName, u.LastName) {
			continue
		}
		if f.Availability != nil && u.Availability != *f.Availability {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

// q must already be lower-cased
func matchesAny(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (r *UsersRepo) GetCredential(ctx context.Context, userID int64) (user.Credential, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	hash, ok := r.s.credentials[userID]
	if !ok {
		return user.Credential{}, user.ErrNotFound
	}
	return user.Credential{UserID: userID, PasswordHash: hash}, nil
}

func (r *UsersRepo) CreateAccount(ctx context.Context, acc user.NewAccount) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[acc.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.s.nextUserID++
	u := user.User{
		ID:        r.s.nextUserID,
		Email:     acc.Email,
		FirstName: acc.FirstName,
		LastName:  acc.LastName,
		Skills:    acc.Skills,
		Interests: normalizeInterests(acc.Interests),
	}

	r.s.users[u.ID] = u
	r.s.emails[u.Email] = u.ID
	r.s.credentials[u.ID] = acc.PasswordHash

	return cloneUser(u), nil
}

func (r *UsersRepo) UpdateCredential(ctx context.Context, userID int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.credentials[userID]; !ok {
		return user.ErrNotFound
	}
	r.s.credentials[userID] = hash
	return nil
}

func (r *UsersRepo) UpdateProfile(ctx context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	// email is not editable here
	u.Email = current.Email
	u.Interests = normalizeInterests(u.Interests)
	r.s.users[u.ID] = u

	return cloneUser(u), nil
}

func (r *UsersRepo) DeleteAccount(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return user.ErrNotFound
	}
	r.s.deleteUserLocked(userID)
	return nil
}
