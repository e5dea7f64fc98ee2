package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rsharma-dev/attendhub/internal/domain/user"
)

// UsersRepo is an in-memory stand-in for the postgres users repo,
// used by handler tests.
type UsersRepo struct {
	mu    sync.RWMutex
	users map[string]user.User
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{users: make(map[string]user.User)}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[u.ID] = u
	return nil
}

func (r *UsersRepo) GetByUserName(_ context.Context, userName string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.UserName, userName) {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) ExistsByNameOrUserName(_ context.Context, fullName, userName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if strings.EqualFold(u.FullName, fullName) || strings.EqualFold(u.UserName, userName) {
			return true, nil
		}
	}

	return false, nil
}

func (r *UsersRepo) SetRefreshTokenHash(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}

	u.RefreshTokenHash = hash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UsersRepo) SwapRefreshTokenHash(_ context.Context, id, oldHash, newHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.RefreshTokenHash != oldHash {
		return false, nil
	}

	u.RefreshTokenHash = newHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return true, nil
}

func (r *UsersRepo) ClearRefreshTokenHash(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil
	}

	u.RefreshTokenHash = ""
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UsersRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return nil
}

func (r *UsersRepo) UpdateAccount(_ context.Context, id, fullName, userName string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.FullName = fullName
	u.UserName = strings.ToLower(userName)
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *UsersRepo) ListStudents(_ context.Context, department string, semester int) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	students := make([]user.User, 0)

	for _, u := range r.users {
		if u.Role != user.RoleStudent || u.Student == nil {
			continue
		}
		if string(u.Student.Department) == department && u.Student.Semester == semester {
			students = append(students, u)
		}
	}

	sort.Slice(students, func(i, j int) bool {
		return students[i].FullName < students[j].FullName
	})

	return students, nil
}
