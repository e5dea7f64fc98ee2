package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma-dev/attendhub/internal/domain/user"
)

const userColumns = `id, full_name, user_name, password_hash, role, semester, department, refresh_token_hash, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{pool: pool}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var semester *int
	var department *string
	var refreshHash *string

	err := row.Scan(
		&u.ID,
		&u.FullName,
		&u.UserName,
		&u.PasswordHash,
		&u.Role,
		&semester,
		&department,
		&refreshHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	if u.Role == user.RoleStudent && semester != nil && department != nil {
		u.Student = &user.StudentProfile{
			Semester:   *semester,
			Department: user.Department(*department),
		}
	}

	if refreshHash != nil {
		u.RefreshTokenHash = *refreshHash
	}

	return u, nil
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) error {
	var semester *int
	var department *string

	if u.Student != nil {
		semester = &u.Student.Semester
		dept := string(u.Student.Department)
		department = &dept
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, full_name, user_name, password_hash, role, semester, department, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.FullName, u.UserName, u.PasswordHash, u.Role, semester, department, u.CreatedAt, u.UpdatedAt,
	)

	return err
}

func (r *UsersRepo) GetByUserName(ctx context.Context, userName string) (user.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(user_name) = lower($1)`,
		userName,
	))
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
}

// ExistsByNameOrUserName is the registration conflict check: case-insensitive
// exact match on either the full name or the username.
func (r *UsersRepo) ExistsByNameOrUserName(ctx context.Context, fullName, userName string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM users
			WHERE lower(full_name) = lower($1) OR lower(user_name) = lower($2)
		)`,
		fullName, userName,
	).Scan(&exists)

	return exists, err
}

func (r *UsersRepo) SetRefreshTokenHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = $2, updated_at = $3 WHERE id = $1`,
		id, hash, time.Now().UTC(),
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

// SwapRefreshTokenHash replaces the stored hash only when it still equals
// oldHash. Zero rows swapped means the presented token was already superseded.
func (r *UsersRepo) SwapRefreshTokenHash(ctx context.Context, id, oldHash, newHash string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET refresh_token_hash = $3, updated_at = $4
		 WHERE id = $1 AND refresh_token_hash = $2`,
		id, oldHash, newHash, time.Now().UTC(),
	)

	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (r *UsersRepo) ClearRefreshTokenHash(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = NULL, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)

	return err
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		id, passwordHash, time.Now().UTC(),
	)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) UpdateAccount(ctx context.Context, id, fullName, userName string) (user.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`UPDATE users
		 SET full_name = $2, user_name = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, fullName, strings.ToLower(userName), time.Now().UTC(),
	))
}

func (r *UsersRepo) ListStudents(ctx context.Context, department string, semester int) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE role = $1 AND department = $2 AND semester = $3
		 ORDER BY full_name ASC`,
		user.RoleStudent, department, semester,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	students := make([]user.User, 0)

	for rows.Next() {
		u, err := scanUser(rows)

		if err != nil {
			return nil, err
		}

		students = append(students, u)
	}

	return students, rows.Err()
}
