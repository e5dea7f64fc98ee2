package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rsharma-dev/attendhub/internal/config"
	"github.com/rsharma-dev/attendhub/internal/domain/user"
	"github.com/rsharma-dev/attendhub/internal/security"
)

// EnsureSeedFaculty creates one faculty account from the environment so a
// fresh deployment has someone who can mark attendance. No-op when unset.
func EnsureSeedFaculty(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedFacultyUserName == "" || cfg.SeedFacultyPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE lower(user_name) = lower($1)`, cfg.SeedFacultyUserName).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedFacultyPassword)

	if err != nil {
		return err
	}

	u := user.NewFaculty(uuid.NewString(), cfg.SeedFacultyFullName, cfg.SeedFacultyUserName, hash)

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, full_name, user_name, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		u.ID, u.FullName, u.UserName, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
