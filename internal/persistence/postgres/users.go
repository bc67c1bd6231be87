package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"example.com/journal/internal/domain"
)

const userColumns = "id, username, password_hash, nickname, avatar, signature, email, created_at, updated_at"

// CreateUser inserts a new account. A duplicate username surfaces as
// domain.ErrConflict via the unique constraint.
func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	const stmt = `INSERT INTO users (id, username, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, now(), now())`
	if _, err := r.pool.Exec(ctx, stmt, user.ID, user.Username, user.PasswordHash); err != nil {
		return translateErr(err)
	}
	return nil
}

// UserByUsername fetches an account for login; nil when unknown.
func (r *Repository) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE username = $1", userColumns), username))
}

// UserByID fetches an account by id; nil when unknown.
func (r *Repository) UserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id))
}

// UpdateProfile writes only the patch's non-nil fields, then returns the
// fresh row. Nil when the user no longer exists.
func (r *Repository) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (*domain.User, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)

	add := func(col string, val *string) {
		if val != nil {
			args = append(args, *val)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
		}
	}
	add("nickname", patch.Nickname)
	add("avatar", patch.Avatar)
	add("signature", patch.Signature)
	add("email", patch.Email)
	if len(sets) == 0 {
		return r.UserByID(ctx, userID)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, userID)
	stmt := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, stmt, args...)
	if err != nil {
		return nil, translateErr(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.UserByID(ctx, userID)
}

func (r *Repository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Nickname,
		&user.Avatar, &user.Signature, &user.Email, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
