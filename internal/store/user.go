package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/brocante/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, phone, avatar, password_hash, password_salt, token, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) GetByToken(ctx context.Context, token string) (types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		WHERE token = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, token))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	avatarJSON, err := marshalNullable(user.Account.Avatar)
	if err != nil {
		return types.User{}, err
	}

	const query = `
		INSERT INTO users (email, username, phone, avatar, password_hash, password_salt, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Account.Username,
		user.Account.Phone,
		avatarJSON,
		user.PasswordHash,
		user.PasswordSalt,
		user.Token,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID); err != nil {
		return types.User{}, err
	}
	return user, nil
}

// UpdateCredentials rotates the stored credential material in one write.
// Replacing the token implicitly logs out any bearer of the old one.
func (r *UserRepository) UpdateCredentials(ctx context.Context, id int64, hash, salt, token string) error {
	const query = `
		UPDATE users
		SET password_hash = $1,
			password_salt = $2,
			token = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, hash, salt, token, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context) ([]types.User, error) {
	const query = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepository) scanUser(row rowScanner) (types.User, error) {
	var user types.User
	var avatarJSON []byte
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Account.Username,
		&user.Account.Phone,
		&avatarJSON,
		&user.PasswordHash,
		&user.PasswordSalt,
		&user.Token,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	if len(avatarJSON) > 0 {
		var avatar types.ImageRef
		if err := json.Unmarshal(avatarJSON, &avatar); err == nil {
			user.Account.Avatar = &avatar
		}
	}
	return user, nil
}

func marshalNullable(ref *types.ImageRef) ([]byte, error) {
	if ref == nil {
		return nil, nil
	}
	return json.Marshal(ref)
}
