package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/storefront/internal/domain"
	"github.com/mkrupp/storefront/internal/infra/logging"
	"github.com/mkrupp/storefront/internal/repo/sqldb"
)

const userColumns = "id, username, password_hash, email, phone, avatar, status, created_at, updated_at"

// SQLUserRepository implements Repository on the shared SQL storage backend.
type SQLUserRepository struct {
	db  *sqldb.DB
	log logging.Logger
}

var _ Repository = (*SQLUserRepository)(nil)

// NewSQLUserRepository creates a user repository on db.
func NewSQLUserRepository(db *sqldb.DB) *SQLUserRepository {
	return &SQLUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sql_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser.
func (r *SQLUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC().Truncate(time.Millisecond)

	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}

	return r.db.InTx(ctx, func(ctx context.Context) error {
		err := r.db.Runner(ctx).QueryRowContext(ctx, r.db.Rebind(`
			INSERT INTO users (username, password_hash, email, phone, avatar, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`),
			user.Username,
			user.PasswordHash,
			user.Email,
			user.Phone,
			user.Avatar,
			string(user.Status),
			sqldb.ToMillis(now),
			sqldb.ToMillis(now),
		).Scan(&user.ID)
		if err != nil {
			err = r.db.WrapError(err)
			if sqldb.IsUniqueViolation(err) {
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			}

			return fmt.Errorf("insert user: %w", err)
		}

		user.CreatedAt = now
		user.UpdatedAt = now

		return nil
	})
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.getUser(ctx, "username = ?", username)
}

// GetUserByID implements Repository.GetUserByID.
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	return r.getUser(ctx, "id = ?", id)
}

func (r *SQLUserRepository) getUser(ctx context.Context, where string, arg any) (*domain.User, bool, error) {
	var (
		user                 domain.User
		status               string
		createdAt, updatedAt int64
	)

	err := r.db.Runner(ctx).QueryRowContext(ctx,
		r.db.Rebind("SELECT "+userColumns+" FROM users WHERE "+where),
		arg,
	).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.Phone,
		&user.Avatar,
		&status,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user: %w", r.db.WrapError(err))
	}

	user.Status = domain.UserStatus(status)
	user.CreatedAt = sqldb.FromMillis(createdAt)
	user.UpdatedAt = sqldb.FromMillis(updatedAt)

	return &user, true, nil
}

// UpdateProfile implements Repository.UpdateProfile.
func (r *SQLUserRepository) UpdateProfile(ctx context.Context, id int64, profile domain.UserProfile) error {
	return r.update(ctx, id,
		"email = ?, phone = ?, avatar = ?",
		profile.Email, profile.Phone, profile.Avatar,
	)
}

// SetStatus implements Repository.SetStatus.
func (r *SQLUserRepository) SetStatus(ctx context.Context, id int64, status domain.UserStatus) error {
	return r.update(ctx, id, "status = ?", string(status))
}

func (r *SQLUserRepository) update(ctx context.Context, id int64, set string, args ...any) error {
	args = append(args, sqldb.ToMillis(time.Now()), id)

	return r.db.InTx(ctx, func(ctx context.Context) error {
		res, err := r.db.Runner(ctx).ExecContext(ctx,
			r.db.Rebind("UPDATE users SET "+set+", updated_at = ? WHERE id = ?"),
			args...,
		)
		if err != nil {
			return fmt.Errorf("update user: %w", r.db.WrapError(err))
		}

		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("rows affected: %w", r.db.WrapError(err))
		} else if n == 0 {
			return domain.ErrUserNotFound
		}

		return nil
	})
}
