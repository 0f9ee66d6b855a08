package postgresql

import (
	"context"
	"errors"
	"strings"

	"github.com/cmlabs-hris/hris-core-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-core-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	selectUserColumns = `
		SELECT id, name, email, password_hash, roles, department, job_title, is_active, created_at, updated_at
		FROM users
	`

	getAccessProfileQuery = `
		SELECT id, email, roles, is_active
		FROM users
		WHERE id = $1
	`

	insertUserQuery = `
		INSERT INTO users (name, email, password_hash, roles, department, job_title, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
)

type userRepositoryImpl struct {
	db database.Pool
}

func NewUserRepository(db database.Pool) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) getOne(ctx context.Context, op, where string, arg interface{}) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var u user.User
	err := q.QueryRow(ctx, selectUserColumns+where, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Roles,
		&u.Department,
		&u.JobTitle,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, database.Wrap(op, err)
	}
	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, "get user by id", "WHERE id = $1", id)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, "get user by email", "WHERE email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// GetAccessProfile implements user.UserRepository.
func (r *userRepositoryImpl) GetAccessProfile(ctx context.Context, id string) (user.AccessProfile, error) {
	q := GetQuerier(ctx, r.db)

	var p user.AccessProfile
	err := q.QueryRow(ctx, getAccessProfileQuery, id).Scan(&p.ID, &p.Email, &p.Roles, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.AccessProfile{}, user.ErrUserNotFound
		}
		return user.AccessProfile{}, database.Wrap("get access profile", err)
	}
	return p, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))
	newUser.Roles = user.NormalizeRoles(newUser.Roles)

	err := q.QueryRow(ctx, insertUserQuery,
		newUser.Name,
		newUser.Email,
		newUser.PasswordHash,
		newUser.Roles,
		newUser.Department,
		newUser.JobTitle,
		newUser.IsActive,
	).Scan(&newUser.ID, &newUser.CreatedAt, &newUser.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, database.Wrap("insert user", err)
	}
	return newUser, nil
}
