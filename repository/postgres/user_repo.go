package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, bio, created_at, updated_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, domain.NormalizeEmail(email))
	return scanUser(row)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrInvalidPayload
	}
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	created.Email = domain.NormalizeEmail(created.Email)

	const query = `
	INSERT INTO users (id, name, email, password_hash, bio)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		created.ID,
		created.Name,
		created.Email,
		created.PasswordHash,
		created.Bio,
	).Scan(&created.CreatedAt, &created.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return &created, nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	query, args := buildUserUpdate(id, patch)
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil && isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	return user, err
}

// buildUserUpdate renders a single UPDATE for the present patch fields.
func buildUserUpdate(id string, patch domain.UserPatch) (string, []any) {
	var set setClause
	if patch.Name.Set && !patch.Name.Null {
		set.add("name", patch.Name.Value)
	}
	if patch.Email.Set && !patch.Email.Null {
		set.add("email", domain.NormalizeEmail(patch.Email.Value))
	}
	if patch.Bio.Set {
		set.add("bio", patch.Bio.OrZero())
	}
	set.parts = append(set.parts, "updated_at = NOW()")
	where := set.placeholder(id)

	return `UPDATE users SET ` + set.String() + ` WHERE id = ` + where + ` RETURNING ` + userColumns, set.args
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
