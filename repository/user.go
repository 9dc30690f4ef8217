package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// UserRepository persists user records. Emails are stored normalized and are
// unique; Create and Update return domain.ErrEmailTaken on collision.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
}
