package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository persists tasks. Every single-task method takes the owner id and
// returns domain.ErrTaskNotFound for tasks owned by someone else.
type TaskRepository interface {
	GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}
