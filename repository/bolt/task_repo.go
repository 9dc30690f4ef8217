package bolt

import (
	"context"
	"encoding/json"
	"fmt"

	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db   *bbolt.DB
	opts options
}

// NewTaskRepository returns a bbolt-backed implementation of TaskRepository.
func NewTaskRepository(db *bbolt.DB, opts ...Option) repository.TaskRepository {
	return &taskRepository{db: db, opts: buildOptions(opts)}
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task *domain.Task
	err := r.db.View(func(tx *bbolt.Tx) error {
		var err error
		task, err = loadTask(ownerBucket(tx, ownerID), id)
		return err
	})
	return task, err
}

func (r *taskRepository) List(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error) {
	if query.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tasks := []domain.Task{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := ownerBucket(tx, query.OwnerID)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return fmt.Errorf("decode task %s: %w", k, err)
			}
			if matches(query, &task) {
				tasks = append(tasks, task)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortTasks(tasks, query.SortBy, query.Descending)
	return tasks, nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	created := *task
	if created.ID == "" {
		created.ID = r.opts.newID()
	}
	now := r.opts.now().UTC()
	created.CreatedAt = now
	created.UpdatedAt = now

	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket(boltdb.BucketTasks).CreateBucketIfNotExists([]byte(created.UserID))
		if err != nil {
			return err
		}
		if bucket.Get([]byte(created.ID)) != nil {
			return fmt.Errorf("task %s already exists", created.ID)
		}
		return putTask(bucket, &created)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var updated *domain.Task
	err := r.db.Update(func(tx *bbolt.Tx) error {
		bucket := ownerBucket(tx, ownerID)
		task, err := loadTask(bucket, id)
		if err != nil {
			return err
		}
		task.Apply(patch)
		task.UpdatedAt = r.opts.now().UTC()
		if err := putTask(bucket, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	return updated, err
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := ownerBucket(tx, ownerID)
		if bucket == nil || bucket.Get([]byte(id)) == nil {
			return domain.ErrTaskNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

func ownerBucket(tx *bbolt.Tx, ownerID string) *bbolt.Bucket {
	if ownerID == "" {
		return nil
	}
	return tx.Bucket(boltdb.BucketTasks).Bucket([]byte(ownerID))
}

func loadTask(bucket *bbolt.Bucket, id string) (*domain.Task, error) {
	if bucket == nil || id == "" {
		return nil, domain.ErrTaskNotFound
	}
	raw := bucket.Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", id, err)
	}
	return &task, nil
}

func putTask(bucket *bbolt.Bucket, task *domain.Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return bucket.Put([]byte(task.ID), payload)
}
