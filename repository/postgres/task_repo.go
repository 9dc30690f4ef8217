package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

var sortExpressions = map[domain.TaskSort]string{
	domain.SortCreatedAt: "created_at",
	domain.SortUpdatedAt: "updated_at",
	domain.SortDueDate:   "due_date",
	domain.SortTitle:     "lower(title)",
	domain.SortStatus:    "status",
	domain.SortPriority:  "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END",
}

func (r *taskRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	if !validIDs(ownerID, id) {
		return nil, domain.ErrTaskNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, query domain.TaskQuery) ([]domain.Task, error) {
	if query.OwnerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if !validIDs(query.OwnerID) {
		return []domain.Task{}, nil
	}
	sql, args := buildTaskList(query)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	created := *task
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, status, priority, due_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		created.ID,
		created.UserID,
		created.Title,
		created.Description,
		string(created.Status),
		string(created.Priority),
		created.DueDate,
	).Scan(&created.CreatedAt, &created.UpdatedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *taskRepository) Update(ctx context.Context, ownerID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if !validIDs(ownerID, id) {
		return nil, domain.ErrTaskNotFound
	}
	query, args := buildTaskUpdate(ownerID, id, patch)
	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

func (r *taskRepository) Delete(ctx context.Context, ownerID, id string) error {
	if !validIDs(ownerID, id) {
		return domain.ErrTaskNotFound
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// buildTaskList renders the owner-scoped listing query. The owner predicate is
// always first; sort columns come from a fixed whitelist.
func buildTaskList(q domain.TaskQuery) (string, []any) {
	var args setClause
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ` + args.placeholder(q.OwnerID)
	if q.Status != "" {
		sql += ` AND status = ` + args.placeholder(string(q.Status))
	}
	if q.Priority != "" {
		sql += ` AND priority = ` + args.placeholder(string(q.Priority))
	}
	if q.Search != "" {
		p := args.placeholder(likePattern(q.Search))
		sql += ` AND (title ILIKE ` + p + ` ESCAPE '\' OR description ILIKE ` + p + ` ESCAPE '\')`
	}

	expr, ok := sortExpressions[q.SortBy]
	if !ok {
		expr = sortExpressions[domain.SortCreatedAt]
	}
	dir := "ASC"
	if q.Descending {
		dir = "DESC"
	}
	sql += ` ORDER BY ` + expr + ` ` + dir
	if q.SortBy == domain.SortDueDate {
		sql += ` NULLS LAST`
	}
	sql += `, id ` + dir
	return sql, args.args
}

// buildTaskUpdate renders one UPDATE ... RETURNING so the patch applies atomically.
func buildTaskUpdate(ownerID, id string, patch domain.TaskPatch) (string, []any) {
	var set setClause
	if patch.Title.Set && !patch.Title.Null {
		set.add("title", patch.Title.Value)
	}
	if patch.Description.Set {
		set.add("description", patch.Description.OrZero())
	}
	if patch.Status.Set && !patch.Status.Null {
		set.add("status", string(patch.Status.Value))
	}
	if patch.Priority.Set && !patch.Priority.Null {
		set.add("priority", string(patch.Priority.Value))
	}
	if patch.DueDate.Set {
		var due *time.Time
		if !patch.DueDate.Null {
			v := patch.DueDate.Value
			due = &v
		}
		set.add("due_date", due)
	}
	set.parts = append(set.parts, "updated_at = NOW()")
	idRef := set.placeholder(id)
	ownerRef := set.placeholder(ownerID)

	return `UPDATE tasks SET ` + set.String() +
		` WHERE id = ` + idRef + ` AND user_id = ` + ownerRef +
		` RETURNING ` + taskColumns, set.args
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		task     domain.Task
		status   string
		priority string
	)
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	return &task, nil
}

// validIDs guards uuid columns: a malformed id can never match a row.
func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
