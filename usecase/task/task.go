// Package task implements owner-scoped task management.
package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/validate"
	"github.com/fastygo/taskboard/repository"
)

// DateLayout is the date-only form accepted for dueDate besides RFC3339.
const DateLayout = "2006-01-02"

// ListInput carries the raw list query parameters.
type ListInput struct {
	Status   string
	Priority string
	Search   string
	SortBy   string
	Order    string
}

// CreateInput is the task creation schema.
type CreateInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// UpdateInput is a partial task edit. Absent fields stay unchanged; null or
// empty clears description and dueDate.
type UpdateInput struct {
	Title       domain.Optional[string] `json:"title"`
	Description domain.Optional[string] `json:"description"`
	Status      domain.Optional[string] `json:"status"`
	Priority    domain.Optional[string] `json:"priority"`
	DueDate     domain.Optional[string] `json:"dueDate"`
}

type UseCase struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
}

func New(tasks repository.TaskRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:  tasks,
		logger: logger,
	}
}

// List returns the tasks owned by user that match in.
func (uc *UseCase) List(ctx context.Context, user *domain.User, in ListInput) ([]domain.Task, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	query := domain.TaskQuery{
		OwnerID:    user.ID,
		Search:     strings.TrimSpace(in.Search),
		SortBy:     domain.ParseTaskSort(in.SortBy),
		Descending: !strings.EqualFold(in.Order, "asc"),
	}
	if status := domain.TaskStatus(in.Status); status.Valid() {
		query.Status = status
	}
	if priority := domain.TaskPriority(in.Priority); priority.Valid() {
		query.Priority = priority
	}

	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		return nil, uc.internal(ctx, "failed to list tasks", err)
	}
	return tasks, nil
}

// Get returns one of user's tasks. Tasks owned by someone else are reported
// as not found.
func (uc *UseCase) Get(ctx context.Context, user *domain.User, id string) (*domain.Task, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	task, err := uc.tasks.GetByID(ctx, user.ID, id)
	if err != nil {
		return nil, uc.storeError(ctx, "failed to load task", err)
	}
	return task, nil
}

// Create stores a new task owned by user.
func (uc *UseCase) Create(ctx context.Context, user *domain.User, in CreateInput) (*domain.Task, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	task := &domain.Task{
		UserID:   user.ID,
		Status:   domain.StatusPending,
		Priority: domain.PriorityMedium,
	}

	var fields []*domain.FieldError
	title := strings.TrimSpace(in.Title)
	if fe := checkTitle(title); fe != nil {
		fields = append(fields, fe)
	}
	task.Title = title

	description := strings.TrimSpace(in.Description)
	if fe := checkDescription(description); fe != nil {
		fields = append(fields, fe)
	}
	task.Description = description

	if in.Status != "" {
		status, fe := parseStatus(in.Status)
		fields = append(fields, fe)
		task.Status = status
	}
	if in.Priority != "" {
		priority, fe := parsePriority(in.Priority)
		fields = append(fields, fe)
		task.Priority = priority
	}
	if strings.TrimSpace(in.DueDate) != "" {
		due, fe := parseDueDate(in.DueDate)
		fields = append(fields, fe)
		task.DueDate = &due
	}
	if err := validate.Collect(fields...); err != nil {
		return nil, err
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, uc.internal(ctx, "failed to create task", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("task created",
		zap.String("task_id", created.ID),
		zap.String("user_id", user.ID),
	)
	return created, nil
}

// Update applies the present fields of in to one of user's tasks.
func (uc *UseCase) Update(ctx context.Context, user *domain.User, id string, in UpdateInput) (*domain.Task, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}

	updated, err := uc.tasks.Update(ctx, user.ID, id, patch)
	if err != nil {
		return nil, uc.storeError(ctx, "failed to update task", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("task updated",
		zap.String("task_id", id),
		zap.String("user_id", user.ID),
	)
	return updated, nil
}

// Delete removes one of user's tasks permanently.
func (uc *UseCase) Delete(ctx context.Context, user *domain.User, id string) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if err := uc.tasks.Delete(ctx, user.ID, id); err != nil {
		return uc.storeError(ctx, "failed to delete task", err)
	}
	logger.WithRequestID(ctx, uc.logger).Info("task deleted",
		zap.String("task_id", id),
		zap.String("user_id", user.ID),
	)
	return nil
}

func buildPatch(in UpdateInput) (domain.TaskPatch, error) {
	var (
		patch  domain.TaskPatch
		fields []*domain.FieldError
	)
	if in.Title.Set {
		title := strings.TrimSpace(in.Title.Value)
		if fe := checkTitle(title); fe != nil {
			fields = append(fields, fe)
		} else {
			patch.Title = domain.Some(title)
		}
	}
	if in.Description.Set {
		description := strings.TrimSpace(in.Description.OrZero())
		if fe := checkDescription(description); fe != nil {
			fields = append(fields, fe)
		} else if description == "" {
			patch.Description = domain.Null[string]()
		} else {
			patch.Description = domain.Some(description)
		}
	}
	if in.Status.Set {
		status, fe := parseStatus(in.Status.Value)
		fields = append(fields, fe)
		patch.Status = domain.Some(status)
	}
	if in.Priority.Set {
		priority, fe := parsePriority(in.Priority.Value)
		fields = append(fields, fe)
		patch.Priority = domain.Some(priority)
	}
	if in.DueDate.Set {
		if raw := strings.TrimSpace(in.DueDate.OrZero()); raw == "" {
			patch.DueDate = domain.Null[time.Time]()
		} else {
			due, fe := parseDueDate(raw)
			fields = append(fields, fe)
			patch.DueDate = domain.Some(due)
		}
	}
	if err := validate.Collect(fields...); err != nil {
		return domain.TaskPatch{}, err
	}
	return patch, nil
}

func checkTitle(title string) *domain.FieldError {
	return validate.Var("title", title, "required,max=100")
}

func checkDescription(description string) *domain.FieldError {
	return validate.Var("description", description, "max=500")
}

func parseStatus(raw string) (domain.TaskStatus, *domain.FieldError) {
	status := domain.TaskStatus(strings.TrimSpace(raw))
	if fe := validate.Var("status", string(status), "required,oneof=pending in-progress completed"); fe != nil {
		return "", fe
	}
	return status, nil
}

func parsePriority(raw string) (domain.TaskPriority, *domain.FieldError) {
	priority := domain.TaskPriority(strings.TrimSpace(raw))
	if fe := validate.Var("priority", string(priority), "required,oneof=low medium high"); fe != nil {
		return "", fe
	}
	return priority, nil
}

func parseDueDate(raw string) (time.Time, *domain.FieldError) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &domain.FieldError{Field: "dueDate", Message: "Due date must be an RFC3339 timestamp or YYYY-MM-DD"}
}

// storeError passes NOT_FOUND through unchanged and hides anything else
// behind an INTERNAL error.
func (uc *UseCase) storeError(ctx context.Context, msg string, err error) error {
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		return domain.ErrTaskNotFound
	}
	return uc.internal(ctx, msg, err)
}

func (uc *UseCase) internal(ctx context.Context, msg string, err error) error {
	logger.WithRequestID(ctx, uc.logger).Error(msg, zap.Error(err))
	return domain.WrapError(domain.ErrCodeInternal, msg, err)
}
