package domain

import "time"

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// TaskPriority ranks tasks; see Rank for ordering.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities low < medium < high. Unknown values rank 0.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Task represents a user-owned activity item.
type Task struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// TaskPatch lists the task fields a caller wants to change. There is no owner
// field: ownership never changes after creation.
type TaskPatch struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[TaskStatus]
	Priority    Optional[TaskPriority]
	DueDate     Optional[time.Time]
}

// Apply copies the present fields of p onto t. Null clears optional fields.
func (t *Task) Apply(p TaskPatch) {
	if t == nil {
		return
	}
	if p.Title.Set && !p.Title.Null {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.OrZero()
	}
	if p.Status.Set && !p.Status.Null {
		t.Status = p.Status.Value
	}
	if p.Priority.Set && !p.Priority.Null {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		if p.DueDate.Null {
			t.DueDate = nil
		} else {
			due := p.DueDate.Value
			t.DueDate = &due
		}
	}
}

// TaskSort names the sortable task fields.
type TaskSort string

const (
	SortCreatedAt TaskSort = "createdAt"
	SortUpdatedAt TaskSort = "updatedAt"
	SortDueDate   TaskSort = "dueDate"
	SortTitle     TaskSort = "title"
	SortStatus    TaskSort = "status"
	SortPriority  TaskSort = "priority"
)

// ParseTaskSort falls back to createdAt for unknown fields.
func ParseTaskSort(v string) TaskSort {
	switch s := TaskSort(v); s {
	case SortCreatedAt, SortUpdatedAt, SortDueDate, SortTitle, SortStatus, SortPriority:
		return s
	}
	return SortCreatedAt
}

// TaskQuery is an owner-scoped task listing request. OwnerID is mandatory;
// the remaining fields are optional filters combined with AND.
type TaskQuery struct {
	OwnerID    string
	Status     TaskStatus
	Priority   TaskPriority
	Search     string
	SortBy     TaskSort
	Descending bool
}
