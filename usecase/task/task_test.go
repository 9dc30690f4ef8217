package task

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/boltdb"
	boltrepo "github.com/fastygo/taskboard/repository/bolt"
)

var (
	ann = &domain.User{ID: "user-ann", Name: "Ann", Email: "ann@x.com"}
	bob = &domain.User{ID: "user-bob", Name: "Bob", Email: "bob@x.com"}
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "tasks.db"), nil)
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(boltrepo.NewTaskRepository(db), nil)
}

func mustCreate(t *testing.T, uc *UseCase, user *domain.User, in CreateInput) *domain.Task {
	t.Helper()
	task, err := uc.Create(context.Background(), user, in)
	if err != nil {
		t.Fatalf("create %q: %v", in.Title, err)
	}
	return task
}

func TestCreateDefaults(t *testing.T) {
	uc := newUseCase(t)

	task := mustCreate(t, uc, ann, CreateInput{Title: "  Buy milk  "})
	if task.Title != "Buy milk" {
		t.Errorf("title = %q", task.Title)
	}
	if task.Status != domain.StatusPending || task.Priority != domain.PriorityMedium {
		t.Errorf("defaults = %s/%s", task.Status, task.Priority)
	}
	if task.UserID != ann.ID {
		t.Errorf("owner = %q, want %q", task.UserID, ann.ID)
	}
	if task.DueDate != nil {
		t.Errorf("dueDate = %v, want none", task.DueDate)
	}
	if task.ID == "" || task.CreatedAt.IsZero() {
		t.Errorf("store did not assign id/timestamps: %+v", task)
	}
}

func TestCreateDueDateFormats(t *testing.T) {
	uc := newUseCase(t)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{"2026-03-01", "2026-03-01T00:00:00Z", "2026-03-01T02:00:00+02:00"} {
		task := mustCreate(t, uc, ann, CreateInput{Title: "Due " + raw, DueDate: raw})
		if task.DueDate == nil || !task.DueDate.Equal(want) {
			t.Errorf("dueDate(%q) = %v, want %v", raw, task.DueDate, want)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		in     CreateInput
		fields []string
	}{
		{"missing title", CreateInput{}, []string{"title"}},
		{"blank title", CreateInput{Title: "   "}, []string{"title"}},
		{"long title", CreateInput{Title: strings.Repeat("t", domain.MaxTitleLength+1)}, []string{"title"}},
		{"long description", CreateInput{Title: "T", Description: strings.Repeat("d", domain.MaxDescriptionLength+1)}, []string{"description"}},
		{"bad status", CreateInput{Title: "T", Status: "done"}, []string{"status"}},
		{"bad priority", CreateInput{Title: "T", Priority: "urgent"}, []string{"priority"}},
		{"bad due date", CreateInput{Title: "T", DueDate: "next week"}, []string{"dueDate"}},
		{"several", CreateInput{Status: "done", Priority: "urgent"}, []string{"title", "status", "priority"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(t)
			_, err := uc.Create(context.Background(), ann, tt.in)
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("err = %v, want invalid", err)
			}
			got := domain.FieldsOf(err)
			if len(got) != len(tt.fields) {
				t.Fatalf("fields = %v, want %v", got, tt.fields)
			}
			for i, field := range tt.fields {
				if got[i].Field != field {
					t.Errorf("field[%d] = %s, want %s", i, got[i].Field, field)
				}
			}
		})
	}
}

func TestOwnerIsolation(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	mine := mustCreate(t, uc, ann, CreateInput{Title: "Ann's"})

	if _, err := uc.Get(ctx, bob, mine.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("get foreign err = %v, want not found", err)
	}
	if _, err := uc.Update(ctx, bob, mine.ID, UpdateInput{Title: domain.Some("stolen")}); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("update foreign err = %v, want not found", err)
	}
	if err := uc.Delete(ctx, bob, mine.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("delete foreign err = %v, want not found", err)
	}
	tasks, err := uc.List(ctx, bob, ListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("bob sees %d tasks", len(tasks))
	}

	got, err := uc.Get(ctx, ann, mine.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if got.Title != "Ann's" {
		t.Errorf("foreign calls changed the task: %+v", got)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	task := mustCreate(t, uc, ann, CreateInput{Title: "T", Priority: "high", Description: "notes", DueDate: "2026-05-01"})

	got, err := uc.Update(ctx, ann, task.ID, UpdateInput{Status: domain.Some("completed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "T" || got.Priority != domain.PriorityHigh || got.Status != domain.StatusCompleted {
		t.Errorf("got %+v", got)
	}
	if got.Description != "notes" || got.DueDate == nil {
		t.Errorf("untouched optional fields changed: %+v", got)
	}
	if got.UserID != ann.ID {
		t.Errorf("owner changed to %q", got.UserID)
	}
}

func TestUpdateClearsOptionalFields(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	task := mustCreate(t, uc, ann, CreateInput{Title: "T", Description: "notes", DueDate: "2026-05-01"})

	got, err := uc.Update(ctx, ann, task.ID, UpdateInput{
		Description: domain.Null[string](),
		DueDate:     domain.Some(""),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != "" || got.DueDate != nil {
		t.Errorf("fields not cleared: %+v", got)
	}
}

func TestUpdateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    UpdateInput
		field string
	}{
		{"null title", UpdateInput{Title: domain.Null[string]()}, "title"},
		{"empty title", UpdateInput{Title: domain.Some(" ")}, "title"},
		{"null status", UpdateInput{Status: domain.Null[string]()}, "status"},
		{"bad status", UpdateInput{Status: domain.Some("archived")}, "status"},
		{"bad priority", UpdateInput{Priority: domain.Some("HIGH")}, "priority"},
		{"bad due date", UpdateInput{DueDate: domain.Some("31/12/2026")}, "dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newUseCase(t)
			task := mustCreate(t, uc, ann, CreateInput{Title: "T"})

			_, err := uc.Update(context.Background(), ann, task.ID, tt.in)
			if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
				t.Fatalf("err = %v, want invalid", err)
			}
			if fields := domain.FieldsOf(err); len(fields) != 1 || fields[0].Field != tt.field {
				t.Errorf("fields = %v, want %s", fields, tt.field)
			}
		})
	}
}

func TestListFilters(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	mustCreate(t, uc, ann, CreateInput{Title: "Write report", Status: "pending", Priority: "high"})
	mustCreate(t, uc, ann, CreateInput{Title: "Groceries", Description: "milk and REPORT paper", Status: "completed", Priority: "low"})
	mustCreate(t, uc, ann, CreateInput{Title: "Call mom", Status: "in-progress", Priority: "high"})
	mustCreate(t, uc, bob, CreateInput{Title: "Bob's report", Priority: "high"})

	tests := []struct {
		name string
		in   ListInput
		want int
	}{
		{"all", ListInput{}, 3},
		{"status", ListInput{Status: "completed"}, 1},
		{"priority", ListInput{Priority: "high"}, 2},
		{"search title or description", ListInput{Search: "report"}, 2},
		{"search and priority", ListInput{Search: "Report", Priority: "high"}, 1},
		{"unknown status ignored", ListInput{Status: "archived"}, 3},
		{"unknown priority ignored", ListInput{Priority: "urgent", Status: "pending"}, 1},
		{"no match", ListInput{Search: "nothing"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := uc.List(ctx, ann, tt.in)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(tasks) != tt.want {
				t.Errorf("count = %d, want %d", len(tasks), tt.want)
			}
			for _, task := range tasks {
				if task.UserID != ann.ID {
					t.Errorf("foreign task %s in result", task.ID)
				}
			}
		})
	}
}

func TestListSortByPriority(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	mustCreate(t, uc, ann, CreateInput{Title: "m", Priority: "medium"})
	mustCreate(t, uc, ann, CreateInput{Title: "h", Priority: "high"})
	mustCreate(t, uc, ann, CreateInput{Title: "l", Priority: "low"})

	tests := []struct {
		order string
		want  string
	}{
		{"asc", "lmh"},
		{"desc", "hml"},
		{"", "hml"},
	}
	for _, tt := range tests {
		tasks, err := uc.List(ctx, ann, ListInput{SortBy: "priority", Order: tt.order})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var got strings.Builder
		for _, task := range tasks {
			got.WriteString(task.Title)
		}
		if got.String() != tt.want {
			t.Errorf("order %q = %s, want %s", tt.order, got.String(), tt.want)
		}
	}
}

func TestDeleteIsPermanent(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()
	task := mustCreate(t, uc, ann, CreateInput{Title: "Buy milk"})

	if err := uc.Delete(ctx, ann, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uc.Get(ctx, ann, task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("get after delete err = %v", err)
	}
	if err := uc.Delete(ctx, ann, task.ID); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}
