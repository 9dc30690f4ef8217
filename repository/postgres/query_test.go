package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/fastygo/taskboard/domain"
)

func TestBuildTaskListOwnerFirst(t *testing.T) {
	sql, args := buildTaskList(domain.TaskQuery{OwnerID: "owner"})

	if !strings.Contains(sql, "WHERE user_id = $1") {
		t.Errorf("owner predicate missing: %s", sql)
	}
	if !strings.HasSuffix(sql, "ORDER BY created_at ASC, id ASC") {
		t.Errorf("default order wrong: %s", sql)
	}
	if len(args) != 1 || args[0] != "owner" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildTaskListFilters(t *testing.T) {
	sql, args := buildTaskList(domain.TaskQuery{
		OwnerID:    "owner",
		Status:     domain.StatusPending,
		Priority:   domain.PriorityHigh,
		Search:     "50%_off",
		SortBy:     domain.SortDueDate,
		Descending: true,
	})

	for _, want := range []string{
		"status = $2",
		"priority = $3",
		"title ILIKE $4",
		"description ILIKE $4",
		"ORDER BY due_date DESC NULLS LAST, id DESC",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("query missing %q: %s", want, sql)
		}
	}
	if len(args) != 4 {
		t.Fatalf("args = %v", args)
	}
	if args[3] != `%50\%\_off%` {
		t.Errorf("search pattern = %v", args[3])
	}
}

func TestBuildTaskListSortWhitelist(t *testing.T) {
	sql, _ := buildTaskList(domain.TaskQuery{OwnerID: "o", SortBy: domain.TaskSort("title; DROP TABLE tasks")})
	if strings.Contains(sql, "DROP") {
		t.Fatalf("sort field injected: %s", sql)
	}
	if !strings.Contains(sql, "ORDER BY created_at") {
		t.Errorf("unknown sort should fall back to created_at: %s", sql)
	}

	sql, _ = buildTaskList(domain.TaskQuery{OwnerID: "o", SortBy: domain.SortPriority})
	if !strings.Contains(sql, "CASE priority") {
		t.Errorf("priority should sort by rank: %s", sql)
	}
}

func TestBuildTaskUpdateOnlyPresentFields(t *testing.T) {
	sql, args := buildTaskUpdate("owner", "task", domain.TaskPatch{Status: domain.Some(domain.StatusCompleted)})

	if strings.Contains(sql, "title =") || strings.Contains(sql, "due_date =") {
		t.Errorf("absent fields in update: %s", sql)
	}
	if !strings.Contains(sql, "status = $1") || !strings.Contains(sql, "WHERE id = $2 AND user_id = $3") {
		t.Errorf("unexpected update: %s", sql)
	}
	if len(args) != 3 || args[0] != "completed" || args[1] != "task" || args[2] != "owner" {
		t.Errorf("args = %v", args)
	}
}

func TestBuildTaskUpdateClearsDueDate(t *testing.T) {
	sql, args := buildTaskUpdate("owner", "task", domain.TaskPatch{
		DueDate:     domain.Null[time.Time](),
		Description: domain.Null[string](),
	})
	if !strings.Contains(sql, "description = $1") || !strings.Contains(sql, "due_date = $2") {
		t.Fatalf("unexpected update: %s", sql)
	}
	if args[0] != "" {
		t.Errorf("description arg = %v, want empty", args[0])
	}
	if due, ok := args[1].(*time.Time); !ok || due != nil {
		t.Errorf("due arg = %#v, want nil *time.Time", args[1])
	}
}

func TestBuildUserUpdate(t *testing.T) {
	sql, args := buildUserUpdate("user", domain.UserPatch{Email: domain.Some(" A@X.com"), Bio: domain.Null[string]()})
	if !strings.Contains(sql, "email = $1") || !strings.Contains(sql, "bio = $2") || !strings.Contains(sql, "WHERE id = $3") {
		t.Fatalf("unexpected update: %s", sql)
	}
	if strings.Contains(sql, "name =") {
		t.Errorf("name should be untouched: %s", sql)
	}
	if args[0] != "a@x.com" || args[1] != "" {
		t.Errorf("args = %v", args)
	}
}

func TestLikePattern(t *testing.T) {
	if got := likePattern(`a\b`); got != `%a\\b%` {
		t.Errorf("likePattern = %q", got)
	}
}

func TestValidIDs(t *testing.T) {
	if validIDs("not-a-uuid") {
		t.Error("malformed id accepted")
	}
	if !validIDs("3f2504e0-4f89-11d3-9a0c-0305e82c3301") {
		t.Error("valid uuid rejected")
	}
}
