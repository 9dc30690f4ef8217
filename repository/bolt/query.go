package bolt

import (
	"sort"
	"strings"

	"github.com/fastygo/taskboard/domain"
)

func matches(q domain.TaskQuery, t *domain.Task) bool {
	if t.UserID != q.OwnerID {
		return false
	}
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Priority != "" && t.Priority != q.Priority {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// sortTasks orders tasks by field; missing due dates go last in either direction
// and ids break ties.
func sortTasks(tasks []domain.Task, field domain.TaskSort, desc bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		if field == domain.SortDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}
		c := compare(a, b, field)
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b *domain.Task, field domain.TaskSort) int {
	switch field {
	case domain.SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case domain.SortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	case domain.SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case domain.SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return a.DueDate.Compare(*b.DueDate)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
