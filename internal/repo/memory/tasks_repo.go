package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{items: make(map[string]task.Task)}
}

func (r *TasksRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) GetByID(_ context.Context, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

// snapshot copies the tasks matching scope, under the read lock.
func (r *TasksRepo) snapshot(scope task.Scope) []task.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]task.Task, 0, len(r.items))
	for _, t := range r.items {
		if scope.AssigneeID != "" && t.AssignedToID != scope.AssigneeID {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (r *TasksRepo) List(_ context.Context, filter task.ListTasksFilter) (task.Page, error) {
	all := r.snapshot(filter.Scope)

	matched := all[:0]
	for _, t := range all {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && t.Priority != *filter.Priority {
			continue
		}
		matched = append(matched, t)
	}

	sortTasks(matched, filter.Sort)

	return task.Page{
		Items: paginate(matched, filter.Offset, filter.Limit),
		Total: len(matched),
	}, nil
}

func sortTasks(items []task.Task, s task.Sort) {
	less := func(a, b task.Task) int {
		switch s.Field {
		case "updatedAt":
			return a.UpdatedAt.Compare(b.UpdatedAt)
		case "dueDate":
			if a.DueDate == nil || b.DueDate == nil {
				return 0
			}
			return a.DueDate.Compare(*b.DueDate)
		case "priority":
			return a.Priority.Rank() - b.Priority.Rank()
		case "status":
			return strings.Compare(string(a.Status), string(b.Status))
		case "title":
			return strings.Compare(a.Title, b.Title)
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if s.Field == "dueDate" {
			// missing due dates go last in both directions
			if ni, nj := items[i].DueDate == nil, items[j].DueDate == nil; ni != nj {
				return nj
			}
		}

		c := less(items[i], items[j])
		if c == 0 {
			c = strings.Compare(items[i].ID, items[j].ID)
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

func (r *TasksRepo) Update(_ context.Context, id string, patch task.Patch) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	patch.Apply(&t)
	r.items[id] = t
	return t, nil
}

func (r *TasksRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return task.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *TasksRepo) Count(_ context.Context, scope task.Scope) (int, error) {
	return len(r.snapshot(scope)), nil
}

func (r *TasksRepo) Stats(_ context.Context, scope task.Scope, window task.StatsWindow) (task.Stats, error) {
	tasks := r.snapshot(scope)

	byStatus := map[string]int{}
	byPriority := map[string]int{}
	st := task.Stats{Total: len(tasks)}

	for _, t := range tasks {
		byStatus[string(t.Status)]++
		byPriority[string(t.Priority)]++

		if t.DueDate != nil && t.DueDate.Before(window.Now) && !t.Status.Closed() {
			st.Overdue++
		}
		if t.Status == task.StatusCompleted && t.CompletedAt != nil && !t.CompletedAt.Before(window.WeekAgo) {
			st.CompletedThisWeek++
		}
	}

	st.ByStatus = groupCounts(byStatus)
	st.ByPriority = groupCounts(byPriority)
	return st, nil
}

func groupCounts(m map[string]int) []task.GroupCount {
	out := make([]task.GroupCount, 0, len(m))
	for k, v := range m {
		out = append(out, task.GroupCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *TasksRepo) CountByAssignee(_ context.Context) ([]task.UserBreakdown, error) {
	rows := map[string]*task.UserBreakdown{}

	for _, t := range r.snapshot(task.Scope{}) {
		row, ok := rows[t.AssignedToID]
		if !ok {
			row = &task.UserBreakdown{UserID: t.AssignedToID}
			rows[t.AssignedToID] = row
		}

		row.Total++
		switch t.Status {
		case task.StatusCompleted:
			row.Completed++
		case task.StatusPending:
			row.Pending++
		case task.StatusInProgress:
			row.InProgress++
		}
	}

	out := make([]task.UserBreakdown, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (r *TasksRepo) Recent(_ context.Context, limit int) ([]task.Task, error) {
	tasks := r.snapshot(task.Scope{})
	sortTasks(tasks, task.Sort{Field: "createdAt", Desc: true})
	return paginate(tasks, 0, limit), nil
}
