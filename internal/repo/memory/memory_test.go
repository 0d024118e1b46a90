package memory

import (
	"context"
	"testing"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/service"
)

var (
	_ service.UserStore = (*UsersRepo)(nil)
	_ service.TaskStore = (*TasksRepo)(nil)
	_ service.NoteStore = (*NotesRepo)(nil)
)

var base = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func at(h int) *time.Time {
	v := base.Add(time.Duration(h) * time.Hour)
	return &v
}

func seedTasks(t *testing.T, r *TasksRepo, tasks ...task.Task) {
	t.Helper()
	for _, tk := range tasks {
		if _, err := r.Create(context.Background(), tk); err != nil {
			t.Fatalf("create %s: %v", tk.ID, err)
		}
	}
}

func ids(items []task.Task) []string {
	out := make([]string, 0, len(items))
	for _, t := range items {
		out = append(out, t.ID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTasksRepo_ListSorting(t *testing.T) {
	r := NewTasksRepo()
	seedTasks(t, r,
		task.Task{ID: "a", Title: "b-title", Priority: task.PriorityHigh, DueDate: at(5), CreatedAt: base},
		task.Task{ID: "b", Title: "a-title", Priority: task.PriorityLow, CreatedAt: base.Add(time.Minute)},
		task.Task{ID: "c", Title: "c-title", Priority: task.PriorityUrgent, DueDate: at(1), CreatedAt: base.Add(2 * time.Minute)},
		task.Task{ID: "d", Title: "d-title", Priority: task.PriorityMedium, CreatedAt: base.Add(3 * time.Minute)},
	)

	tests := []struct {
		sort string
		want []string
	}{
		{"-createdAt", []string{"d", "c", "b", "a"}},
		{"createdAt", []string{"a", "b", "c", "d"}},
		{"priority", []string{"b", "d", "a", "c"}},
		{"-priority", []string{"c", "a", "d", "b"}},
		{"dueDate", []string{"c", "a", "b", "d"}},
		{"-dueDate", []string{"a", "c", "d", "b"}},
		{"title", []string{"b", "a", "c", "d"}},
		{"bogus", []string{"d", "c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			page, err := r.List(context.Background(), task.ListTasksFilter{Sort: task.ParseSort(tt.sort), Limit: 10})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if got := ids(page.Items); !equal(got, tt.want) {
				t.Fatalf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTasksRepo_ListFiltersAndPaging(t *testing.T) {
	r := NewTasksRepo()
	for i, id := range []string{"t1", "t2", "t3", "t4", "t5"} {
		assignee := "u1"
		if i%2 == 1 {
			assignee = "u2"
		}
		seedTasks(t, r, task.Task{
			ID: id, AssignedToID: assignee, Status: task.StatusPending, Priority: task.PriorityMedium,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	status := task.StatusPending
	page, err := r.List(context.Background(), task.ListTasksFilter{
		Scope:  task.Scope{AssigneeID: "u1"},
		Status: &status,
		Sort:   task.Sort{Field: "createdAt"},
		Limit:  2,
		Offset: 2,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || !equal(ids(page.Items), []string{"t5"}) {
		t.Fatalf("page = %v total=%d", ids(page.Items), page.Total)
	}

	page, err = r.List(context.Background(), task.ListTasksFilter{Limit: 2, Offset: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 || len(page.Items) != 0 {
		t.Fatalf("past the end: %v total=%d", ids(page.Items), page.Total)
	}
}

func TestTasksRepo_Stats(t *testing.T) {
	now := base.Add(48 * time.Hour)
	window := task.NewStatsWindow(now)

	old := now.AddDate(0, 0, -8)
	recent := now.Add(-time.Hour)

	r := NewTasksRepo()
	seedTasks(t, r,
		task.Task{ID: "overdue", AssignedToID: "u1", Status: task.StatusPending, Priority: task.PriorityHigh, DueDate: at(1)},
		task.Task{ID: "closed-past-due", AssignedToID: "u1", Status: task.StatusCancelled, Priority: task.PriorityLow, DueDate: at(1)},
		task.Task{ID: "done-recent", AssignedToID: "u1", Status: task.StatusCompleted, Priority: task.PriorityHigh, CompletedAt: &recent},
		task.Task{ID: "done-old", AssignedToID: "u2", Status: task.StatusCompleted, Priority: task.PriorityLow, CompletedAt: &old},
	)

	st, err := r.Stats(context.Background(), task.Scope{}, window)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 4 || st.Overdue != 1 || st.CompletedThisWeek != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if len(st.ByStatus) != 3 || st.ByStatus[0].Key != "cancelled" {
		t.Fatalf("byStatus = %+v", st.ByStatus)
	}

	st, err = r.Stats(context.Background(), task.Scope{AssigneeID: "u2"}, window)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 1 || st.CompletedThisWeek != 0 {
		t.Fatalf("scoped stats = %+v", st)
	}
}

func TestTasksRepo_UpdateAndCountByAssignee(t *testing.T) {
	r := NewTasksRepo()
	seedTasks(t, r,
		task.Task{ID: "t1", AssignedToID: "u1", Status: task.StatusPending},
		task.Task{ID: "t2", AssignedToID: "u1", Status: task.StatusInProgress},
		task.Task{ID: "t3", AssignedToID: "u2", Status: task.StatusPending},
	)

	done := task.StatusCompleted
	updated, err := r.Update(context.Background(), "t1", task.Patch{Status: &done, UpdatedAt: base})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != done || !updated.UpdatedAt.Equal(base) {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := r.Update(context.Background(), "missing", task.Patch{}); err != task.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	rows, err := r.CountByAssignee(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	byUser := map[string]task.UserBreakdown{}
	for _, row := range rows {
		byUser[row.UserID] = row
	}
	if u1 := byUser["u1"]; u1.Total != 2 || u1.Completed != 1 || u1.InProgress != 1 {
		t.Fatalf("u1 = %+v", u1)
	}
	if u2 := byUser["u2"]; u2.Total != 1 || u2.Pending != 1 {
		t.Fatalf("u2 = %+v", u2)
	}

	if err := r.Delete(context.Background(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := r.Delete(context.Background(), "t1"); err != task.ErrNotFound {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUsersRepo(t *testing.T) {
	r := NewUsersRepo()
	ctx := context.Background()

	admin := user.RoleAdmin
	for i, u := range []user.User{
		{ID: "u1", Email: "a@example.com", Role: user.RoleUser, CreatedAt: base},
		{ID: "u2", Email: "b@example.com", Role: user.RoleAdmin, CreatedAt: base.Add(time.Minute)},
		{ID: "u3", Email: "c@example.com", Role: user.RoleUser, CreatedAt: base.Add(2 * time.Minute)},
	} {
		if _, err := r.Create(ctx, u); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	if _, err := r.Create(ctx, user.User{ID: "u4", Email: "a@example.com"}); err != user.ErrEmailAlreadyUsed {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	list, total, err := r.List(ctx, user.ListUsersFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(list) != 2 || list[0].ID != "u3" {
		t.Fatalf("list = %+v total=%d", list, total)
	}

	if n, _ := r.Count(ctx, &admin); n != 1 {
		t.Fatalf("admins = %d", n)
	}

	email := "c@example.com"
	if _, err := r.Update(ctx, "u1", user.Patch{Email: &email}, base); err != user.ErrEmailAlreadyUsed {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	found, err := r.ListByIDs(ctx, []string{"u1", "gone", "u3"})
	if err != nil || len(found) != 2 {
		t.Fatalf("ListByIDs = %+v (%v)", found, err)
	}
}

func TestNotesRepo_NewestFirst(t *testing.T) {
	r := NewNotesRepo()
	ctx := context.Background()

	for i, id := range []string{"n1", "n2", "n3"} {
		taskID := "t1"
		if id == "n2" {
			taskID = "t2"
		}
		if _, err := r.Create(ctx, note.Note{ID: id, TaskID: taskID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	notes, err := r.ListByTask(ctx, "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != "n3" || notes[1].ID != "n1" {
		t.Fatalf("notes = %+v", notes)
	}

	if _, err := r.GetByID(ctx, "missing"); err != note.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
