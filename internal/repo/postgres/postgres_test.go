package postgres

import (
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/service"
)

var (
	_ service.UserStore = (*UsersRepo)(nil)
	_ service.TaskStore = (*TasksRepo)(nil)
	_ service.NoteStore = (*NotesRepo)(nil)
)

func TestWhereClause(t *testing.T) {
	status := task.StatusPending
	priority := task.PriorityHigh

	tests := []struct {
		name     string
		scope    task.Scope
		status   *task.Status
		priority *task.Priority
		want     string
		wantArgs int
	}{
		{"none", task.Scope{}, nil, nil, "", 0},
		{"scope", task.Scope{AssigneeID: "u1"}, nil, nil, " WHERE assigned_to = $1", 1},
		{"status and priority", task.Scope{}, &status, &priority, " WHERE status = $1 AND priority = $2", 2},
		{"all", task.Scope{AssigneeID: "u1"}, &status, &priority, " WHERE assigned_to = $1 AND status = $2 AND priority = $3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := whereClause(tt.scope, tt.status, tt.priority)
			if got != tt.want || len(args) != tt.wantArgs {
				t.Fatalf("whereClause = %q (%d args), want %q (%d args)", got, len(args), tt.want, tt.wantArgs)
			}
		})
	}
}

func TestOrderBy(t *testing.T) {
	tests := []struct {
		sort task.Sort
		want string
	}{
		{task.Sort{Field: "createdAt", Desc: true}, " ORDER BY created_at DESC NULLS LAST, id DESC"},
		{task.Sort{Field: "dueDate"}, " ORDER BY due_date ASC NULLS LAST, id ASC"},
		{task.Sort{Field: "unknown"}, " ORDER BY created_at DESC NULLS LAST, id DESC"},
	}

	for _, tt := range tests {
		if got := orderBy(tt.sort); got != tt.want {
			t.Fatalf("orderBy(%+v) = %q, want %q", tt.sort, got, tt.want)
		}
	}
}
