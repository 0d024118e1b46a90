package mongodb

import (
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/service"
	"go.mongodb.org/mongo-driver/bson"
)

var (
	_ service.UserStore = (*UsersRepo)(nil)
	_ service.TaskStore = (*TasksRepo)(nil)
	_ service.NoteStore = (*NotesRepo)(nil)
)

func TestListMatch(t *testing.T) {
	status := task.StatusCompleted
	priority := task.PriorityHigh

	got := listMatch(task.ListTasksFilter{
		Scope:    task.Scope{AssigneeID: "u1"},
		Status:   &status,
		Priority: &priority,
	})

	want := bson.M{"assignedTo": "u1", "status": "completed", "priority": "high"}
	if len(got) != len(want) {
		t.Fatalf("listMatch = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("listMatch[%q] = %v, want %v", k, got[k], v)
		}
	}

	if m := listMatch(task.ListTasksFilter{}); len(m) != 0 {
		t.Fatalf("empty filter should match everything, got %v", m)
	}
}

func TestSortStages(t *testing.T) {
	tests := []struct {
		sort   task.Sort
		stages int
	}{
		{task.Sort{Field: "createdAt", Desc: true}, 1},
		{task.Sort{Field: "title"}, 1},
		{task.Sort{Field: "priority", Desc: true}, 3},
		{task.Sort{Field: "dueDate"}, 3},
	}

	for _, tt := range tests {
		if got := len(sortStages(tt.sort)); got != tt.stages {
			t.Fatalf("sortStages(%+v) has %d stages, want %d", tt.sort, got, tt.stages)
		}
	}
}
