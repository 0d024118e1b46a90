package policy

import (
	"testing"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

var (
	admin    = user.Principal{ID: "admin-1", Role: user.RoleAdmin}
	assignee = user.Principal{ID: "user-1", Role: user.RoleUser}
	stranger = user.Principal{ID: "user-2", Role: user.RoleUser}
)

func TestCanViewTask(t *testing.T) {
	tk := task.Task{ID: "t1", AssignedToID: assignee.ID}

	tests := []struct {
		name string
		p    user.Principal
		want bool
	}{
		{name: "admin", p: admin, want: true},
		{name: "assignee", p: assignee, want: true},
		{name: "stranger", p: stranger, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := CanViewTask(tt.p, tk)
			if d.Allowed != tt.want {
				t.Fatalf("Allowed = %v, want %v", d.Allowed, tt.want)
			}
			if !d.Allowed && d.Reason == "" {
				t.Fatalf("deny decision should carry a reason")
			}
		})
	}
}

func TestTaskUpdateFields(t *testing.T) {
	tk := task.Task{ID: "t1", AssignedToID: assignee.ID}

	d, fields := TaskUpdate(assignee, tk)
	if !d.Allowed {
		t.Fatalf("assignee should be allowed to update")
	}
	for _, f := range []Field{FieldStatus, FieldResponse} {
		if !fields.Has(f) {
			t.Fatalf("assignee should be able to set %s", f)
		}
	}
	for _, f := range []Field{FieldTitle, FieldDescription, FieldAssignedTo, FieldPriority, FieldDueDate} {
		if fields.Has(f) {
			t.Fatalf("assignee must not be able to set %s", f)
		}
	}

	d, fields = TaskUpdate(admin, tk)
	if !d.Allowed || !fields.Has(FieldTitle) || !fields.Has(FieldAssignedTo) {
		t.Fatalf("admin should be able to set every field")
	}

	d, fields = TaskUpdate(stranger, tk)
	if d.Allowed || len(fields) != 0 {
		t.Fatalf("stranger must be denied with no fields, got %+v %v", d, fields)
	}
}

func TestTaskScope(t *testing.T) {
	if s := TaskScope(admin); s.AssigneeID != "" {
		t.Fatalf("admin scope should be unrestricted, got %q", s.AssigneeID)
	}
	if s := TaskScope(assignee); s.AssigneeID != assignee.ID {
		t.Fatalf("user scope = %q, want %q", s.AssigneeID, assignee.ID)
	}
}

func TestCanDeleteNote(t *testing.T) {
	n := note.Note{ID: "n1", UserID: assignee.ID}

	if !CanDeleteNote(assignee, n).Allowed {
		t.Fatalf("author should delete own note")
	}
	if !CanDeleteNote(admin, n).Allowed {
		t.Fatalf("admin should delete any note")
	}
	if CanDeleteNote(stranger, n).Allowed {
		t.Fatalf("non-author user must not delete the note")
	}
}

func TestAdminOnlyDecisions(t *testing.T) {
	for name, fn := range map[string]func(user.Principal) Decision{
		"create":    CanCreateTask,
		"delete":    CanDeleteTask,
		"assign":    CanAssignTask,
		"analytics": CanViewAnalytics,
		"users":     CanManageUsers,
	} {
		if !fn(admin).Allowed {
			t.Fatalf("%s: admin should be allowed", name)
		}
		if fn(assignee).Allowed {
			t.Fatalf("%s: user should be denied", name)
		}
	}
}
