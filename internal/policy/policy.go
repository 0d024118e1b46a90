// Package policy holds every role and ownership decision of the application.
// Services ask here instead of branching on roles themselves.
package policy

import (
	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

func adminOnly(p user.Principal, reason string) Decision {
	if p.IsAdmin() {
		return allow()
	}
	return deny(reason)
}

// TaskScope is the slice of tasks a principal may list or count.
func TaskScope(p user.Principal) task.Scope {
	if p.IsAdmin() {
		return task.Scope{}
	}
	return task.Scope{AssigneeID: p.ID}
}

func isAssignee(p user.Principal, t task.Task) bool {
	return t.AssignedToID != "" && t.AssignedToID == p.ID
}

func CanViewTask(p user.Principal, t task.Task) Decision {
	if p.IsAdmin() || isAssignee(p, t) {
		return allow()
	}
	return deny("Not authorized to access this task")
}

func CanCreateTask(p user.Principal) Decision {
	return adminOnly(p, "Only admins can create tasks")
}

func CanDeleteTask(p user.Principal) Decision {
	return adminOnly(p, "Only admins can delete tasks")
}

func CanAssignTask(p user.Principal) Decision {
	return adminOnly(p, "Only admins can assign tasks")
}

func CanViewAnalytics(p user.Principal) Decision {
	return adminOnly(p, "Admin access required")
}

func CanManageUsers(p user.Principal) Decision {
	return adminOnly(p, "Admin access required")
}

func CanViewNotes(p user.Principal, t task.Task) Decision {
	if p.IsAdmin() || isAssignee(p, t) {
		return allow()
	}
	return deny("Not authorized to view notes for this task")
}

func CanAddNote(p user.Principal, t task.Task) Decision {
	if p.IsAdmin() || isAssignee(p, t) {
		return allow()
	}
	return deny("Not authorized to add notes to this task")
}

func CanDeleteNote(p user.Principal, n note.Note) Decision {
	if p.IsAdmin() || n.UserID == p.ID {
		return allow()
	}
	return deny("Not authorized to delete this note")
}
