// Package service implements the task, note, user and auth operations on top
// of the store interfaces below. Every store implementation in internal/repo
// satisfies them.
package service

import (
	"context"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type UserStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]user.User, error)
	List(ctx context.Context, filter user.ListUsersFilter) ([]user.User, int, error)
	Count(ctx context.Context, role *user.Role) (int, error)
	Update(ctx context.Context, id string, patch user.Patch, now time.Time) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type TaskStore interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, filter task.ListTasksFilter) (task.Page, error)
	Update(ctx context.Context, id string, patch task.Patch) (task.Task, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, scope task.Scope) (int, error)
	Stats(ctx context.Context, scope task.Scope, window task.StatsWindow) (task.Stats, error)
	// CountByAssignee returns per-assignee counters; user name/email are
	// filled in by the caller.
	CountByAssignee(ctx context.Context) ([]task.UserBreakdown, error)
	Recent(ctx context.Context, limit int) ([]task.Task, error)
}

type NoteStore interface {
	Create(ctx context.Context, n note.Note) (note.Note, error)
	GetByID(ctx context.Context, id string) (note.Note, error)
	ListByTask(ctx context.Context, taskID string) ([]note.Note, error)
	Delete(ctx context.Context, id string) error
}

// TransitionObserver is told the target status of every task status change.
type TransitionObserver interface {
	ObserveTransition(status string)
}

type clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
