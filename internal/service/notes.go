package service

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/taskhub/internal/apperr"
	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/policy"
	"github.com/google/uuid"
)

type Notes struct {
	notes    NoteStore
	tasks    TaskStore
	populate populator
	now      clock
}

func NewNotes(notes NoteStore, tasks TaskStore, users UserStore) *Notes {
	return &Notes{
		notes:    notes,
		tasks:    tasks,
		populate: populator{users: users},
		now:      utcNow,
	}
}

func (s *Notes) loadTask(ctx context.Context, taskID string) (task.Task, error) {
	t, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return task.Task{}, apperr.NotFound("Task not found")
		}
		return task.Task{}, apperr.Internal("Could not fetch task", err)
	}
	return t, nil
}

// List returns the notes of a task, newest first.
func (s *Notes) List(ctx context.Context, p user.Principal, taskID string) ([]note.Populated, error) {
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if d := policy.CanViewNotes(p, t); !d.Allowed {
		return nil, apperr.Forbidden(d.Reason)
	}

	notes, err := s.notes.ListByTask(ctx, taskID)
	if err != nil {
		return nil, apperr.Internal("Could not list notes", err)
	}

	out, err := s.populate.notes(ctx, notes)
	if err != nil {
		return nil, apperr.Internal("Could not list notes", err)
	}
	return out, nil
}

func (s *Notes) Add(ctx context.Context, p user.Principal, taskID string, req note.CreateNoteRequest) (note.Populated, error) {
	t, err := s.loadTask(ctx, taskID)
	if err != nil {
		return note.Populated{}, err
	}

	if d := policy.CanAddNote(p, t); !d.Allowed {
		return note.Populated{}, apperr.Forbidden(d.Reason)
	}

	now := s.now()

	created, err := s.notes.Create(ctx, note.Note{
		ID:          uuid.NewString(),
		Content:     strings.TrimSpace(req.Content),
		TaskID:      taskID,
		UserID:      p.ID,
		IsAdminNote: p.IsAdmin(),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return note.Populated{}, apperr.Internal("Could not add note", err)
	}

	out, err := s.populate.notes(ctx, []note.Note{created})
	if err != nil {
		return note.Populated{}, apperr.Internal("Could not add note", err)
	}
	return out[0], nil
}

func (s *Notes) Delete(ctx context.Context, p user.Principal, id string) error {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, note.ErrNotFound) {
			return apperr.NotFound("Note not found")
		}
		return apperr.Internal("Could not fetch note", err)
	}

	if d := policy.CanDeleteNote(p, n); !d.Allowed {
		return apperr.Forbidden(d.Reason)
	}

	if err := s.notes.Delete(ctx, id); err != nil {
		if errors.Is(err, note.ErrNotFound) {
			return apperr.NotFound("Note not found")
		}
		return apperr.Internal("Could not delete note", err)
	}
	return nil
}
