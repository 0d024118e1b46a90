package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/note"
)

type NotesRepo struct {
	mu    sync.RWMutex
	items map[string]note.Note
}

func NewNotesRepo() *NotesRepo {
	return &NotesRepo{items: make(map[string]note.Note)}
}

func (r *NotesRepo) Create(_ context.Context, n note.Note) (note.Note, error) {
	r.mu.Lock()
	r.items[n.ID] = n
	r.mu.Unlock()

	return n, nil
}

func (r *NotesRepo) GetByID(_ context.Context, id string) (note.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.items[id]
	if !ok {
		return note.Note{}, note.ErrNotFound
	}
	return n, nil
}

func (r *NotesRepo) ListByTask(_ context.Context, taskID string) ([]note.Note, error) {
	r.mu.RLock()
	out := make([]note.Note, 0)
	for _, n := range r.items {
		if n.TaskID == taskID {
			out = append(out, n)
		}
	}
	r.mu.RUnlock()

	// newest first
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *NotesRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return note.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
