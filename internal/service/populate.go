package service

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

// populator resolves user references with one store query per batch.
type populator struct {
	users UserStore
}

type refMap map[string]user.Ref

// ref falls back to an id-only reference when the user no longer exists.
func (m refMap) ref(id string) user.Ref {
	if r, ok := m[id]; ok {
		return r
	}
	return user.Ref{ID: id}
}

func (p populator) refs(ctx context.Context, ids []string) (refMap, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	out := make(refMap, len(unique))
	if len(unique) == 0 {
		return out, nil
	}

	users, err := p.users.ListByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		out[u.ID] = u.Ref()
	}
	return out, nil
}

func (p populator) tasks(ctx context.Context, tasks []task.Task) ([]task.Populated, error) {
	ids := make([]string, 0, len(tasks)*2)
	for _, t := range tasks {
		ids = append(ids, t.AssignedToID, t.CreatedByID)
	}

	m, err := p.refs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]task.Populated, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, task.Populated{
			Task:       t,
			AssignedTo: m.ref(t.AssignedToID),
			CreatedBy:  m.ref(t.CreatedByID),
		})
	}
	return out, nil
}

func (p populator) task(ctx context.Context, t task.Task) (task.Populated, error) {
	out, err := p.tasks(ctx, []task.Task{t})
	if err != nil {
		return task.Populated{}, err
	}
	return out[0], nil
}

func (p populator) notes(ctx context.Context, notes []note.Note) ([]note.Populated, error) {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.UserID)
	}

	m, err := p.refs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]note.Populated, 0, len(notes))
	for _, n := range notes {
		out = append(out, note.Populated{Note: n, User: m.ref(n.UserID)})
	}
	return out, nil
}
