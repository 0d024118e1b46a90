package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/taskhub/internal/domain/note"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const noteColumns = `id, content, task_id, user_id, is_admin_note, created_at, updated_at`

type NotesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewNotesRepo(pool *pgxpool.Pool, prom *observability.Prom) *NotesRepo {
	return &NotesRepo{pool: pool, prom: prom}
}

func scanNote(row pgx.Row) (note.Note, error) {
	var n note.Note
	err := row.Scan(&n.ID, &n.Content, &n.TaskID, &n.UserID, &n.IsAdminNote, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func (r *NotesRepo) Create(ctx context.Context, n note.Note) (note.Note, error) {
	err := observe(r.prom, "notes.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO notes (`+noteColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			n.ID, n.Content, n.TaskID, n.UserID, n.IsAdminNote, n.CreatedAt, n.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return note.Note{}, err
	}
	return n, nil
}

func (r *NotesRepo) GetByID(ctx context.Context, id string) (note.Note, error) {
	var n note.Note

	err := observe(r.prom, "notes.get_by_id", func() error {
		var err error
		n, err = scanNote(r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id))
		return err
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, note.ErrNotFound
		}
		return note.Note{}, err
	}
	return n, nil
}

func (r *NotesRepo) ListByTask(ctx context.Context, taskID string) ([]note.Note, error) {
	out := make([]note.Note, 0)

	err := observe(r.prom, "notes.list_by_task", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+noteColumns+` FROM notes WHERE task_id = $1 ORDER BY created_at DESC, id DESC`, taskID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			n, err := scanNote(rows)
			if err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	return out, err
}

func (r *NotesRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := observe(r.prom, "notes.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return note.ErrNotFound
	}
	return nil
}
