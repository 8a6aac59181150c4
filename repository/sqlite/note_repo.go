package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sorayamlj/FocusTache/domain"
	"github.com/sorayamlj/FocusTache/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository returns a NoteRepository stored in SQLite.
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner, title, content, created_at, updated_at
		 FROM notes WHERE owner = ?1 ORDER BY updated_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var (
			n                domain.Note
			created, updated string
		)
		if err := rows.Scan(&n.ID, &n.Owner, &n.Title, &n.Content, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if n.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if n.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
