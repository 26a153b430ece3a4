package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/cbodonnell/scoreboard/pkg/match"
	"github.com/cbodonnell/scoreboard/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies every .sql file
// of migrations in lexical order. Migrations must be idempotent.
func NewSQLiteRepository(ctx context.Context, path string, migrations fs.FS) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}
	// a single connection serializes writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	if err := applyMigrations(migrations, func(name, migration string) error {
		_, err := db.ExecContext(ctx, migration)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveMatch(ctx context.Context, doc *match.Document) error {
	if doc == nil {
		return fmt.Errorf("match document is nil")
	}
	record, err := EncodeRecord(doc)
	if err != nil {
		return err
	}

	q := `
	INSERT INTO matches (id, record, updated_at) VALUES (?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET record = excluded.record, updated_at = excluded.updated_at;
	`
	if _, err := r.db.ExecContext(ctx, q, doc.ID, record, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save match %s: %v", doc.ID, err)
	}

	return nil
}

func (r *SQLiteRepository) LoadMatch(ctx context.Context, id string) (*match.Document, error) {
	q := `
	SELECT id, record, updated_at FROM matches WHERE id = ?;
	`
	row := models.MatchRow{}
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&row.ID, &row.Record, &row.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to scan match %s: %v", id, err)
	}

	return DecodeRecord(row.Record)
}

func (r *SQLiteRepository) DeleteMatch(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("failed to delete match %s: %v", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_index WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("failed to delete index entry %s: %v", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) PutSummary(ctx context.Context, summary match.Summary) error {
	q := `
	INSERT INTO match_index (id, position, mode, name)
	VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM match_index), ?, ?)
	ON CONFLICT (id) DO UPDATE SET mode = excluded.mode, name = excluded.name;
	`
	if _, err := r.db.ExecContext(ctx, q, summary.ID, summary.Mode, summary.Name); err != nil {
		return fmt.Errorf("failed to save index entry %s: %v", summary.ID, err)
	}

	return nil
}

func (r *SQLiteRepository) ListSummaries(ctx context.Context) ([]match.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, position, mode, name FROM match_index ORDER BY position;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query match index: %v", err)
	}
	defer rows.Close()

	index := []match.Summary{}
	for rows.Next() {
		row := models.IndexRow{}
		if err := rows.Scan(&row.ID, &row.Position, &row.Mode, &row.Name); err != nil {
			return nil, fmt.Errorf("failed to scan index entry: %v", err)
		}
		index = append(index, match.Summary{ID: row.ID, Mode: row.Mode, Name: row.Name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read match index: %v", err)
	}

	return index, nil
}

func applyMigrations(migrations fs.FS, exec func(name, migration string) error) error {
	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migration, err := fs.ReadFile(migrations, entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %v", entry.Name(), err)
		}

		if err := exec(entry.Name(), string(migration)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", entry.Name(), err)
		}
	}

	return nil
}
