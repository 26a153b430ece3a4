package repositories

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/cbodonnell/scoreboard/pkg/log"
	"github.com/cbodonnell/scoreboard/pkg/match"
	"github.com/cbodonnell/scoreboard/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

// PostgresRepository stores matches in Postgres over a single connection.
// pgx.Conn is not safe for concurrent use, so every call holds lock.
type PostgresRepository struct {
	lock sync.Mutex
	conn *pgx.Conn
}

// NewPostgresRepository connects to connStr and applies migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string, migrations fs.FS) (*PostgresRepository, error) {
	conn, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(migrations, func(name, migration string) error {
		_, err := conn.Exec(ctx, migration)
		return err
	}); err != nil {
		conn.Close(ctx)
		return nil, err
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = conn.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return conn, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) SaveMatch(ctx context.Context, doc *match.Document) error {
	if doc == nil {
		return fmt.Errorf("match document is nil")
	}
	record, err := EncodeRecord(doc)
	if err != nil {
		return err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	INSERT INTO matches (id, record, updated_at) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET record = $2, updated_at = $3;
	`
	if _, err := r.conn.Exec(ctx, q, doc.ID, record, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save match %s: %v", doc.ID, err)
	}

	return nil
}

func (r *PostgresRepository) LoadMatch(ctx context.Context, id string) (*match.Document, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	SELECT id, record, updated_at FROM matches WHERE id = $1;
	`
	row := models.MatchRow{}
	if err := r.conn.QueryRow(ctx, q, id).Scan(&row.ID, &row.Record, &row.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("failed to scan match %s: %v", id, err)
	}

	return DecodeRecord(row.Record)
}

func (r *PostgresRepository) DeleteMatch(ctx context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM matches WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete match %s: %v", id, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM match_index WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("failed to delete index entry %s: %v", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) PutSummary(ctx context.Context, summary match.Summary) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	q := `
	INSERT INTO match_index (id, position, mode, name)
	VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM match_index), $2, $3)
	ON CONFLICT (id) DO UPDATE SET mode = $2, name = $3;
	`
	if _, err := r.conn.Exec(ctx, q, summary.ID, summary.Mode, summary.Name); err != nil {
		return fmt.Errorf("failed to save index entry %s: %v", summary.ID, err)
	}

	return nil
}

func (r *PostgresRepository) ListSummaries(ctx context.Context) ([]match.Summary, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	rows, err := r.conn.Query(ctx, `SELECT id, position, mode, name FROM match_index ORDER BY position;`)
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
