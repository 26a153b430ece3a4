package repositories

import (
	"context"
	"encoding/json"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/scoreboard/migrations"
	"github.com/cbodonnell/scoreboard/pkg/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scoreboard.db")
	r, err := NewSQLiteRepository(context.Background(), path, migrations.SQLite())
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(context.Background()) })
	return r
}

func testDocument(id, name string) *match.Document {
	return &match.Document{
		ID:       id,
		Name:     name,
		Settings: json.RawMessage(`{"startingMoney":1500}`),
		Game:     json.RawMessage(`{"globals":{"freeParking":0},"players":[{"id":0,"name":"Alice"}]}`),
	}
}

func TestRepositories(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) Repository
	}{
		{name: "memory", new: func(t *testing.T) Repository { return NewInMemoryRepository() }},
		{name: "sqlite", new: func(t *testing.T) Repository { return newTestSQLiteRepository(t) }},
	}
	for _, backend := range backends {
		t.Run(backend.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("save and load", func(t *testing.T) {
				r := backend.new(t)
				doc := testDocument("m1", "Friday")
				require.NoError(t, r.SaveMatch(ctx, doc))

				got, err := r.LoadMatch(ctx, "m1")
				require.NoError(t, err)
				assert.Equal(t, doc, got)
			})

			t.Run("save replaces", func(t *testing.T) {
				r := backend.new(t)
				require.NoError(t, r.SaveMatch(ctx, testDocument("m1", "Friday")))
				require.NoError(t, r.SaveMatch(ctx, testDocument("m1", "Saturday")))

				got, err := r.LoadMatch(ctx, "m1")
				require.NoError(t, err)
				assert.Equal(t, "Saturday", got.Name)
			})

			t.Run("missing match", func(t *testing.T) {
				r := backend.new(t)
				_, err := r.LoadMatch(ctx, "nope")
				require.Error(t, err)
				assert.True(t, IsNotFound(err))
			})

			t.Run("index keeps insertion order", func(t *testing.T) {
				r := backend.new(t)
				empty, err := r.ListSummaries(ctx)
				require.NoError(t, err)
				assert.Empty(t, empty)

				require.NoError(t, r.PutSummary(ctx, match.Summary{ID: "b", Mode: "money", Name: "First"}))
				require.NoError(t, r.PutSummary(ctx, match.Summary{ID: "a", Mode: "tally", Name: "Second"}))
				require.NoError(t, r.PutSummary(ctx, match.Summary{ID: "b", Mode: "money", Name: "Renamed"}))

				index, err := r.ListSummaries(ctx)
				require.NoError(t, err)
				assert.Equal(t, []match.Summary{
					{ID: "b", Mode: "money", Name: "Renamed"},
					{ID: "a", Mode: "tally", Name: "Second"},
				}, index)
			})

			t.Run("delete removes record and index entry", func(t *testing.T) {
				r := backend.new(t)
				require.NoError(t, r.SaveMatch(ctx, testDocument("m1", "Friday")))
				require.NoError(t, r.PutSummary(ctx, match.Summary{ID: "m1", Mode: "money", Name: "Friday"}))
				require.NoError(t, r.PutSummary(ctx, match.Summary{ID: "m2", Mode: "money", Name: "Other"}))

				require.NoError(t, r.DeleteMatch(ctx, "m1"))
				require.NoError(t, r.DeleteMatch(ctx, "m1"))

				_, err := r.LoadMatch(ctx, "m1")
				assert.True(t, IsNotFound(err))
				index, err := r.ListSummaries(ctx)
				require.NoError(t, err)
				assert.Equal(t, []match.Summary{{ID: "m2", Mode: "money", Name: "Other"}}, index)
			})

			t.Run("nil document", func(t *testing.T) {
				r := backend.new(t)
				assert.Error(t, r.SaveMatch(ctx, nil))
			})
		})
	}
}

func TestInMemoryRepository_StoresExactJSON(t *testing.T) {
	ctx := context.Background()
	r := NewInMemoryRepository()
	require.NoError(t, r.SaveMatch(ctx, testDocument("m1", "Friday")))

	raw, ok := r.Raw("m1")
	require.True(t, ok)
	assert.Equal(t,
		`{"id":"m1","settings":{"startingMoney":1500},"name":"Friday","game":{"globals":{"freeParking":0},"players":[{"id":0,"name":"Alice"}]}}`,
		string(raw))

	r.SetRaw("broken", []byte(`{"name":"no id"}`))
	_, err := r.LoadMatch(ctx, "broken")
	require.Error(t, err)
	assert.True(t, match.IsMalformedDocument(err))
}

func TestSQLiteRepository_ReadsUncompressedRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepository(t)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO matches (id, record, updated_at) VALUES (?, ?, ?);`,
		"old", []byte(`{"id":"old","name":"Before compression","game":{"players":[]}}`), 0)
	require.NoError(t, err)

	got, err := r.LoadMatch(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "Before compression", got.Name)
	assert.Equal(t, json.RawMessage(`null`), got.Settings)
}

func TestSQLiteRepository_StoresCompressedRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestSQLiteRepository(t)
	require.NoError(t, r.SaveMatch(ctx, testDocument("m1", "Friday")))

	var record []byte
	require.NoError(t, r.db.QueryRowContext(ctx, `SELECT record FROM matches WHERE id = ?;`, "m1").Scan(&record))
	assert.Equal(t, zstdMagic, record[:4])
}

func TestRecordCodec(t *testing.T) {
	doc := testDocument("m1", "Friday")
	data, err := EncodeRecord(doc)
	require.NoError(t, err)

	got, err := DecodeRecord(data)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	_, err = DecodeRecord(append(append([]byte(nil), zstdMagic...), 0xff, 0xff))
	assert.Error(t, err)

	_, err = DecodeRecord([]byte(`[]`))
	assert.True(t, match.IsMalformedDocument(err))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	r, err := Open(ctx, "memory://")
	require.NoError(t, err)
	assert.IsType(t, &InMemoryRepository{}, r)

	path := filepath.Join(t.TempDir(), "open.db")
	r, err = Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, r)
	require.NoError(t, r.Close(ctx))

	_, err = Open(ctx, "mysql://localhost/db")
	assert.Error(t, err)
}

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		connStr string
		want    string
	}{
		{connStr: "sqlite://scoreboard.db", want: "scoreboard.db"},
		{connStr: "sqlite:///var/lib/scoreboard.db", want: "/var/lib/scoreboard.db"},
		{connStr: "sqlite://data/scoreboard.db", want: "data/scoreboard.db"},
		{connStr: "sqlite://", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.connStr, func(t *testing.T) {
			u, err := url.Parse(tt.connStr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sqlitePath(u))
		})
	}
}
