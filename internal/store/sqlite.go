package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Expiry columns hold unix seconds.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS spec_cache (
	id         TEXT PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	specs      TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS validated_components (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	brand       TEXT NOT NULL,
	model       TEXT NOT NULL,
	part_number TEXT NOT NULL DEFAULT '',
	entry       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_spec_cache_expires_at ON spec_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_validated_components_type ON validated_components(type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedSpecs(ctx context.Context, key string) ([]model.SpecField, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT specs FROM spec_cache WHERE cache_key = ? AND expires_at > ?`,
		key, s.now().Unix(),
	)

	var specsJSON string
	err := row.Scan(&specsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached specs")
	}
	var specs []model.SpecField
	if err := json.Unmarshal([]byte(specsJSON), &specs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached specs")
	}
	return specs, nil
}

func (s *SQLiteStore) SetCachedSpecs(ctx context.Context, key string, specs []model.SpecField, ttl time.Duration) error {
	now := s.now().UTC()
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal specs")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO spec_cache (id, cache_key, specs, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET specs = excluded.specs, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		uuid.New().String(), key, string(specsJSON), now.Unix(), now.Add(ttl).Unix(),
	)
	return eris.Wrap(err, "sqlite: set cached specs")
}

func (s *SQLiteStore) DeleteExpiredSpecs(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM spec_cache WHERE expires_at <= ?`,
		s.now().Unix(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired specs")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) SaveValidated(ctx context.Context, entry catalog.Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal entry")
	}
	now := s.now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO validated_components (id, type, brand, model, part_number, entry, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET part_number = excluded.part_number, entry = excluded.entry, updated_at = excluded.updated_at`,
		validatedID(entry), string(entry.Type), entry.Canonical.Brand, entry.Canonical.Model,
		entry.Canonical.PartNumber, string(entryJSON), now, now,
	)
	return eris.Wrap(err, "sqlite: save validated")
}

func (s *SQLiteStore) ListValidated(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entry FROM validated_components ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list validated")
	}
	defer rows.Close() //nolint:errcheck

	var entries []catalog.Entry
	for rows.Next() {
		var entryJSON string
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan validated")
		}
		var e catalog.Entry
		if err := json.Unmarshal([]byte(entryJSON), &e); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal validated")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate validated")
}
