package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/db"
	"github.com/sells-group/hardware-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements are prepared on each new connection.
var preparedStatements = map[string]string{
	"get_cached_specs": `SELECT specs FROM spec_cache WHERE cache_key = $1 AND expires_at > now()`,
	"list_validated":   `SELECT entry FROM validated_components ORDER BY created_at, id`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS spec_cache (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	cache_key  TEXT NOT NULL UNIQUE,
	specs      JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS validated_components (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	brand       TEXT NOT NULL,
	model       TEXT NOT NULL,
	part_number TEXT NOT NULL DEFAULT '',
	entry       JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_spec_cache_expires_at ON spec_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_validated_components_type ON validated_components(type);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetCachedSpecs(ctx context.Context, key string) ([]model.SpecField, error) {
	var specsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT specs FROM spec_cache WHERE cache_key = $1 AND expires_at > now()`,
		key,
	).Scan(&specsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached specs")
	}
	var specs []model.SpecField
	if err := json.Unmarshal(specsJSON, &specs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached specs")
	}
	return specs, nil
}

func (s *PostgresStore) SetCachedSpecs(ctx context.Context, key string, specs []model.SpecField, ttl time.Duration) error {
	now := time.Now().UTC()
	specsJSON, err := json.Marshal(specs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal specs")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO spec_cache (id, cache_key, specs, cached_at, expires_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (cache_key) DO UPDATE SET specs = $3, cached_at = $4, expires_at = $5`,
		uuid.New().String(), key, specsJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached specs")
}

func (s *PostgresStore) DeleteExpiredSpecs(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM spec_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired specs")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SaveValidated(ctx context.Context, entry catalog.Entry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal entry")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO validated_components (id, type, brand, model, part_number, entry, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		 ON CONFLICT (id) DO UPDATE SET part_number = $5, entry = $6, updated_at = now()`,
		validatedID(entry), string(entry.Type), entry.Canonical.Brand, entry.Canonical.Model,
		entry.Canonical.PartNumber, entryJSON,
	)
	return eris.Wrap(err, "postgres: save validated")
}

func (s *PostgresStore) ListValidated(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT entry FROM validated_components ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list validated")
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		var entryJSON []byte
		if err := rows.Scan(&entryJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan validated")
		}
		var e catalog.Entry
		if err := json.Unmarshal(entryJSON, &e); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal validated")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate validated")
}
