// Package store persists fetched spec lists and the validated catalog.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/model"
)

// Store is the persistence interface for the pipeline.
type Store interface {
	// Spec cache, keyed "spiderID:url". A miss returns nil, nil.
	GetCachedSpecs(ctx context.Context, key string) ([]model.SpecField, error)
	SetCachedSpecs(ctx context.Context, key string, specs []model.SpecField, ttl time.Duration) error
	DeleteExpiredSpecs(ctx context.Context) (int, error)

	// Validated catalog: entries confirmed by cross-validation.
	SaveValidated(ctx context.Context, entry catalog.Entry) error
	ListValidated(ctx context.Context) ([]catalog.Entry, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates a store for driver and runs its migrations.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch strings.ToLower(driver) {
	case DriverSQLite, "":
		if dsn == "" {
			dsn = "hardware.db"
		}
		st, err = NewSQLite(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, eris.New("store: postgres requires a database url")
		}
		st, err = NewPostgres(ctx, dsn, poolCfg)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// CacheKey builds the spec cache key for a spider and URL.
func CacheKey(spiderID, url string) string {
	return spiderID + ":" + url
}

// validatedID is stable per type, brand and model so re-validation upserts.
func validatedID(e catalog.Entry) string {
	return model.ComponentID("", "validated|"+string(e.Type)+"|"+
		strings.ToLower(e.Canonical.Brand)+"|"+strings.ToLower(e.Canonical.Model))
}

func validateEntry(e catalog.Entry) error {
	if !e.Type.Valid() {
		return eris.Errorf("store: invalid component type %q", e.Type)
	}
	if strings.TrimSpace(e.Canonical.Model) == "" {
		return eris.New("store: validated entry has no model")
	}
	return nil
}
