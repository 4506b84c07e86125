package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hardware-cli/internal/catalog"
	"github.com/sells-group/hardware-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS spec_cache`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedSpecs_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT specs FROM spec_cache`).
		WithArgs("intel_ark_spider:https://unknown").
		WillReturnError(pgx.ErrNoRows)

	specs, err := s.GetCachedSpecs(context.Background(), "intel_ark_spider:https://unknown")
	require.NoError(t, err)
	assert.Nil(t, specs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedSpecs_Hit(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	data, err := json.Marshal(sampleSpecs())
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT specs FROM spec_cache WHERE cache_key = \$1`).
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"specs"}).AddRow(data))

	specs, err := s.GetCachedSpecs(context.Background(), "k")
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, model.TierOfficial, specs[0].Tier())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCachedSpecs_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT specs FROM spec_cache`).
		WithArgs("k").
		WillReturnError(assert.AnError)

	_, err := s.GetCachedSpecs(context.Background(), "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get cached specs")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetCachedSpecs_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT \(cache_key\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), "k", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SetCachedSpecs(context.Background(), "k", sampleSpecs(), time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteExpiredSpecs(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM spec_cache WHERE expires_at <= now\(\)`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.DeleteExpiredSpecs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveValidated(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	entry := catalog.Entry{
		Type:      model.ComponentCPU,
		Canonical: model.Canonical{Brand: "AMD", Model: "Ryzen 7 7800X3D"},
	}
	mock.ExpectExec(`INSERT INTO validated_components`).
		WithArgs(validatedID(entry), "CPU", "AMD", "Ryzen 7 7800X3D", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveValidated(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListValidated(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	a, err := json.Marshal(catalog.Entry{Type: model.ComponentCPU, Canonical: model.Canonical{Brand: "AMD", Model: "Ryzen 7 7800X3D"}})
	require.NoError(t, err)
	b, err := json.Marshal(catalog.Entry{Type: model.ComponentRAM, Canonical: model.Canonical{Brand: "Kingston", Model: "Fury Beast"}})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT entry FROM validated_components`).
		WillReturnRows(pgxmock.NewRows([]string{"entry"}).AddRow(a).AddRow(b))

	list, err := s.ListValidated(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Fury Beast", list[1].Canonical.Model)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidatedID_StablePerModel(t *testing.T) {
	t.Parallel()

	a := catalog.Entry{Type: model.ComponentCPU, Canonical: model.Canonical{Brand: "AMD", Model: "Ryzen 7 7800X3D"}}
	b := a
	b.Canonical.Brand = "amd"
	b.Canonical.PartNumber = "100-100000910WOF"
	assert.Equal(t, validatedID(a), validatedID(b))

	b.Type = model.ComponentGPU
	assert.NotEqual(t, validatedID(a), validatedID(b))
}
