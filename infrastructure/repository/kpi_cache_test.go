package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

var kpiCacheColumns = []string{"cache_key", "tenant_id", "kind", "payload", "expires_at", "created_at", "updated_at"}

func TestKPICacheRepository_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewKPICacheRepository(db)
	getQuery := regexp.QuoteMeta("FROM kpi_cache kc WHERE kc.cache_key = $1 AND kc.expires_at > NOW()")
	now := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

	t.Run("Entrada válida encontrada", func(t *testing.T) {
		mock.ExpectQuery(getQuery).
			WithArgs("tenant-1|overview").
			WillReturnRows(sqlmock.NewRows(kpiCacheColumns).
				AddRow("tenant-1|overview", "tenant-1", "overview", []byte(`[{"month":"2024-03"}]`), now.Add(time.Hour), now, now))

		entry, err := repo.Get(context.Background(), "tenant-1|overview")
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.Equal(t, "tenant-1", entry.TenantID)
		assert.Equal(t, "overview", entry.Kind)
		assert.JSONEq(t, `[{"month":"2024-03"}]`, string(entry.Payload))
		assert.Equal(t, now.Add(time.Hour), entry.ExpiresAt)
	})

	t.Run("Sem entrada retorna nil sem erro", func(t *testing.T) {
		mock.ExpectQuery(getQuery).
			WithArgs("inexistente").
			WillReturnRows(sqlmock.NewRows(kpiCacheColumns))

		entry, err := repo.Get(context.Background(), "inexistente")
		assert.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("Erro do banco é propagado", func(t *testing.T) {
		mock.ExpectQuery(getQuery).
			WithArgs("tenant-1|overview").
			WillReturnError(errors.New("conn closed"))

		entry, err := repo.Get(context.Background(), "tenant-1|overview")
		assert.Error(t, err)
		assert.Nil(t, entry)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKPICacheRepository_SaveOrUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewKPICacheRepository(db)
	expiresAt := time.Date(2024, 4, 10, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kpi_cache (cache_key,tenant_id,kind,payload,expires_at) VALUES ($1,$2,$3,$4,$5)")).
		WithArgs("k", "tenant-1", "revenue", []byte(`[]`), expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SaveOrUpdate(context.Background(), &domain.KPICacheEntry{
		CacheKey:  "k",
		TenantID:  "tenant-1",
		Kind:      "revenue",
		Payload:   []byte(`[]`),
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKPICacheRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewKPICacheRepository(db)

	t.Run("Remove expirados", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kpi_cache WHERE expires_at <= NOW()")).
			WillReturnResult(sqlmock.NewResult(0, 7))

		deleted, err := repo.DeleteExpired(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), deleted)
	})

	t.Run("Remove por tenant", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM kpi_cache WHERE tenant_id = $1")).
			WithArgs("tenant-1").
			WillReturnResult(sqlmock.NewResult(0, 3))

		deleted, err := repo.DeleteByTenant(context.Background(), "tenant-1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
