package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/sales-kpi-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

const (
	kpiCacheTable = "kpi_cache"

	// KPICacheDDL cria a tabela de cache de resultados; aplicada pelo script de migração
	KPICacheDDL = `
CREATE TABLE IF NOT EXISTS kpi_cache (
	cache_key  TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL,
	kind       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_kpi_cache_tenant_id ON kpi_cache (tenant_id);
CREATE INDEX IF NOT EXISTS idx_kpi_cache_expires_at ON kpi_cache (expires_at);
`
)

type KPICacheRepository interface {
	Get(ctx context.Context, cacheKey string) (*domain.KPICacheEntry, error)
	SaveOrUpdate(ctx context.Context, entry *domain.KPICacheEntry) error
	DeleteExpired(ctx context.Context) (int64, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}

type kpiCacheRepository struct {
	conn postgres.Queryer
}

func NewKPICacheRepository(conn postgres.Queryer) KPICacheRepository {
	return &kpiCacheRepository{
		conn: conn,
	}
}

// Get retorna nil, nil quando não há entrada válida para a chave
func (r *kpiCacheRepository) Get(ctx context.Context, cacheKey string) (*domain.KPICacheEntry, error) {
	query, args, err := squirrel.
		Select("kc.cache_key", "kc.tenant_id", "kc.kind", "kc.payload", "kc.expires_at", "kc.created_at", "kc.updated_at").
		From(kpiCacheTable + " kc").
		Where(squirrel.Eq{"kc.cache_key": cacheKey}).
		Where("kc.expires_at > NOW()").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	entry := &domain.KPICacheEntry{}
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(
		&entry.CacheKey,
		&entry.TenantID,
		&entry.Kind,
		&entry.Payload,
		&entry.ExpiresAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear cache de KPI: %w", err)
	}

	return entry, nil
}

func (r *kpiCacheRepository) SaveOrUpdate(ctx context.Context, entry *domain.KPICacheEntry) error {
	query, args, err := squirrel.
		Insert(kpiCacheTable).
		Columns("cache_key", "tenant_id", "kind", "payload", "expires_at").
		Values(entry.CacheKey, entry.TenantID, entry.Kind, entry.Payload, entry.ExpiresAt).
		Suffix(`
			ON CONFLICT (cache_key) DO UPDATE SET
				kind = EXCLUDED.kind,
				payload = EXCLUDED.payload,
				expires_at = EXCLUDED.expires_at,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *kpiCacheRepository) DeleteExpired(ctx context.Context) (int64, error) {
	return r.delete(ctx, squirrel.Expr("expires_at <= NOW()"))
}

func (r *kpiCacheRepository) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	return r.delete(ctx, squirrel.Eq{"tenant_id": tenantID})
}

func (r *kpiCacheRepository) delete(ctx context.Context, pred squirrel.Sqlizer) (int64, error) {
	query, args, err := squirrel.
		Delete(kpiCacheTable).
		Where(pred).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	result, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("erro ao executar a query: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("erro ao obter número de linhas afetadas: %w", err)
	}

	return rowsAffected, nil
}
