package dbproxy

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy/dbproxyclient"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/observability"
	"github.com/vfg2006/sales-kpi-api/pkg/apiErrors"
	"github.com/vfg2006/sales-kpi-api/pkg/utils"
)

// QueryOptions descreve a consulta para logs e métricas
type QueryOptions struct {
	Kind string
}

type Executor interface {
	ResolveDatabase(ctx context.Context, tenantID string) (domain.TenantDatabaseRef, error)
	Query(ctx context.Context, ref domain.TenantDatabaseRef, sqlText string, opts QueryOptions) ([]map[string]any, error)
}

type DBProxyService struct {
	cfg    *config.Config
	Client dbproxyclient.Client
}

func New(cfg *config.Config, client dbproxyclient.Client) Executor {
	return &DBProxyService{
		cfg:    cfg,
		Client: client,
	}
}

// ResolveDatabase escolhe o primeiro banco ativo registrado para o tenant
func (s *DBProxyService) ResolveDatabase(ctx context.Context, tenantID string) (domain.TenantDatabaseRef, error) {
	regs, err := s.Client.ListDatabases(ctx, tenantID)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.TenantDatabaseRef{}, ctxErr
		}
		return domain.TenantDatabaseRef{}, NewExecutionError(
			apiErrors.ErrQueryExecution,
			domain.TenantDatabaseRef{TenantID: tenantID},
			err.Error(),
		)
	}

	if len(regs) == 0 {
		return domain.TenantDatabaseRef{}, NewTenantError(ErrNotConfigured, apiErrors.ErrTenantDatabaseNotConfigured, tenantID)
	}

	for _, reg := range regs {
		if reg.IsActive {
			return domain.TenantDatabaseRef{
				TenantID:   tenantID,
				DatabaseID: reg.ID,
				IsActive:   true,
			}, nil
		}
	}

	return domain.TenantDatabaseRef{}, NewTenantError(ErrNoActiveDatabase, apiErrors.ErrTenantDatabaseInactive, tenantID)
}

// Query envia o SQL ao proxy. Falhas reportadas pelo proxy retornam a mensagem original.
// Não há novas tentativas automáticas.
func (s *DBProxyService) Query(ctx context.Context, ref domain.TenantDatabaseRef, sqlText string, opts QueryOptions) ([]map[string]any, error) {
	queryID, _ := utils.GenerateID()
	logger := logrus.WithFields(logrus.Fields{
		"query_id":    queryID,
		"tenant_id":   ref.TenantID,
		"database_id": ref.DatabaseID,
		"kind":        opts.Kind,
	})
	logger.Debug("Enviando consulta ao proxy de banco")

	start := time.Now()
	resp, err := s.Client.Query(ctx, ref.DatabaseID, sqlText)
	elapsed := time.Since(start)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			observability.ObserveProxyQuery(opts.Kind, "canceled", elapsed)
			return nil, ctxErr
		}
		observability.ObserveProxyQuery(opts.Kind, "error", elapsed)
		logger.WithError(err).Error("Erro de comunicação com o proxy de banco")
		return nil, NewExecutionError(apiErrors.ErrQueryExecution, ref, err.Error())
	}

	if !resp.Success {
		observability.ObserveProxyQuery(opts.Kind, "failed", elapsed)
		logger.WithField("proxy_error", resp.Error).Warn("Proxy de banco rejeitou a consulta")
		return nil, NewExecutionError(apiErrors.ErrQueryExecution, ref, resp.Error)
	}

	observability.ObserveProxyQuery(opts.Kind, "success", elapsed)

	if resp.Data == nil || resp.Data.Rows == nil {
		return []map[string]any{}, nil
	}

	logger.WithFields(logrus.Fields{
		"rows":     len(resp.Data.Rows),
		"duration": elapsed.String(),
	}).Debug("Consulta ao proxy concluída")

	return resp.Data.Rows, nil
}

// IsConfigurationError indica erros de configuração do tenant
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNoActiveDatabase)
}
