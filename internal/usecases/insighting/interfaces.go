package insighting

import (
	"context"

	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

// SalesInsighter calcula os indicadores de vendas a partir do banco externo do tenant
type SalesInsighter interface {
	// GetMonthlyOverview retorna até 12 meses do painel, em ordem crescente
	GetMonthlyOverview(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.OverviewMonthlyData, error)

	// GetSalesMovements retorna os itens vendidos, limitados pelo executor
	GetSalesMovements(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.SalesMovement, error)

	GetMonthlyRevenue(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.MonthlyRevenue, error)

	// GetClientGoals diferencia tenant sem tabela de metas (Supported=false) de tenant sem metas
	GetClientGoals(ctx context.Context, tenantID string, req domain.KPIRequest) (*domain.ClientGoalsResult, error)

	GetCapabilities(ctx context.Context, tenantID string) (domain.CapabilitySet, error)

	// InvalidateTenant descarta capacidades e resultados guardados do tenant
	InvalidateTenant(ctx context.Context, tenantID string) error
}
