package insighting

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy"
	"github.com/vfg2006/sales-kpi-api/infrastructure/repository"
	"github.com/vfg2006/sales-kpi-api/internal/analytics/plan"
	"github.com/vfg2006/sales-kpi-api/internal/analytics/probe"
	"github.com/vfg2006/sales-kpi-api/internal/config"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/observability"
	"github.com/vfg2006/sales-kpi-api/pkg/normalize"
	"golang.org/x/sync/singleflight"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidWindow é devolvido quando a janela pedida não tem início e fim coerentes
var ErrInvalidWindow = plan.ErrInvalidWindow

const (
	KindOverview    = "overview"
	KindMovements   = "movements"
	KindRevenue     = "revenue"
	KindClientGoals = "client_goals"

	defaultWindowMonths   = 12
	defaultRequestTimeout = 2 * time.Minute
	defaultResultTTL      = time.Hour
	defaultMaxRows        = 5000
)

// Service implementa SalesInsighter. Requisições idênticas em andamento
// (tenant, tipo, filtro, janela) compartilham a mesma ida ao proxy.
type Service struct {
	cfg                *config.Config
	executor           dbproxy.Executor
	prober             probe.CapabilityCache
	schema             domain.SalesSchema
	kpiCacheRepository repository.KPICacheRepository
	useCache           bool
	group              singleflight.Group
	now                func() time.Time
}

// NewService cria uma nova instância do serviço de indicadores
func NewService(
	cfg *config.Config,
	executor dbproxy.Executor,
	prober probe.CapabilityCache,
) *Service {
	return &Service{
		cfg:                cfg,
		executor:           executor,
		prober:             prober,
		schema:             SchemaFromConfig(cfg.Analytics),
		kpiCacheRepository: nil,   // Inicialmente null
		useCache:           false, // Inicialmente não usa cache
		now:                time.Now,
	}
}

// WithCache habilita o cache local de resultados
func (s *Service) WithCache(kpiCacheRepo repository.KPICacheRepository) *Service {
	s.kpiCacheRepository = kpiCacheRepo
	s.useCache = s.kpiCacheRepository != nil
	return s
}

// SchemaFromConfig aplica os nomes de tabela configurados sobre os padrões
func SchemaFromConfig(cfg config.Analytics) domain.SalesSchema {
	schema := domain.DefaultSalesSchema()
	override := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	override(&schema.MovementTable, cfg.MovementTable)
	override(&schema.ItemTable, cfg.ItemTable)
	override(&schema.ClientTable, cfg.ClientTable)
	override(&schema.BranchTable, cfg.BranchTable)
	override(&schema.ProductTable, cfg.ProductTable)
	override(&schema.ClientGroupTable, cfg.ClientGroupTable)
	override(&schema.GoalTable, cfg.GoalTable)
	override(&schema.FlatTable, cfg.FlatTable)
	return schema
}

func (s *Service) GetMonthlyOverview(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.OverviewMonthlyData, error) {
	return fetch(ctx, s, tenantID, KindOverview, req, func(ctx context.Context, req domain.KPIRequest) ([]domain.OverviewMonthlyData, error) {
		ref, p, err := s.prepare(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		sqlText, err := p.MonthlyOverviewSQL(req.Filter, req.Window)
		if err != nil {
			return nil, err
		}

		rows, err := s.executor.Query(ctx, ref, sqlText, dbproxy.QueryOptions{Kind: KindOverview})
		if err != nil {
			return nil, err
		}

		overview := make([]domain.OverviewMonthlyData, 0, len(rows))
		for _, row := range rows {
			overview = append(overview, overviewFromRow(row))
		}
		return overview, nil
	})
}

func (s *Service) GetSalesMovements(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.SalesMovement, error) {
	return fetch(ctx, s, tenantID, KindMovements, req, func(ctx context.Context, req domain.KPIRequest) ([]domain.SalesMovement, error) {
		ref, p, err := s.prepare(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		sqlText, err := p.SalesMovementsSQL(req.Filter, req.Window, s.maxRows())
		if err != nil {
			return nil, err
		}

		rows, err := s.executor.Query(ctx, ref, sqlText, dbproxy.QueryOptions{Kind: KindMovements})
		if err != nil {
			return nil, err
		}

		movements := make([]domain.SalesMovement, 0, len(rows))
		for _, row := range rows {
			movements = append(movements, domain.SalesMovement{
				Date:        normalize.String(row["date"]),
				ClientID:    normalize.String(row["client_id"]),
				ClientName:  normalize.String(row["client_name"]),
				ProductID:   normalize.String(row["product_id"]),
				ProductName: normalize.String(row["product_name"]),
				BranchID:    normalize.String(row["branch_id"]),
				BranchName:  normalize.String(row["branch_name"]),
				Revenue:     normalize.Number(row["revenue"]),
				Units:       normalize.Number(row["units"]),
				Volume:      normalize.Number(row["volume"]),
				RegionCode:  normalize.NullableString(row["region_code"]),
			})
		}
		return movements, nil
	})
}

func (s *Service) GetMonthlyRevenue(ctx context.Context, tenantID string, req domain.KPIRequest) ([]domain.MonthlyRevenue, error) {
	return fetch(ctx, s, tenantID, KindRevenue, req, func(ctx context.Context, req domain.KPIRequest) ([]domain.MonthlyRevenue, error) {
		ref, p, err := s.prepare(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		sqlText, err := p.MonthlyRevenueSQL(req.Filter, req.Window)
		if err != nil {
			return nil, err
		}

		rows, err := s.executor.Query(ctx, ref, sqlText, dbproxy.QueryOptions{Kind: KindRevenue})
		if err != nil {
			return nil, err
		}

		revenue := make([]domain.MonthlyRevenue, 0, len(rows))
		for _, row := range rows {
			revenue = append(revenue, domain.MonthlyRevenue{
				Month:   normalize.Month(row["month"]),
				Revenue: normalize.Number(row["revenue"]),
				Volume:  normalize.NullableNumber(row["volume"]),
			})
		}
		return revenue, nil
	})
}

func (s *Service) GetClientGoals(ctx context.Context, tenantID string, req domain.KPIRequest) (*domain.ClientGoalsResult, error) {
	return fetch(ctx, s, tenantID, KindClientGoals, req, func(ctx context.Context, req domain.KPIRequest) (*domain.ClientGoalsResult, error) {
		ref, p, err := s.prepare(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		result := &domain.ClientGoalsResult{Goals: []domain.ClientGoalData{}}

		sqlText, ok, err := p.ClientGoalsSQL(req.Filter, req.Window)
		if err != nil {
			return nil, err
		}
		if !ok {
			return result, nil
		}
		result.Supported = true

		rows, err := s.executor.Query(ctx, ref, sqlText, dbproxy.QueryOptions{Kind: KindClientGoals})
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			result.Goals = append(result.Goals, domain.ClientGoalData{
				ClientID:    normalize.String(row["client_id"]),
				GoalRevenue: normalize.NullableNumber(row["goal_revenue"]),
			})
		}
		return result, nil
	})
}

func (s *Service) GetCapabilities(ctx context.Context, tenantID string) (domain.CapabilitySet, error) {
	ref, err := s.executor.ResolveDatabase(ctx, tenantID)
	if err != nil {
		return domain.CapabilitySet{}, err
	}
	return s.prober.Probe(ctx, ref), nil
}

func (s *Service) InvalidateTenant(ctx context.Context, tenantID string) error {
	s.prober.Invalidate(tenantID)

	if !s.useCache {
		return nil
	}

	deleted, err := s.kpiCacheRepository.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"deleted":   deleted,
	}).Info("Cache de resultados do tenant removido")
	return nil
}

// prepare resolve o banco ativo (erros de configuração sobem como estão) e escolhe o plano
func (s *Service) prepare(ctx context.Context, tenantID string) (domain.TenantDatabaseRef, plan.QueryPlan, error) {
	ref, err := s.executor.ResolveDatabase(ctx, tenantID)
	if err != nil {
		return domain.TenantDatabaseRef{}, nil, err
	}

	caps := s.prober.Probe(ctx, ref)
	return ref, plan.Select(caps, s.schema), nil
}

// fetch aplica janela padrão, deduplicação, cache de resultados e abandono pelo chamador.
// A ida ao proxy roda desacoplada do contexto do chamador: se ele desistir,
// a resposta é descartada quando chegar.
func fetch[T any](
	ctx context.Context,
	s *Service,
	tenantID, kind string,
	req domain.KPIRequest,
	run func(ctx context.Context, req domain.KPIRequest) (T, error),
) (T, error) {
	var zero T

	req, err := s.withDefaultWindow(req)
	if err != nil {
		return zero, err
	}

	key := cacheKey(tenantID, kind, req)
	logger := logrus.WithFields(logrus.Fields{
		"tenant_id": tenantID,
		"kind":      kind,
	})

	ch := s.group.DoChan(key, func() (any, error) {
		workCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.requestTimeout())
		defer cancel()

		var cached T
		if s.loadCached(workCtx, key, &cached) {
			return cached, nil
		}

		start := time.Now()
		result, err := run(workCtx, req)
		if err != nil {
			logger.WithError(err).Warn("Falha ao calcular indicadores")
			return nil, err
		}
		logger.WithField("elapsed", time.Since(start)).Debug("Indicadores calculados")

		s.storeCached(workCtx, key, tenantID, kind, result)
		return result, nil
	})

	select {
	case <-ctx.Done():
		logger.Debug("Requisição abandonada pelo chamador, resposta será descartada")
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		val, ok := res.Val.(T)
		if !ok {
			return zero, fmt.Errorf("resultado inesperado para %s: %T", kind, res.Val)
		}
		return val, nil
	}
}

func (s *Service) withDefaultWindow(req domain.KPIRequest) (domain.KPIRequest, error) {
	if req.Window.IsZero() {
		req.Window = domain.LastCompletedMonths(s.now(), defaultWindowMonths)
		return req, nil
	}
	if req.Window.Start.IsZero() || req.Window.End.IsZero() || req.Window.Start.After(req.Window.End) {
		return req, ErrInvalidWindow
	}
	return req, nil
}

func (s *Service) requestTimeout() time.Duration {
	if s.cfg.Proxy.Timeout > 0 {
		// resolução + até duas sondagens + consulta
		return 4 * s.cfg.Proxy.Timeout
	}
	return defaultRequestTimeout
}

func (s *Service) resultTTL() time.Duration {
	if s.cfg.KPICache.TTL > 0 {
		return s.cfg.KPICache.TTL
	}
	return defaultResultTTL
}

func (s *Service) maxRows() int {
	if s.cfg.Analytics.MaxRows > 0 {
		return s.cfg.Analytics.MaxRows
	}
	return defaultMaxRows
}

// loadCached nunca falha a requisição: erro de cache vira miss
func (s *Service) loadCached(ctx context.Context, key string, dst any) bool {
	if !s.useCache {
		return false
	}

	entry, err := s.kpiCacheRepository.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("cache_key", key).Warn("Erro ao ler cache de indicadores")
		observability.RecordCacheLookup("results", "error")
		return false
	}
	if entry == nil {
		observability.RecordCacheLookup("results", "miss")
		return false
	}

	if err := json.Unmarshal(entry.Payload, dst); err != nil {
		logrus.WithError(err).WithField("cache_key", key).Warn("Cache de indicadores ilegível, recalculando")
		observability.RecordCacheLookup("results", "error")
		return false
	}

	observability.RecordCacheLookup("results", "hit")
	return true
}

func (s *Service) storeCached(ctx context.Context, key, tenantID, kind string, value any) {
	if !s.useCache {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("cache_key", key).Warn("Erro ao serializar indicadores para o cache")
		return
	}

	err = s.kpiCacheRepository.SaveOrUpdate(ctx, &domain.KPICacheEntry{
		CacheKey:  key,
		TenantID:  tenantID,
		Kind:      kind,
		Payload:   payload,
		ExpiresAt: s.now().Add(s.resultTTL()),
	})
	if err != nil {
		logrus.WithError(err).WithField("cache_key", key).Warn("Erro ao salvar indicadores no cache")
	}
}

type cacheKeyParts struct {
	TenantID string                 `json:"tenant_id"`
	Kind     string                 `json:"kind"`
	Filter   domain.DimensionFilter `json:"filter"`
	Start    string                 `json:"start"`
	End      string                 `json:"end"`
}

// cacheKey serializa tenant, tipo, filtro e janela em JSON antes do hash; valores
// com "|" ou "," não colidem entre dimensões. O prefixo do tipo facilita a leitura da tabela.
func cacheKey(tenantID, kind string, req domain.KPIRequest) string {
	// Struct só de strings: Marshal não falha
	payload, _ := json.Marshal(cacheKeyParts{
		TenantID: tenantID,
		Kind:     kind,
		Filter:   req.Filter.Canonical(),
		Start:    req.Window.Start.Format(time.DateOnly),
		End:      req.Window.End.Format(time.DateOnly),
	})
	sum := sha256.Sum256(payload)
	return kind + ":" + hex.EncodeToString(sum[:])
}

func overviewFromRow(row map[string]any) domain.OverviewMonthlyData {
	data := domain.OverviewMonthlyData{
		Month:           normalize.Month(row["month"]),
		Revenue:         normalize.Number(row["revenue"]),
		PreviousRevenue: normalize.NullableNumber(row["previous_revenue"]),
		LastYearRevenue: normalize.NullableNumber(row["last_year_revenue"]),
		Volume:          normalize.Number(row["volume"]),
		PreviousVolume:  normalize.NullableNumber(row["previous_volume"]),
		LastYearVolume:  normalize.NullableNumber(row["last_year_volume"]),
		ActiveClients:   normalize.Int(row["active_clients"]),
		GoalRevenue:     normalize.NullableNumber(row["goal_revenue"]),
	}

	data.RevenueMoM = guardRatio(normalize.NullableNumber(row["revenue_mom"]), data.PreviousRevenue)
	data.RevenueYoY = guardRatio(normalize.NullableNumber(row["revenue_yoy"]), data.LastYearRevenue)
	data.VolumeMoM = guardRatio(normalize.NullableNumber(row["volume_mom"]), data.PreviousVolume)
	data.VolumeYoY = guardRatio(normalize.NullableNumber(row["volume_yoy"]), data.LastYearVolume)
	data.GoalAttainment = guardRatio(normalize.NullableNumber(row["goal_attainment"]), data.GoalRevenue)

	activeClients := float64(data.ActiveClients)
	data.AverageTicket = guardRatio(normalize.NullableNumber(row["average_ticket"]), &activeClients)
	data.LeadingProductShare = clampShare(normalize.NullableNumber(row["leading_product_share"]))

	return data
}

// guardRatio descarta a razão quando o denominador é nulo ou zero, ou o valor não é finito
func guardRatio(ratio, denominator *float64) *float64 {
	if ratio == nil || denominator == nil || *denominator == 0 {
		return nil
	}
	if math.IsNaN(*ratio) || math.IsInf(*ratio, 0) {
		return nil
	}
	return ratio
}

func clampShare(share *float64) *float64 {
	if share == nil || math.IsNaN(*share) || math.IsInf(*share, 0) {
		return nil
	}
	v := math.Max(0, math.Min(1, *share))
	return &v
}
