package plan

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

func date(s string) time.Time {
	t, _ := time.Parse(time.DateOnly, s)
	return t
}

var (
	testWindow = domain.DateWindow{Start: date("2023-01-01"), End: date("2024-03-31")}

	normalizedCaps = domain.CapabilitySet{Movements: true, MovementItems: true}

	goalCaps = domain.CapabilitySet{
		Movements:     true,
		MovementItems: true,
		Goals:         true,
		GoalSchema: &domain.GoalSchema{
			Table:        "metas",
			ClientColumn: "cliente_id",
			ValueColumn:  "valor_meta",
			MonthColumn:  "competencia",
			MonthKind:    domain.MonthKindYYYYMM,
		},
	}
)

func TestSelect(t *testing.T) {
	schema := domain.DefaultSalesSchema()

	tests := []struct {
		name     string
		caps     domain.CapabilitySet
		expected string
	}{
		{name: "Apenas tabela plana", caps: domain.CapabilitySet{}, expected: FallbackPlanName},
		{name: "Somente cabeçalho", caps: domain.CapabilitySet{Movements: true, Clients: true}, expected: FallbackPlanName},
		{name: "Somente itens", caps: domain.CapabilitySet{MovementItems: true}, expected: FallbackPlanName},
		{name: "Cabeçalho e itens", caps: normalizedCaps, expected: NormalizedPlanName},
		{name: "Sondagem degradada", caps: domain.CapabilitySet{Degraded: true}, expected: FallbackPlanName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Select(tt.caps, schema).Name())
		})
	}
}

func TestMonthlyOverviewSQL(t *testing.T) {
	schema := domain.DefaultSalesSchema()

	t.Run("Pipeline com todas as etapas na ordem", func(t *testing.T) {
		sql, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, testWindow)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(sql, "WITH base AS (SELECT"))
		last := -1
		for _, name := range []string{"base AS", "monthly AS", "product_monthly AS", "leader_share AS", "months AS", "kpi_lagged AS", "kpi AS"} {
			idx := strings.Index(sql, name+" (")
			require.GreaterOrEqual(t, idx, 0, name)
			assert.Greater(t, idx, last, name)
			last = idx
		}

		assert.Contains(t, sql, "FROM movimentacoes m JOIN movimentacao_itens i ON i.movimentacao_id = m.id")
		assert.Contains(t, sql, "LAG(mo.revenue, 1) OVER (ORDER BY s.month) AS previous_revenue")
		assert.Contains(t, sql, "LAG(mo.revenue, 12) OVER (ORDER BY s.month) AS last_year_revenue")
		assert.Contains(t, sql, "CASE WHEN kl.previous_revenue IS NULL OR kl.previous_revenue = 0 THEN NULL ELSE kl.revenue / kl.previous_revenue - 1 END AS revenue_mom")
		assert.Contains(t, sql, "CASE WHEN k.active_clients IS NULL OR k.active_clients = 0 THEN NULL ELSE k.revenue / k.active_clients END AS average_ticket")
		assert.Contains(t, sql, "CAST(NULL AS numeric) AS goal_revenue")
		assert.NotContains(t, sql, "goal_totals")
		assert.True(t, strings.HasSuffix(sql, "ORDER BY k.month"))
	})

	t.Run("Lê 24 meses e devolve os 12 mais recentes", func(t *testing.T) {
		sql, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, testWindow)
		require.NoError(t, err)

		assert.Contains(t, sql, "CAST(m.data AS date) BETWEEN CAST('2022-04-01' AS date) AND CAST('2024-03-31' AS date)")
		assert.Contains(t, sql, "generate_series(CAST('2022-04-01' AS date), CAST('2024-03-01' AS date), interval '1 month')")
		assert.Contains(t, sql, "k.month >= CAST('2023-04-01' AS date)")
	})

	t.Run("Janela curta mantém o início pedido", func(t *testing.T) {
		w := domain.DateWindow{Start: date("2024-02-10"), End: date("2024-03-31")}
		sql, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, w)
		require.NoError(t, err)

		assert.Contains(t, sql, "k.month >= CAST('2024-02-01' AS date)")
		assert.Contains(t, sql, "BETWEEN CAST('2023-02-01' AS date) AND CAST('2024-03-31' AS date)")
	})

	t.Run("Etapa de metas com tabela reconhecida", func(t *testing.T) {
		sql, err := Select(goalCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, testWindow)
		require.NoError(t, err)

		assert.Contains(t, sql, `goal_totals AS (SELECT to_date(CAST(g."competencia" AS text), 'YYYYMM') AS month, SUM(CAST(g."valor_meta" AS numeric)) AS goal_revenue FROM metas g`)
		assert.Contains(t, sql, "LEFT JOIN goal_totals gt ON gt.month = k.month")
		assert.Contains(t, sql, "CASE WHEN gt.goal_revenue IS NULL OR gt.goal_revenue = 0 THEN NULL ELSE k.revenue / gt.goal_revenue END AS goal_attainment")
	})

	t.Run("Filtro de cliente suprime as metas", func(t *testing.T) {
		sql, err := Select(goalCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{Clients: []string{"10"}}, testWindow)
		require.NoError(t, err)

		assert.NotContains(t, sql, "goal_totals")
		assert.Contains(t, sql, "CAST(m.cliente_id AS text) IN ('10')")
	})

	t.Run("Filtro de filial sem coluna de filial nas metas suprime as metas", func(t *testing.T) {
		sql, err := Select(goalCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{Branches: []string{"1"}}, testWindow)
		require.NoError(t, err)

		assert.NotContains(t, sql, "goal_totals")
	})

	t.Run("Filtro de filial aplicado na tabela de metas", func(t *testing.T) {
		caps := goalCaps
		gs := *goalCaps.GoalSchema
		gs.BranchColumn = "filial_id"
		caps.GoalSchema = &gs

		sql, err := Select(caps, schema).MonthlyOverviewSQL(domain.DimensionFilter{Branches: []string{"1", "2"}}, testWindow)
		require.NoError(t, err)

		assert.Contains(t, sql, `CAST(g."filial_id" AS text) IN ('1','2')`)
		assert.Contains(t, sql, "CAST(m.filial_id AS text) IN ('1','2')")
	})

	t.Run("Filtros combinados com AND e aspas escapadas", func(t *testing.T) {
		f := domain.DimensionFilter{Branches: []string{"1"}, Products: []string{"O'Neil"}}
		sql, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(f, testWindow)
		require.NoError(t, err)

		assert.Contains(t, sql, "AND CAST(m.filial_id AS text) IN ('1') AND CAST(i.produto_id AS text) IN ('O''Neil')")
	})

	t.Run("Plano de fallback lê a tabela plana", func(t *testing.T) {
		sql, err := Select(domain.CapabilitySet{}, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, testWindow)
		require.NoError(t, err)

		assert.Contains(t, sql, "FROM vendas v")
		assert.NotContains(t, sql, "movimentacoes")
	})

	t.Run("Janela invertida é rejeitada", func(t *testing.T) {
		w := domain.DateWindow{Start: date("2024-03-01"), End: date("2024-01-01")}
		_, err := Select(normalizedCaps, schema).MonthlyOverviewSQL(domain.DimensionFilter{}, w)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}

func TestGroupFilter(t *testing.T) {
	schema := domain.DefaultSalesSchema()
	f := domain.DimensionFilter{Groups: []string{"G1"}}

	t.Run("Com tabela de vínculo", func(t *testing.T) {
		caps := normalizedCaps
		caps.ClientGroups = true

		sql, err := Select(caps, schema).MonthlyRevenueSQL(f, testWindow)
		require.NoError(t, err)
		assert.Contains(t, sql, "CAST(m.cliente_id AS text) IN (SELECT CAST(cg.cliente_id AS text) FROM cliente_grupos cg WHERE CAST(cg.grupo_id AS text) IN ('G1'))")
	})

	t.Run("Sem tabela de vínculo o filtro é ignorado", func(t *testing.T) {
		sql, err := Select(normalizedCaps, schema).MonthlyRevenueSQL(f, testWindow)
		require.NoError(t, err)
		assert.NotContains(t, sql, "cliente_grupos")
	})
}

func TestSalesMovementsSQL(t *testing.T) {
	schema := domain.DefaultSalesSchema()

	t.Run("Sem tabelas de nomes usa os ids", func(t *testing.T) {
		sql, err := Select(normalizedCaps, schema).SalesMovementsSQL(domain.DimensionFilter{}, testWindow, 0)
		require.NoError(t, err)

		assert.Contains(t, sql, "CAST(m.cliente_id AS text) AS client_name")
		assert.Contains(t, sql, "CAST(NULL AS text) AS region_code")
		assert.NotContains(t, sql, "LEFT JOIN")
		assert.Contains(t, sql, "BETWEEN CAST('2023-01-01' AS date) AND CAST('2024-03-31' AS date)")
		assert.True(t, strings.HasSuffix(sql, "ORDER BY m.data DESC"))
	})

	t.Run("Com tabelas de nomes faz os joins", func(t *testing.T) {
		caps := normalizedCaps
		caps.Clients, caps.Products, caps.Branches = true, true, true

		sql, err := Select(caps, schema).SalesMovementsSQL(domain.DimensionFilter{}, testWindow, 0)
		require.NoError(t, err)

		assert.Contains(t, sql, "LEFT JOIN clientes c ON c.id = m.cliente_id")
		assert.Contains(t, sql, "LEFT JOIN produtos p ON p.id = i.produto_id")
		assert.Contains(t, sql, "LEFT JOIN filiais f ON f.id = m.filial_id")
		assert.Contains(t, sql, "regexp_replace(CAST(c.cep AS text), '[^0-9]', '', 'g')")
	})

	t.Run("Limite vem depois da ordenação na mesma consulta", func(t *testing.T) {
		for _, caps := range []domain.CapabilitySet{normalizedCaps, {}} {
			sql, err := Select(caps, schema).SalesMovementsSQL(domain.DimensionFilter{}, testWindow, 100)
			require.NoError(t, err)

			assert.True(t, strings.HasSuffix(sql, " DESC LIMIT 100"), sql)
			assert.NotContains(t, sql, "_limited")
			assert.Equal(t, 1, strings.Count(sql, "SELECT"), "o corte não pode envolver uma subconsulta ordenada")
		}
	})
}

func TestClientGoalsSQL(t *testing.T) {
	schema := domain.DefaultSalesSchema()

	t.Run("Sem tabela de metas não é suportado", func(t *testing.T) {
		sql, ok, err := Select(normalizedCaps, schema).ClientGoalsSQL(domain.DimensionFilter{}, testWindow)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, sql)
	})

	t.Run("Soma por cliente com filtro de cliente", func(t *testing.T) {
		sql, ok, err := Select(goalCaps, schema).ClientGoalsSQL(domain.DimensionFilter{Clients: []string{"10"}}, testWindow)
		require.NoError(t, err)
		require.True(t, ok)

		assert.Contains(t, sql, `SELECT CAST(g."cliente_id" AS text) AS client_id, SUM(CAST(g."valor_meta" AS numeric)) AS goal_revenue FROM metas g`)
		assert.Contains(t, sql, `BETWEEN CAST('2023-01-01' AS date) AND CAST('2024-03-01' AS date)`)
		assert.Contains(t, sql, `CAST(g."cliente_id" AS text) IN ('10')`)
	})
}

func TestGoalMonth(t *testing.T) {
	gs := &domain.GoalSchema{MonthColumn: "mes"}

	gs.MonthKind = domain.MonthKindDate
	assert.Equal(t, `CAST(date_trunc('month', CAST(g."mes" AS timestamp)) AS date)`, goalMonth(gs))

	gs.MonthKind = domain.MonthKindYYYYMM
	assert.Equal(t, `to_date(CAST(g."mes" AS text), 'YYYYMM')`, goalMonth(gs))

	gs.MonthKind = domain.MonthKindText
	assert.Equal(t, `to_date(substr(CAST(g."mes" AS text), 1, 7), 'YYYY-MM')`, goalMonth(gs))
}
