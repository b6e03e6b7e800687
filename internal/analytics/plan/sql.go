package plan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/internal/analytics/filter"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

var ErrInvalidWindow = errors.New("janela de datas inválida")

// overviewMonths é o número de meses devolvidos pelo painel; o SQL lê o dobro
// para ter a base de comparação anual do primeiro mês.
const overviewMonths = 12

// source descreve as expressões SQL de cada campo lógico dentro de um plano.
// Ids já vêm convertidos para texto para comparar com os literais do filtro.
type source struct {
	from        string
	joins       []string
	date        string
	client      string
	clientName  string
	product     string
	productName string
	branch      string
	branchName  string
	revenue     string
	units       string
	volume      string
	postalCode  string
}

type builder struct {
	src    source
	caps   domain.CapabilitySet
	schema domain.SalesSchema
}

func newBuilder(src source, caps domain.CapabilitySet, schema domain.SalesSchema) builder {
	return builder{src: src, caps: caps, schema: schema}
}

type stage struct {
	name  string
	query squirrel.SelectBuilder
}

// MonthlyOverviewSQL monta o pipeline base → monthly → product_monthly → leader_share →
// goal_totals → months → kpi_lagged → kpi → projeção final.
func (b builder) MonthlyOverviewSQL(f domain.DimensionFilter, w domain.DateWindow) (string, error) {
	if err := validateWindow(w); err != nil {
		return "", err
	}
	bounds := overviewBounds(w)

	base := b.selectFrom(
		monthOf(b.src.date)+" AS month",
		b.src.client+" AS client_id",
		b.src.product+" AS product_id",
		"COALESCE("+b.src.revenue+", 0) AS revenue",
		"COALESCE("+b.src.volume+", 0) AS volume",
	).Where(dateBetween(b.src.date, bounds.sourceStart, w.End))
	base = where(base, b.conditions(f))

	stages := []stage{
		{name: "base", query: base},
		{name: "monthly", query: squirrel.
			Select("month", "SUM(revenue) AS revenue", "SUM(volume) AS volume", "COUNT(DISTINCT client_id) AS active_clients").
			From("base").
			GroupBy("month")},
		{name: "product_monthly", query: squirrel.
			Select("month", "product_id", "SUM(revenue) AS revenue").
			From("base").
			GroupBy("month", "product_id")},
		{name: "leader_share", query: squirrel.
			Select("month", nullGuardedRatio("MAX(revenue)", "SUM(revenue)")+" AS share").
			From("product_monthly").
			GroupBy("month")},
	}

	goals, hasGoals := b.goalTotals(f, bounds)
	if hasGoals {
		stages = append(stages, stage{name: "goal_totals", query: goals})
	}

	stages = append(stages,
		stage{name: "months", query: squirrel.Select(fmt.Sprintf(
			"CAST(generate_series(%s, %s, interval '1 month') AS date) AS month",
			dateLiteral(bounds.sourceStart), dateLiteral(bounds.endMonth),
		))},
		stage{name: "kpi_lagged", query: squirrel.
			Select(
				"s.month",
				"COALESCE(mo.revenue, 0) AS revenue",
				"LAG(mo.revenue, 1) OVER (ORDER BY s.month) AS previous_revenue",
				"LAG(mo.revenue, 12) OVER (ORDER BY s.month) AS last_year_revenue",
				"COALESCE(mo.volume, 0) AS volume",
				"LAG(mo.volume, 1) OVER (ORDER BY s.month) AS previous_volume",
				"LAG(mo.volume, 12) OVER (ORDER BY s.month) AS last_year_volume",
				"COALESCE(mo.active_clients, 0) AS active_clients",
			).
			From("months s").
			LeftJoin("monthly mo ON mo.month = s.month")},
		stage{name: "kpi", query: squirrel.
			Select(
				"kl.*",
				growthRatio("kl.revenue", "kl.previous_revenue")+" AS revenue_mom",
				growthRatio("kl.revenue", "kl.last_year_revenue")+" AS revenue_yoy",
				growthRatio("kl.volume", "kl.previous_volume")+" AS volume_mom",
				growthRatio("kl.volume", "kl.last_year_volume")+" AS volume_yoy",
			).
			From("kpi_lagged kl")},
	)

	goalRevenue := "CAST(NULL AS numeric)"
	if hasGoals {
		goalRevenue = "gt.goal_revenue"
	}

	final := squirrel.
		Select(
			"to_char(k.month, 'YYYY-MM') AS month",
			"k.revenue", "k.previous_revenue", "k.revenue_mom", "k.last_year_revenue", "k.revenue_yoy",
			"k.volume", "k.previous_volume", "k.volume_mom", "k.last_year_volume", "k.volume_yoy",
			"k.active_clients",
			nullGuardedRatio("k.revenue", "k.active_clients")+" AS average_ticket",
			"ls.share AS leading_product_share",
			goalRevenue+" AS goal_revenue",
			nullGuardedRatio("k.revenue", goalRevenue)+" AS goal_attainment",
		).
		From("kpi k").
		LeftJoin("leader_share ls ON ls.month = k.month")
	if hasGoals {
		final = final.LeftJoin("goal_totals gt ON gt.month = k.month")
	}
	final = final.
		Where("k.month >= " + dateLiteral(bounds.outputStart)).
		OrderBy("k.month")

	return withStages(stages, final)
}

// goalTotals só existe com tabela de metas reconhecida e sem filtro por cliente/grupo,
// já que a meta é definida numa granularidade acima do cliente.
func (b builder) goalTotals(f domain.DimensionFilter, bounds window) (squirrel.SelectBuilder, bool) {
	if !b.caps.SupportsGoals() || f.HasClientLevel() {
		return squirrel.SelectBuilder{}, false
	}
	gs := b.caps.GoalSchema

	query := squirrel.
		Select(goalMonth(gs)+" AS month", "SUM(CAST(g."+quoteIdent(gs.ValueColumn)+" AS numeric)) AS goal_revenue").
		From(gs.QualifiedTable() + " g").
		Where(goalMonth(gs) + " BETWEEN " + dateLiteral(bounds.sourceStart) + " AND " + dateLiteral(bounds.endMonth)).
		GroupBy("1")

	if len(f.Branches) > 0 {
		if gs.BranchColumn == "" {
			logrus.Debug("Metas omitidas: filtro de filial sem coluna de filial na tabela de metas")
			return squirrel.SelectBuilder{}, false
		}
		if p, ok := filter.Predicate("CAST(g."+quoteIdent(gs.BranchColumn)+" AS text)", f.Branches); ok {
			query = query.Where(p)
		}
	}

	return query, true
}

// SalesMovementsSQL é a única consulta linha a linha. O LIMIT fica no mesmo nível do
// ORDER BY para que o corte mantenha as movimentações mais recentes; limit <= 0 não limita.
func (b builder) SalesMovementsSQL(f domain.DimensionFilter, w domain.DateWindow, limit int) (string, error) {
	if err := validateWindow(w); err != nil {
		return "", err
	}

	regionCode := "CAST(NULL AS text)"
	if b.src.postalCode != "" {
		regionCode = "NULLIF(substr(regexp_replace(CAST(" + b.src.postalCode + " AS text), '[^0-9]', '', 'g'), 1, 1), '')"
	}

	query := b.selectFrom(
		"to_char(CAST("+b.src.date+" AS date), 'YYYY-MM-DD') AS date",
		b.src.client+" AS client_id",
		b.src.clientName+" AS client_name",
		b.src.product+" AS product_id",
		b.src.productName+" AS product_name",
		b.src.branch+" AS branch_id",
		b.src.branchName+" AS branch_name",
		"COALESCE("+b.src.revenue+", 0) AS revenue",
		"COALESCE("+b.src.units+", 0) AS units",
		"COALESCE("+b.src.volume+", 0) AS volume",
		regionCode+" AS region_code",
	).Where(dateBetween(b.src.date, w.Start, w.End))
	query = where(query, b.conditions(f)).OrderBy(b.src.date + " DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	return toSQL(query)
}

func (b builder) MonthlyRevenueSQL(f domain.DimensionFilter, w domain.DateWindow) (string, error) {
	if err := validateWindow(w); err != nil {
		return "", err
	}

	query := b.selectFrom(
		"to_char("+monthOf(b.src.date)+", 'YYYY-MM') AS month",
		"COALESCE(SUM("+b.src.revenue+"), 0) AS revenue",
		"SUM("+b.src.volume+") AS volume",
	).Where(dateBetween(b.src.date, w.Start, w.End))
	query = where(query, b.conditions(f)).GroupBy("1").OrderBy("1")

	return toSQL(query)
}

// ClientGoalsSQL soma as metas por cliente dentro da janela
func (b builder) ClientGoalsSQL(f domain.DimensionFilter, w domain.DateWindow) (string, bool, error) {
	if !b.caps.SupportsGoals() {
		return "", false, nil
	}
	if err := validateWindow(w); err != nil {
		return "", true, err
	}
	gs := b.caps.GoalSchema
	client := "CAST(g." + quoteIdent(gs.ClientColumn) + " AS text)"

	query := squirrel.
		Select(client+" AS client_id", "SUM(CAST(g."+quoteIdent(gs.ValueColumn)+" AS numeric)) AS goal_revenue").
		From(gs.QualifiedTable() + " g").
		Where(goalMonth(gs) + " BETWEEN " + dateLiteral(monthStart(w.Start)) + " AND " + dateLiteral(monthStart(w.End)))

	if p, ok := filter.Predicate(client, f.Clients); ok {
		query = query.Where(p)
	}
	if g, ok := b.groupCondition(f.Groups, client); ok {
		query = query.Where(g)
	}
	if len(f.Branches) > 0 {
		if gs.BranchColumn == "" {
			logrus.Warn("Filtro de filial ignorado nas metas: tabela de metas sem coluna de filial")
		} else if p, ok := filter.Predicate("CAST(g."+quoteIdent(gs.BranchColumn)+" AS text)", f.Branches); ok {
			query = query.Where(p)
		}
	}

	sql, err := toSQL(query.GroupBy("1").OrderBy("1"))
	return sql, true, err
}

func (b builder) selectFrom(columns ...string) squirrel.SelectBuilder {
	query := squirrel.Select(columns...).From(b.src.from)
	for _, j := range b.src.joins {
		query = query.JoinClause(j)
	}
	return query
}

// conditions combina filial, cliente, produto e grupo com AND
func (b builder) conditions(f domain.DimensionFilter) []string {
	conds := filter.Conditions(f, filter.Columns{
		Branch:  b.src.branch,
		Client:  b.src.client,
		Product: b.src.product,
	})
	if g, ok := b.groupCondition(f.Groups, b.src.client); ok {
		conds = append(conds, g)
	}
	return conds
}

// groupCondition usa a tabela de vínculo cliente-grupo; sem ela o filtro é ignorado
func (b builder) groupCondition(groups []string, clientExpr string) (string, bool) {
	list, ok := filter.Compile(groups)
	if !ok {
		return "", false
	}
	if !b.caps.ClientGroups {
		logrus.WithField("groups", groups).Warn("Filtro de grupo ignorado: tabela de vínculo cliente-grupo ausente")
		return "", false
	}
	return clientExpr + " IN (SELECT CAST(cg.cliente_id AS text) FROM " + b.schema.ClientGroupTable +
		" cg WHERE CAST(cg.grupo_id AS text) IN " + list + ")", true
}

func where(query squirrel.SelectBuilder, conds []string) squirrel.SelectBuilder {
	for _, c := range conds {
		query = query.Where(c)
	}
	return query
}

func withStages(stages []stage, final squirrel.SelectBuilder) (string, error) {
	parts := make([]string, 0, len(stages))
	for _, s := range stages {
		sql, err := toSQL(s.query)
		if err != nil {
			return "", fmt.Errorf("montando etapa %s: %w", s.name, err)
		}
		parts = append(parts, s.name+" AS ("+sql+")")
	}
	return toSQL(final.Prefix("WITH " + strings.Join(parts, ", ")))
}

func toSQL(query squirrel.SelectBuilder) (string, error) {
	sql, _, err := query.ToSql()
	return sql, err
}

type window struct {
	sourceStart time.Time
	outputStart time.Time
	endMonth    time.Time
}

// overviewBounds limita a saída aos 12 meses mais recentes da janela e recua
// mais 12 meses na leitura para alimentar o LAG anual.
func overviewBounds(w domain.DateWindow) window {
	endMonth := monthStart(w.End)
	outputStart := monthStart(w.Start)
	if earliest := endMonth.AddDate(0, -(overviewMonths - 1), 0); outputStart.Before(earliest) {
		outputStart = earliest
	}
	return window{
		sourceStart: outputStart.AddDate(0, -overviewMonths, 0),
		outputStart: outputStart,
		endMonth:    endMonth,
	}
}

func validateWindow(w domain.DateWindow) error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: início e fim são obrigatórios", ErrInvalidWindow)
	}
	if w.Start.After(w.End) {
		return fmt.Errorf("%w: início %s depois do fim %s", ErrInvalidWindow, w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	return nil
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthOf(expr string) string {
	return "CAST(date_trunc('month', CAST(" + expr + " AS timestamp)) AS date)"
}

func goalMonth(gs *domain.GoalSchema) string {
	col := "g." + quoteIdent(gs.MonthColumn)
	switch gs.MonthKind {
	case domain.MonthKindDate:
		return monthOf(col)
	case domain.MonthKindYYYYMM:
		return "to_date(CAST(" + col + " AS text), 'YYYYMM')"
	default:
		return "to_date(substr(CAST(" + col + " AS text), 1, 7), 'YYYY-MM')"
	}
}

func dateLiteral(t time.Time) string {
	return "CAST('" + t.Format(time.DateOnly) + "' AS date)"
}

func dateBetween(expr string, from, to time.Time) string {
	return "CAST(" + expr + " AS date) BETWEEN " + dateLiteral(from) + " AND " + dateLiteral(to)
}

// nullGuardedRatio nunca divide quando o denominador é nulo ou zero
func nullGuardedRatio(numerator, denominator string) string {
	return "CASE WHEN " + denominator + " IS NULL OR " + denominator + " = 0 THEN NULL ELSE " +
		numerator + " / " + denominator + " END"
}

func growthRatio(current, baseline string) string {
	return "CASE WHEN " + baseline + " IS NULL OR " + baseline + " = 0 THEN NULL ELSE " +
		current + " / " + baseline + " - 1 END"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
