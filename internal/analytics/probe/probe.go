// Package probe descobre quais tabelas de vendas existem no banco do tenant.
// A sondagem é consultiva: falhas resultam em "capacidade ausente", nunca em erro.
package probe

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/infrastructure/integrator/dbproxy"
	"github.com/vfg2006/sales-kpi-api/internal/analytics/filter"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/pkg/normalize"
)

// Sinônimos aceitos por campo lógico da tabela de metas, em ordem de preferência
var (
	goalClientColumns = []string{"cliente_id", "id_cliente", "codigo_cliente", "cod_cliente", "client_id", "customer_id"}
	goalValueColumns  = []string{"valor_meta", "meta_valor", "meta", "valor", "goal_value", "target", "amount"}
	goalMonthColumns  = []string{"mes_referencia", "competencia", "mes", "periodo", "data_referencia", "data", "month", "period"}
	goalBranchColumns = []string{"filial_id", "id_filial", "codigo_filial", "branch_id"}
)

const systemSchemasExcluded = "table_schema NOT IN ('pg_catalog', 'information_schema')"

type Prober interface {
	Probe(ctx context.Context, ref domain.TenantDatabaseRef) domain.CapabilitySet
}

type SchemaProber struct {
	executor dbproxy.Executor
	schema   domain.SalesSchema
	now      func() time.Time
}

func NewSchemaProber(executor dbproxy.Executor, schema domain.SalesSchema) *SchemaProber {
	return &SchemaProber{
		executor: executor,
		schema:   schema,
		now:      time.Now,
	}
}

// Probe executa até duas consultas: tabelas existentes e, se houver tabela de metas, suas colunas
func (p *SchemaProber) Probe(ctx context.Context, ref domain.TenantDatabaseRef) domain.CapabilitySet {
	caps := domain.CapabilitySet{ProbedAt: p.now()}

	logger := logrus.WithFields(logrus.Fields{
		"tenant_id":   ref.TenantID,
		"database_id": ref.DatabaseID,
	})

	tables, err := p.existingTables(ctx, ref)
	if err != nil {
		logger.WithError(err).Warn("Sondagem de tabelas falhou, seguindo sem capacidades")
		caps.Degraded = true
		return caps
	}

	caps.Movements = tables.has(p.schema.MovementTable)
	caps.MovementItems = tables.has(p.schema.ItemTable)
	caps.Clients = tables.has(p.schema.ClientTable)
	caps.Branches = tables.has(p.schema.BranchTable)
	caps.Products = tables.has(p.schema.ProductTable)
	caps.ClientGroups = tables.has(p.schema.ClientGroupTable)

	if tables.has(p.schema.GoalTable) {
		goalSchema, err := p.goalSchema(ctx, ref, tables.schemaOf(p.schema.GoalTable))
		if err != nil {
			logger.WithError(err).Warn("Sondagem de colunas da tabela de metas falhou, metas desabilitadas")
			caps.Degraded = true
		} else if goalSchema != nil {
			caps.Goals = true
			caps.GoalSchema = goalSchema
		} else {
			logger.Info("Tabela de metas encontrada sem colunas reconhecidas")
		}
	}

	logger.WithFields(logrus.Fields{
		"normalized": caps.HasNormalizedTables(),
		"goals":      caps.SupportsGoals(),
	}).Debug("Sondagem de capacidades concluída")

	return caps
}

// tableSet mapeia o nome da tabela (minúsculo) para o schema onde foi encontrada
type tableSet map[string]string

func (t tableSet) has(name string) bool {
	_, ok := t[strings.ToLower(name)]
	return ok
}

func (t tableSet) schemaOf(name string) string {
	return t[strings.ToLower(name)]
}

// existingTables guarda um schema por tabela; "public" tem prioridade quando o nome se repete
func (p *SchemaProber) existingTables(ctx context.Context, ref domain.TenantDatabaseRef) (tableSet, error) {
	builder := squirrel.
		Select("table_schema", "table_name").
		From("information_schema.tables").
		Where(systemSchemasExcluded).
		OrderBy("(table_schema = 'public') DESC", "table_schema")
	if inList, ok := filter.Predicate("lower(table_name)", lowerAll(p.schema.Tables())); ok {
		builder = builder.Where(inList)
	}

	query, _, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.executor.Query(ctx, ref, query, dbproxy.QueryOptions{Kind: "probe_tables"})
	if err != nil {
		return nil, err
	}

	tables := make(tableSet, len(rows))
	for _, row := range rows {
		name := strings.ToLower(rowString(row, "table_name"))
		if _, seen := tables[name]; !seen {
			tables[name] = rowString(row, "table_schema")
		}
	}
	return tables, nil
}

type columnInfo struct {
	name     string
	dataType string
}

// goalSchema lê as colunas da tabela de metas apenas no schema encontrado na primeira sondagem
func (p *SchemaProber) goalSchema(ctx context.Context, ref domain.TenantDatabaseRef, tableSchema string) (*domain.GoalSchema, error) {
	builder := squirrel.
		Select("column_name", "data_type").
		From("information_schema.columns").
		Where("lower(table_name) = " + filter.Quote(strings.ToLower(p.schema.GoalTable)))
	if tableSchema != "" {
		builder = builder.Where("table_schema = " + filter.Quote(tableSchema))
	} else {
		builder = builder.Where(systemSchemasExcluded)
	}

	query, _, err := builder.OrderBy("ordinal_position").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.executor.Query(ctx, ref, query, dbproxy.QueryOptions{Kind: "probe_goal_columns"})
	if err != nil {
		return nil, err
	}

	columns := make(map[string]columnInfo, len(rows))
	for _, row := range rows {
		name := rowString(row, "column_name")
		columns[strings.ToLower(name)] = columnInfo{name: name, dataType: strings.ToLower(rowString(row, "data_type"))}
	}

	goalSchema := recognizeGoalSchema(p.schema.GoalTable, columns)
	if goalSchema != nil {
		goalSchema.Schema = tableSchema
	}
	return goalSchema, nil
}

// recognizeGoalSchema exige colunas de cliente, valor e mês; filial é opcional.
// Para cada campo vale o primeiro sinônimo encontrado.
func recognizeGoalSchema(table string, columns map[string]columnInfo) *domain.GoalSchema {
	client, ok := firstMatch(columns, goalClientColumns)
	if !ok {
		return nil
	}
	value, ok := firstMatch(columns, goalValueColumns)
	if !ok {
		return nil
	}
	month, ok := firstMatch(columns, goalMonthColumns)
	if !ok {
		return nil
	}

	schema := &domain.GoalSchema{
		Table:        table,
		ClientColumn: client.name,
		ValueColumn:  value.name,
		MonthColumn:  month.name,
		MonthKind:    monthKind(month.dataType),
	}
	if branch, ok := firstMatch(columns, goalBranchColumns); ok {
		schema.BranchColumn = branch.name
	}
	return schema
}

func firstMatch(columns map[string]columnInfo, candidates []string) (columnInfo, bool) {
	for _, c := range candidates {
		if col, ok := columns[c]; ok {
			return col, true
		}
	}
	return columnInfo{}, false
}

func monthKind(dataType string) domain.MonthKind {
	switch {
	case dataType == "date" || strings.HasPrefix(dataType, "timestamp"):
		return domain.MonthKindDate
	case dataType == "integer" || dataType == "bigint" || dataType == "smallint" || dataType == "numeric":
		return domain.MonthKindYYYYMM
	default:
		return domain.MonthKindText
	}
}

func rowString(row map[string]any, key string) string {
	if v, ok := row[key]; ok {
		return normalize.String(v)
	}
	// Alguns drivers devolvem as colunas do catálogo em maiúsculas
	return normalize.String(row[strings.ToUpper(key)])
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, strings.ToLower(v))
		}
	}
	return out
}
