// Package plan escolhe entre o plano normalizado (cabeçalho + itens) e o plano de
// fallback (tabela plana) e monta o SQL de cada consulta de indicadores.
package plan

import (
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
	"github.com/vfg2006/sales-kpi-api/internal/observability"
)

const (
	NormalizedPlanName = "normalized"
	FallbackPlanName   = "fallback"
)

// QueryPlan gera o SQL de todas as consultas para um formato de esquema.
// ClientGoalsSQL retorna ok=false quando o tenant não tem tabela de metas reconhecida.
type QueryPlan interface {
	Name() string
	MonthlyOverviewSQL(f domain.DimensionFilter, w domain.DateWindow) (string, error)
	SalesMovementsSQL(f domain.DimensionFilter, w domain.DateWindow, limit int) (string, error)
	MonthlyRevenueSQL(f domain.DimensionFilter, w domain.DateWindow) (string, error)
	ClientGoalsSQL(f domain.DimensionFilter, w domain.DateWindow) (string, bool, error)
}

// Select é total: cabeçalho e itens presentes levam ao plano normalizado,
// qualquer outra combinação leva ao fallback.
func Select(caps domain.CapabilitySet, schema domain.SalesSchema) QueryPlan {
	var p QueryPlan
	if caps.HasNormalizedTables() {
		p = newNormalizedPlan(caps, schema)
	} else {
		p = newFallbackPlan(caps, schema)
	}

	observability.RecordPlanSelection(p.Name())
	logrus.WithFields(logrus.Fields{
		"plan":  p.Name(),
		"goals": caps.SupportsGoals(),
	}).Debug("Plano de consulta selecionado")

	return p
}

type normalizedPlan struct {
	builder
}

func newNormalizedPlan(caps domain.CapabilitySet, schema domain.SalesSchema) *normalizedPlan {
	src := source{
		from:    schema.MovementTable + " m",
		joins:   []string{"JOIN " + schema.ItemTable + " i ON i.movimentacao_id = m.id"},
		date:    "m.data",
		client:  "CAST(m.cliente_id AS text)",
		product: "CAST(i.produto_id AS text)",
		branch:  "CAST(m.filial_id AS text)",
		revenue: "CAST(i.valor_total AS numeric)",
		units:   "CAST(i.quantidade AS numeric)",
		volume:  "CAST(i.litros AS numeric)",
	}

	// Tabelas de nomes são opcionais; sem elas o próprio id vira o nome
	src.clientName, src.productName, src.branchName = src.client, src.product, src.branch
	if caps.Clients {
		src.joins = append(src.joins, "LEFT JOIN "+schema.ClientTable+" c ON c.id = m.cliente_id")
		src.clientName = "COALESCE(CAST(c.nome AS text), " + src.client + ")"
		src.postalCode = "c.cep"
	}
	if caps.Products {
		src.joins = append(src.joins, "LEFT JOIN "+schema.ProductTable+" p ON p.id = i.produto_id")
		src.productName = "COALESCE(CAST(p.nome AS text), " + src.product + ")"
	}
	if caps.Branches {
		src.joins = append(src.joins, "LEFT JOIN "+schema.BranchTable+" f ON f.id = m.filial_id")
		src.branchName = "COALESCE(CAST(f.nome AS text), " + src.branch + ")"
	}

	return &normalizedPlan{builder: newBuilder(src, caps, schema)}
}

func (p *normalizedPlan) Name() string { return NormalizedPlanName }

// fallbackPlan lê da tabela plana legada, que já traz ids e nomes desnormalizados
type fallbackPlan struct {
	builder
}

func newFallbackPlan(caps domain.CapabilitySet, schema domain.SalesSchema) *fallbackPlan {
	src := source{
		from:        schema.FlatTable + " v",
		date:        "v.data",
		client:      "CAST(v.cliente_id AS text)",
		clientName:  "COALESCE(CAST(v.cliente_nome AS text), CAST(v.cliente_id AS text))",
		product:     "CAST(v.produto_id AS text)",
		productName: "COALESCE(CAST(v.produto_nome AS text), CAST(v.produto_id AS text))",
		branch:      "CAST(v.filial_id AS text)",
		branchName:  "COALESCE(CAST(v.filial_nome AS text), CAST(v.filial_id AS text))",
		revenue:     "CAST(v.valor_total AS numeric)",
		units:       "CAST(v.quantidade AS numeric)",
		volume:      "CAST(v.litros AS numeric)",
		postalCode:  "v.cep",
	}

	return &fallbackPlan{builder: newBuilder(src, caps, schema)}
}

func (p *fallbackPlan) Name() string { return FallbackPlanName }
