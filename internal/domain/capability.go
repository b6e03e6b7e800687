package domain

import (
	"strings"
	"time"
)

// MonthKind indica como a coluna de competência da tabela de metas está armazenada
type MonthKind string

const (
	MonthKindDate   MonthKind = "date"   // date/timestamp
	MonthKindText   MonthKind = "text"   // 'YYYY-MM' ou 'YYYY-MM-DD'
	MonthKindYYYYMM MonthKind = "yyyymm" // inteiro 202403
)

// GoalSchema descreve as colunas reconhecidas na tabela de metas
type GoalSchema struct {
	Schema       string    `json:"schema,omitempty"`
	Table        string    `json:"table"`
	ClientColumn string    `json:"client_column"`
	ValueColumn  string    `json:"value_column"`
	MonthColumn  string    `json:"month_column"`
	MonthKind    MonthKind `json:"month_kind"`
	BranchColumn string    `json:"branch_column,omitempty"`
}

// QualifiedTable prefixa o schema quando a tabela de metas está fora de "public"
func (g GoalSchema) QualifiedTable() string {
	if g.Schema == "" || g.Schema == "public" {
		return g.Table
	}
	return `"` + strings.ReplaceAll(g.Schema, `"`, `""`) + `".` + g.Table
}

// CapabilitySet é o resultado de uma sondagem do banco do tenant.
// Uma nova sondagem sempre produz um novo valor; nunca é alterado depois de criado.
type CapabilitySet struct {
	Movements     bool        `json:"movements"`
	MovementItems bool        `json:"movement_items"`
	Clients       bool        `json:"clients"`
	Branches      bool        `json:"branches"`
	Products      bool        `json:"products"`
	ClientGroups  bool        `json:"client_groups"`
	Goals         bool        `json:"goals"`
	GoalSchema    *GoalSchema `json:"goal_schema,omitempty"`
	Degraded      bool        `json:"degraded"`
	ProbedAt      time.Time   `json:"probed_at"`
}

// HasNormalizedTables indica se cabeçalho e itens de movimentação existem
func (c CapabilitySet) HasNormalizedTables() bool {
	return c.Movements && c.MovementItems
}

func (c CapabilitySet) SupportsGoals() bool {
	return c.Goals && c.GoalSchema != nil
}
