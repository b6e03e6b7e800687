package domain

// SalesSchema contém os nomes das tabelas esperadas no banco do tenant
type SalesSchema struct {
	MovementTable    string
	ItemTable        string
	ClientTable      string
	BranchTable      string
	ProductTable     string
	ClientGroupTable string
	GoalTable        string
	FlatTable        string
}

func DefaultSalesSchema() SalesSchema {
	return SalesSchema{
		MovementTable:    "movimentacoes",
		ItemTable:        "movimentacao_itens",
		ClientTable:      "clientes",
		BranchTable:      "filiais",
		ProductTable:     "produtos",
		ClientGroupTable: "cliente_grupos",
		GoalTable:        "metas",
		FlatTable:        "vendas",
	}
}

// Tables retorna todas as tabelas conhecidas, na ordem usada pela sondagem
func (s SalesSchema) Tables() []string {
	return []string{
		s.MovementTable,
		s.ItemTable,
		s.ClientTable,
		s.BranchTable,
		s.ProductTable,
		s.ClientGroupTable,
		s.GoalTable,
	}
}
