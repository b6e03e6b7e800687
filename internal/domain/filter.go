package domain

import (
	"sort"
	"time"
)

// DimensionFilter restringe a consulta por dimensão. Lista nula ou vazia significa
// "sem restrição", nunca "nenhum resultado".
type DimensionFilter struct {
	Branches []string `json:"branches,omitempty"`
	Clients  []string `json:"clients,omitempty"`
	Products []string `json:"products,omitempty"`
	Groups   []string `json:"groups,omitempty"`
}

// HasClientLevel indica filtros em granularidade de cliente (cliente ou grupo de clientes)
func (f DimensionFilter) HasClientLevel() bool {
	return len(f.Clients) > 0 || len(f.Groups) > 0
}

// Canonical devolve uma cópia com as listas ordenadas e listas vazias como nil,
// para que filtros equivalentes tenham a mesma serialização
func (f DimensionFilter) Canonical() DimensionFilter {
	return DimensionFilter{
		Branches: sortedCopy(f.Branches),
		Clients:  sortedCopy(f.Clients),
		Products: sortedCopy(f.Products),
		Groups:   sortedCopy(f.Groups),
	}
}

func sortedCopy(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]string(nil), values...)
	sort.Strings(sorted)
	return sorted
}

// DateWindow é inclusivo nas duas pontas
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w DateWindow) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// LastCompletedMonths retorna a janela dos últimos n meses fechados em relação a now
func LastCompletedMonths(now time.Time, n int) DateWindow {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := firstOfMonth.AddDate(0, 0, -1)
	start := firstOfMonth.AddDate(0, -n, 0)
	return DateWindow{Start: start, End: end}
}

// KPIRequest agrupa filtro e janela de uma consulta de indicadores
type KPIRequest struct {
	Filter DimensionFilter `json:"filter"`
	Window DateWindow      `json:"window"`
}
