package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
		ok       bool
	}{
		{name: "lista nula não gera predicado", values: nil, ok: false},
		{name: "lista vazia não gera predicado", values: []string{}, ok: false},
		{name: "um valor", values: []string{"10"}, expected: "('10')", ok: true},
		{name: "vários valores", values: []string{"10", "20"}, expected: "('10','20')", ok: true},
		{name: "aspas simples são duplicadas", values: []string{"D'Ávila"}, expected: "('D''Ávila')", ok: true},
		{name: "tentativa de quebrar o literal", values: []string{"x' OR '1'='1"}, expected: "('x'' OR ''1''=''1')", ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compile(tt.values)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	// Desfazer o escape como o banco faz deve devolver o valor original
	values := []string{"O'Brien", "''", "a'b'c", "sem aspas"}
	for _, v := range values {
		quoted := Quote(v)
		inner := quoted[1 : len(quoted)-1]
		assert.Equal(t, v, unescape(inner))
	}
}

func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\'' && i+1 < len(s) && s[i+1] == '\'' {
			i++
		}
	}
	return string(out)
}

func TestConditions(t *testing.T) {
	cols := Columns{Branch: "m.filial_id", Client: "m.cliente_id", Product: "i.produto_id"}

	t.Run("sem filtros não gera condições", func(t *testing.T) {
		assert.Empty(t, Conditions(domain.DimensionFilter{Branches: []string{}}, cols))
	})

	t.Run("dimensões presentes combinadas", func(t *testing.T) {
		conds := Conditions(domain.DimensionFilter{
			Branches: []string{"1"},
			Products: []string{"A", "B"},
		}, cols)
		assert.Equal(t, []string{
			"m.filial_id IN ('1')",
			"i.produto_id IN ('A','B')",
		}, conds)
	})
}
