// Package filter compila filtros de dimensão em predicados SQL com literais embutidos.
// O proxy não aceita parâmetros, então os valores são escapados duplicando aspas simples.
package filter

import (
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/sales-kpi-api/internal/domain"
)

// Compile retorna a lista "('a','b')" pronta para IN (...). Lista nula ou vazia
// retorna ok=false: nenhuma restrição, nunca um predicado sempre falso.
func Compile(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}

	quoted := make([]string, 0, len(values))
	for _, v := range values {
		audit(v)
		quoted = append(quoted, Quote(v))
	}

	return "(" + strings.Join(quoted, ",") + ")", true
}

// Quote escapa um único literal de texto
func Quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// Predicate gera "coluna IN (...)" ou ok=false quando não há valores
func Predicate(column string, values []string) (string, bool) {
	list, ok := Compile(values)
	if !ok {
		return "", false
	}
	return column + " IN " + list, true
}

// Columns são as expressões SQL de cada dimensão no plano escolhido
type Columns struct {
	Branch  string
	Client  string
	Product string
}

// Conditions combina com AND as dimensões presentes. Grupo de clientes é tratado
// pelo construtor de SQL porque depende da tabela de vínculo.
func Conditions(f domain.DimensionFilter, cols Columns) []string {
	conds := make([]string, 0, 3)
	if p, ok := Predicate(cols.Branch, f.Branches); ok {
		conds = append(conds, p)
	}
	if p, ok := Predicate(cols.Client, f.Clients); ok {
		conds = append(conds, p)
	}
	if p, ok := Predicate(cols.Product, f.Products); ok {
		conds = append(conds, p)
	}
	return conds
}

// audit apenas registra valores com padrão de injeção; o escape acima continua valendo
func audit(value string) {
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		logrus.WithFields(logrus.Fields{
			"fingerprint": string(fingerprint),
			"value":       value,
		}).Warn("filtro: valor com padrão suspeito de SQL injection")
	}
}
