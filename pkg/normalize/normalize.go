// Package normalize converte valores vindos do proxy (números, textos formatados,
// json.Number, objetos com campo "value") em tipos definidos.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number converte v para float64 usando zero como fallback.
// Use para receita, volume e contagens: ausência significa "sem movimento".
func Number(v any) float64 {
	if n, ok := parse(v); ok {
		return n
	}
	return 0
}

// NullableNumber converte v preservando a ausência como nil.
// Use para razões, metas e participações: ausência significa "não calculável".
func NullableNumber(v any) *float64 {
	if n, ok := parse(v); ok {
		return &n
	}
	return nil
}

// Int é Number truncado para contagens
func Int(v any) int64 {
	return int64(Number(v))
}

// String retorna a representação textual de v, vazia para nil
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func NullableString(v any) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(String(v))
	if s == "" {
		return nil
	}
	return &s
}

// Month repassa o mês 'YYYY-MM' como texto opaco; o SQL já trunca no mês
func Month(v any) string {
	return strings.TrimSpace(String(v))
}

func parse(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		return parseString(t.String())
	case string:
		return parseString(t)
	case []byte:
		return parseString(string(t))
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return parse(inner)
		}
		return 0, false
	case fmt.Stringer:
		return parseString(t.String())
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseString mantém apenas dígitos, vírgula, hífen e ponto e resolve o separador decimal:
// vírgula isolada é decimal; com ponto e vírgula presentes, o último dos dois é o decimal.
func parseString(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case strings.Count(cleaned, ".") > 1:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return finite(f)
}
