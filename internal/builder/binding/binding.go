package binding

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"invoice-builder/internal/builder/models"
)

// ============================================================
// Path resolution
// ============================================================

// ResolvePath читает значение по пути "a.b.c" из записи.
// На любом отсутствующем сегменте возвращает nil, не паникует.
func ResolvePath(record models.Record, path string) any {
	if record == nil || path == "" {
		return nil
	}

	var cur any = map[string]any(record)
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case models.Record:
			v, ok := node[seg]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
		if cur == nil {
			return nil
		}
	}
	return cur
}

// ============================================================
// Substitution
// ============================================================

// Token возвращает плейсхолдер "{path}".
func Token(path string) string {
	return "{" + path + "}"
}

// Substitute заменяет все вхождения "{path}" строковым значением value.
// При value == nil шаблон возвращается без изменений, чтобы автор видел непривязанные поля.
func Substitute(tmpl, path string, value any) string {
	if value == nil || path == "" {
		return tmpl
	}
	return strings.ReplaceAll(tmpl, Token(path), FormatValue(value))
}

// ResolveContent: единая точка подстановки для экрана и экспорта.
func ResolveContent(el models.Element, record models.Record) string {
	text := el.Content.Text
	if el.Content.List {
		text = strings.Join(el.Content.Items, "\n")
	}
	if el.Type != models.TypeDataField || el.DataField == "" {
		return text
	}
	return Substitute(text, el.DataField, ResolvePath(record, el.DataField))
}

// ============================================================
// Value formatting
// ============================================================

// FormatValue превращает значение записи в строку так же, как это делает браузер.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, ",")
	case map[string]any, models.Record:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// number достаёт float64 из значения записи.
func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
