// Package answer shapes execution results into the payload handed to the
// interpreter: currency- and timezone-normalized values under declared
// labels, never raw physical identifiers.
package answer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/schema"
	"github.com/MiguelAlvarez111/finbot-public-portfolio/internal/store"
)

// Payload is what the interpreter sees. Values are pre-formatted strings so
// the model cannot misrender amounts or dates, and Truncated tells it the
// rows are a prefix, not the full set.
type Payload struct {
	Labels    []string            `json:"labels"`
	Rows      []map[string]string `json:"rows"`
	RowCount  int                 `json:"row_count"`
	Truncated bool                `json:"truncated"`
}

// JSON renders the payload for the interpreter prompt.
func (p Payload) JSON() string {
	b, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Shape projects an execution result through the schema context's declared
// labels and the caller's presentation settings. Fractional numerics are
// money in this schema and get the currency format; integers (counts, ids)
// stay plain; timestamps convert from UTC to the caller's zone.
func Shape(result *store.ExecutionResult, sc *schema.Context, settings store.TenantSettings) Payload {
	loc := LocationFor(settings.Timezone)

	labels := make([]string, len(result.Columns))
	for i, col := range result.Columns {
		labels[i] = sc.LabelFor(col)
	}

	rows := make([]map[string]string, 0, len(result.Rows))
	for _, raw := range result.Rows {
		row := make(map[string]string, len(result.Columns))
		for i, col := range result.Columns {
			row[labels[i]] = formatValue(raw[col], loc)
		}
		rows = append(rows, row)
	}

	return Payload{
		Labels:    labels,
		Rows:      rows,
		RowCount:  len(rows),
		Truncated: result.Truncated,
	}
}

func formatValue(v any, loc *time.Location) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return FormatLocal(x, loc)
	case float64:
		return FormatCurrency(x)
	case float32:
		return FormatCurrency(float64(x))
	case int64:
		return fmt.Sprintf("%d", x)
	case int32:
		return fmt.Sprintf("%d", x)
	case int:
		return fmt.Sprintf("%d", x)
	case bool:
		if x {
			return "sí"
		}
		return "no"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// TemplatedSummary is the non-AI fallback when the interpreter is
// unavailable: a plain factual summary of the payload.
func TemplatedSummary(p Payload) string {
	if p.RowCount == 0 {
		return "No encontré información para tu pregunta. 😅"
	}
	if p.RowCount == 1 && len(p.Rows[0]) == 1 {
		for _, v := range p.Rows[0] {
			return fmt.Sprintf("El resultado es: %s", v)
		}
	}
	if p.Truncated {
		return fmt.Sprintf("Encontré más de %d resultados; te muestro los primeros %d. Usa el dashboard para ver el detalle.", p.RowCount, p.RowCount)
	}
	return fmt.Sprintf("Encontré %d resultado(s). Usa el dashboard para ver el detalle.", p.RowCount)
}
