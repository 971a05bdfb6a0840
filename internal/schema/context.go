// Package schema describes the slice of the transactional store the
// pipeline is allowed to query. The context doubles as the prompt schema
// block handed to the generator and as the validator's source of truth for
// which tables carry tenant-owned rows and which columns are UTC timestamps.
package schema

import (
	"fmt"
	"strings"
)

// Column describes one queryable column.
type Column struct {
	Name      string
	Type      string
	Label     string // user-facing label; physical names never reach the interpreter
	Timestamp bool   // stored as UTC timestamp, subject to the timezone rule
}

// Table describes one queryable table.
type Table struct {
	Name        string
	TenantOwned bool   // rows are scoped by TenantColumn
	TenantCol   string // filter column for tenant-owned tables
	Columns     []Column
}

// Context is the full schema description for one deployment. It is immutable
// after construction; validation must be a pure function of it.
type Context struct {
	tables    map[string]Table
	tableList []Table
}

// New builds a Context from a table list.
func New(tables []Table) *Context {
	m := make(map[string]Table, len(tables))
	for _, t := range tables {
		m[strings.ToLower(t.Name)] = t
	}
	return &Context{tables: m, tableList: tables}
}

// Default returns the personal-finance schema the bot queries.
func Default() *Context {
	return New([]Table{
		{
			Name:        "users",
			TenantOwned: true,
			TenantCol:   "telegram_id",
			Columns: []Column{
				{Name: "telegram_id", Type: "bigint", Label: "usuario"},
				{Name: "default_currency", Type: "text", Label: "moneda"},
			},
		},
		{
			Name:        "categories",
			TenantOwned: true,
			TenantCol:   "user_id",
			Columns: []Column{
				{Name: "id", Type: "integer", Label: "categoria_id"},
				{Name: "user_id", Type: "bigint", Label: "usuario"},
				{Name: "name", Type: "text", Label: "categoria"},
				{Name: "type", Type: "text", Label: "tipo"}, // 'INCOME' | 'EXPENSE'
			},
		},
		{
			Name:        "transactions",
			TenantOwned: true,
			TenantCol:   "user_id",
			Columns: []Column{
				{Name: "id", Type: "integer", Label: "transaccion_id"},
				{Name: "user_id", Type: "bigint", Label: "usuario"},
				{Name: "category_id", Type: "integer", Label: "categoria_id"},
				{Name: "amount", Type: "numeric(10,2)", Label: "monto"},
				{Name: "transaction_date", Type: "timestamptz", Label: "fecha", Timestamp: true},
				{Name: "description", Type: "text", Label: "descripcion"},
			},
		},
		{
			Name:        "budgets",
			TenantOwned: true,
			TenantCol:   "user_id",
			Columns: []Column{
				{Name: "id", Type: "integer", Label: "presupuesto_id"},
				{Name: "user_id", Type: "bigint", Label: "usuario"},
				{Name: "category_id", Type: "integer", Label: "categoria_id"},
				{Name: "amount", Type: "numeric(10,2)", Label: "monto"},
				{Name: "start_date", Type: "date", Label: "desde"},
				{Name: "end_date", Type: "date", Label: "hasta"},
			},
		},
		{
			Name:        "goals",
			TenantOwned: true,
			TenantCol:   "user_id",
			Columns: []Column{
				{Name: "id", Type: "integer", Label: "meta_id"},
				{Name: "user_id", Type: "bigint", Label: "usuario"},
				{Name: "name", Type: "text", Label: "meta"},
				{Name: "target_amount", Type: "numeric(10,2)", Label: "objetivo"},
				{Name: "current_amount", Type: "numeric(10,2)", Label: "ahorrado"},
				{Name: "deadline", Type: "date", Label: "fecha_limite"},
			},
		},
	})
}

// Table looks up a table by name, case-insensitively.
func (c *Context) Table(name string) (Table, bool) {
	t, ok := c.tables[strings.ToLower(name)]
	return t, ok
}

// IsTenantTable reports whether name is a table carrying tenant-owned rows.
func (c *Context) IsTenantTable(name string) bool {
	t, ok := c.Table(name)
	return ok && t.TenantOwned
}

// TenantColumn returns the tenant filter column for a tenant-owned table.
func (c *Context) TenantColumn(name string) string {
	t, ok := c.Table(name)
	if !ok || !t.TenantOwned {
		return ""
	}
	return t.TenantCol
}

// IsTimestampColumn reports whether col is a UTC timestamp column in any
// table of the context. Generated queries rarely qualify columns uniformly,
// so the check is by column name across tables.
func (c *Context) IsTimestampColumn(col string) bool {
	lower := strings.ToLower(col)
	for _, t := range c.tableList {
		for _, cl := range t.Columns {
			if cl.Timestamp && strings.ToLower(cl.Name) == lower {
				return true
			}
		}
	}
	return false
}

// LabelFor maps a physical column name to its declared label. Unknown names
// (aggregate aliases chosen by the generator) are returned lowercased as-is.
func (c *Context) LabelFor(col string) string {
	lower := strings.ToLower(col)
	for _, t := range c.tableList {
		for _, cl := range t.Columns {
			if strings.ToLower(cl.Name) == lower {
				return cl.Label
			}
		}
	}
	return lower
}

// PromptText renders the schema block for the generator prompt.
func (c *Context) PromptText() string {
	var sb strings.Builder
	sb.WriteString("ESQUEMA DE BASE DE DATOS (PostgreSQL):\n")
	for _, t := range c.tableList {
		sb.WriteString(fmt.Sprintf("\nTabla: %s\n", t.Name))
		for _, cl := range t.Columns {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", cl.Name, cl.Type))
		}
		if t.TenantOwned {
			sb.WriteString(fmt.Sprintf("  FILTRO OBLIGATORIO: %s = <id del usuario>\n", t.TenantCol))
		}
	}
	sb.WriteString("\nREGLA CRITICA DE TIMEZONE:\n")
	sb.WriteString("- transaction_date se almacena en UTC; convertir con AT TIME ZONE a la zona del usuario antes de comparar contra fechas de calendario\n")
	return sb.String()
}
