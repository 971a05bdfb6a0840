package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTenantTables(t *testing.T) {
	c := Default()

	assert.True(t, c.IsTenantTable("transactions"))
	assert.True(t, c.IsTenantTable("Users"), "lookup is case-insensitive")
	assert.False(t, c.IsTenantTable("pg_catalog"))

	assert.Equal(t, "telegram_id", c.TenantColumn("users"))
	assert.Equal(t, "user_id", c.TenantColumn("transactions"))
	assert.Equal(t, "", c.TenantColumn("missing"))
}

func TestIsTimestampColumn(t *testing.T) {
	c := Default()
	assert.True(t, c.IsTimestampColumn("transaction_date"))
	assert.True(t, c.IsTimestampColumn("TRANSACTION_DATE"))
	assert.False(t, c.IsTimestampColumn("start_date"), "plain dates need no conversion")
	assert.False(t, c.IsTimestampColumn("amount"))
}

func TestLabelFor(t *testing.T) {
	c := Default()
	assert.Equal(t, "monto", c.LabelFor("amount"))
	assert.Equal(t, "fecha", c.LabelFor("transaction_date"))
	assert.Equal(t, "total_gastado", c.LabelFor("Total_Gastado"), "unknown aliases pass through lowercased")
}

func TestPromptTextCarriesMandatoryFilter(t *testing.T) {
	text := Default().PromptText()
	assert.Contains(t, text, "Tabla: transactions")
	assert.Contains(t, text, "FILTRO OBLIGATORIO: user_id")
	assert.Contains(t, text, "FILTRO OBLIGATORIO: telegram_id")
	assert.Contains(t, text, "AT TIME ZONE")
	assert.Equal(t, 5, strings.Count(text, "FILTRO OBLIGATORIO"), "every tenant table declares its filter")
}
