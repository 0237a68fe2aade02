package postgres

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigrations(t *testing.T) string {
	t.Helper()
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	var sb strings.Builder
	for _, name := range names {
		b, err := migrationFiles.ReadFile(name)
		require.NoError(t, err)
		sb.Write(b)
	}
	return sb.String()
}

func TestMigraciones_CostosSinEscalaFija(t *testing.T) {
	schema := readMigrations(t)
	assert.NotContains(t, schema, "NUMERIC(", "una escala fija redondea unit_cost y rompe total_cost = quantity × unit_cost")
	assert.Contains(t, schema, "ALTER COLUMN unit_cost TYPE NUMERIC;")
	assert.Contains(t, schema, "ALTER COLUMN total_cost TYPE NUMERIC;")
}

func TestMigraciones_UnaLlegadaPorTraslado(t *testing.T) {
	schema := readMigrations(t)
	assert.Contains(t, schema, "CREATE UNIQUE INDEX IF NOT EXISTS "+transferReceiptIndex)
	assert.Contains(t, schema, "WHERE movement_type = 'TRANSFER_IN' AND reference_type = 'Transfer'")
}
