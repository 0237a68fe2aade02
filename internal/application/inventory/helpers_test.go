package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

const company = "company-1"

// now hora fija de todos los casos de uso en los tests.
var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func cost(v int64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromInt(v)) }

func daysAgo(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }

func header(site, book string, at time.Time) entity.MovementHeader {
	return entity.MovementHeader{CompanyID: company, SiteID: site, BookID: book, Timestamp: at, CreatedBy: "user-1"}
}

// seed anexa los movimientos a un ledger en memoria nuevo.
func seed(t *testing.T, ms ...entity.MovementRecord) *memory.LedgerStore {
	t.Helper()
	store := memory.NewLedgerStore()
	require.NoError(t, store.AppendBatch(context.Background(), ms))
	return store
}

// must para fixtures: un constructor que falla es un error del propio test.
func must(m entity.MovementRecord, err error) entity.MovementRecord {
	if err != nil {
		panic(err)
	}
	return m
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}
