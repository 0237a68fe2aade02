package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestValuate_Escenario1(t *testing.T) {
	recs := records(
		mov{id: "m1", typ: entity.MovementStockIn, qty: 100, cost: "10", at: day(0)},
		mov{id: "m2", typ: entity.MovementStockOut, qty: 30, at: day(1)},
	)

	v := inventory.Valuate(inventory.StockLevels(recs, day(2)), "")

	require.Len(t, v.Lines, 1)
	assert.True(t, v.Lines[0].TotalValue.Equal(dec("700")))
	assert.True(t, v.TotalValue.Equal(dec("700")))
	assert.Equal(t, int64(70), v.TotalUnits)
	require.True(t, v.AverageCost.Valid)
	assert.True(t, v.AverageCost.Decimal.Equal(dec("10")))
	assert.Zero(t, v.ExcludedLines)
}

func TestValuate_ExcluyeSinStockOSinCosto(t *testing.T) {
	recs := records(
		mov{id: "m1", typ: entity.MovementStockIn, book: "con-costo", qty: 10, cost: "3"},
		mov{id: "m2", typ: entity.MovementStockIn, book: "sin-costo", qty: 10},
		mov{id: "m3", typ: entity.MovementAdjustment, book: "negativo", qty: -4},
		mov{id: "m4", typ: entity.MovementStockIn, book: "agotado", qty: 5, cost: "8"},
		mov{id: "m5", typ: entity.MovementStockOut, book: "agotado", qty: 5, at: day(1)},
	)

	v := inventory.Valuate(inventory.StockLevels(recs, day(2)), "")

	require.Len(t, v.Lines, 1)
	assert.Equal(t, "con-costo", v.Lines[0].BookID)
	assert.Equal(t, 3, v.ExcludedLines)
	assert.True(t, v.TotalValue.Equal(dec("30")))
	assert.True(t, v.AverageCost.Decimal.Equal(dec("3")), "las excluidas no bajan el promedio")
}

func TestValuate_FiltroPorSedeYOrden(t *testing.T) {
	recs := records(
		mov{id: "m1", typ: entity.MovementStockIn, site: "site-1", book: "b1", qty: 10, cost: "2"},
		mov{id: "m2", typ: entity.MovementStockIn, site: "site-1", book: "b2", qty: 10, cost: "5"},
		mov{id: "m3", typ: entity.MovementStockIn, site: "site-1", book: "b3", qty: 25, cost: "2"},
		mov{id: "m4", typ: entity.MovementStockIn, site: "site-2", book: "b1", qty: 1, cost: "1000"},
	)
	levels := inventory.StockLevels(recs, day(1))

	t.Run("una sede", func(t *testing.T) {
		v := inventory.Valuate(levels, "site-1")

		require.Len(t, v.Lines, 3)
		// 50, 50, 20: empate resuelto por libro
		assert.Equal(t, []string{"b2", "b3", "b1"}, []string{v.Lines[0].BookID, v.Lines[1].BookID, v.Lines[2].BookID})
		require.Len(t, v.Sites, 1)
		assert.True(t, v.TotalValue.Equal(dec("120")))
	})

	t.Run("todas", func(t *testing.T) {
		v := inventory.Valuate(levels, "")

		require.Len(t, v.Sites, 2)
		assert.Equal(t, "site-1", v.Sites[0].SiteID)
		assert.True(t, v.Sites[1].TotalValue.Equal(dec("1000")))
		assert.Equal(t, "site-2", v.Lines[0].SiteID)
		assert.Equal(t, int64(46), v.TotalUnits)
	})
}

func TestValuate_Idempotente(t *testing.T) {
	levels := inventory.StockLevels(ledgerFixture(), day(30))
	assert.Equal(t, inventory.Valuate(levels, ""), inventory.Valuate(levels, ""))
}
