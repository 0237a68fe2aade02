package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func TestAnalyzeAging_Clasificacion(t *testing.T) {
	today := day(400)
	recs := records(
		mov{id: "m1", typ: entity.MovementStockIn, book: "activo", qty: 5, cost: "2", at: day(380)},
		mov{id: "m2", typ: entity.MovementStockIn, book: "lento", qty: 5, cost: "2", at: day(300)},  // 100 días
		mov{id: "m3", typ: entity.MovementStockIn, book: "muerto", qty: 5, cost: "4", at: day(100)}, // 300 días
		mov{id: "m4", typ: entity.MovementStockIn, book: "lento-sin-costo", qty: 1, at: day(250)},   // 150 días
		mov{id: "m5", typ: entity.MovementStockIn, book: "borde", qty: 1, at: day(310)},             // 90 días: aún activo
	)

	r := inventory.AnalyzeAging(inventory.StockLevels(recs, today), today, inventory.DefaultAgingThresholds())

	require.Len(t, r.SlowMoving, 2)
	assert.Equal(t, "lento-sin-costo", r.SlowMoving[0].BookID)
	assert.Equal(t, 150, r.SlowMoving[0].DaysSinceMovement)
	assert.False(t, r.SlowMoving[0].Value.Valid)
	assert.Equal(t, "lento", r.SlowMoving[1].BookID)
	assert.True(t, r.SlowMovingValue.Equal(dec("10")))

	require.Len(t, r.DeadStock, 1)
	assert.Equal(t, "muerto", r.DeadStock[0].BookID)
	assert.Equal(t, 300, r.DeadStock[0].DaysSinceMovement)
	assert.True(t, r.DeadStockValue.Equal(dec("20")))
}

func TestAnalyzeAging_ExclusividadStockNoPositivo(t *testing.T) {
	today := day(400)
	recs := records(
		mov{id: "m1", typ: entity.MovementAdjustment, book: "negativo", qty: -3, at: day(0)},
		mov{id: "m2", typ: entity.MovementStockIn, book: "cero", qty: 3, at: day(0)},
		mov{id: "m3", typ: entity.MovementStockOut, book: "cero", qty: 3, at: day(1)},
	)

	r := inventory.AnalyzeAging(inventory.StockLevels(recs, today), today, inventory.DefaultAgingThresholds())

	assert.Empty(t, r.SlowMoving)
	assert.Empty(t, r.DeadStock)
}

func TestAnalyzeAging_DiasCompletos(t *testing.T) {
	last := day(0)
	recs := records(mov{id: "m1", typ: entity.MovementStockIn, qty: 1, at: last})
	th := inventory.AgingThresholds{SlowMovingDays: 10, DeadStockDays: 20}

	// 10 días y 23 horas cuentan como 10: no supera el umbral.
	r := inventory.AnalyzeAging(inventory.StockLevels(recs, day(30)), day(10).Add(23*hour), th)
	assert.Empty(t, r.SlowMoving)

	r = inventory.AnalyzeAging(inventory.StockLevels(recs, day(30)), day(11), th)
	assert.Len(t, r.SlowMoving, 1)
}

func TestAnalyzeAging_ListasDisjuntas(t *testing.T) {
	today := day(500)
	r := inventory.AnalyzeAging(inventory.StockLevels(ledgerFixture(), today), today, inventory.DefaultAgingThresholds())

	seen := map[entity.StockKey]bool{}
	for _, it := range append(r.SlowMoving, r.DeadStock...) {
		k := key(it.SiteID, it.BookID)
		assert.False(t, seen[k], "%v en ambas listas", k)
		seen[k] = true
		assert.Positive(t, it.CurrentStock)
	}
	assert.NotEmpty(t, r.DeadStock)
}
