package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

// reportLedger sedes a y b, tres libros:
//
//	site-a/book-1  10 @5   hace 200 días            → muerta
//	site-a/book-2  20 @10  hace 100 días            → lenta
//	site-a/book-3  8 @3 hace 20 días, traslado de 4 a site-b (hace 3 → llega hace 2)
//	site-b/book-1  5 @2 hace 10 días, salida de 1 sin referencia hace 5
func reportLedger(t *testing.T) *memory.LedgerStore {
	t.Helper()
	out := must(entity.NewTransferOut(header("site-a", "book-3", daysAgo(3)), "site-b", 4, cost(3), entity.Reference{}))
	in := must(entity.NewTransferIn(header("site-b", "book-3", daysAgo(2)), "site-a", 4, cost(3),
		entity.Reference{Type: entity.ReferenceTransfer, ID: out.ID}))
	return seed(t,
		must(entity.NewStockIn(header("site-a", "book-1", daysAgo(200)), 10, cost(5), entity.Reference{})),
		must(entity.NewStockIn(header("site-a", "book-2", daysAgo(100)), 20, cost(10), entity.Reference{})),
		must(entity.NewStockIn(header("site-a", "book-3", daysAgo(20)), 8, cost(3), entity.Reference{})),
		must(entity.NewStockIn(header("site-b", "book-1", daysAgo(10)), 5, cost(2), entity.Reference{})),
		must(entity.NewStockOut(header("site-b", "book-1", daysAgo(5)), 1, decimal.NullDecimal{}, entity.Reference{})),
		out, in,
	)
}

func newReports(store repository.LedgerRepository) *appinv.ReportUseCase {
	return appinv.NewReportUseCase(store, appinv.DefaultReportSettings(), nil, fixedClock)
}

// ── Configuración ────────────────────────────────────────────────────────────

func TestNewReportSettings_DesdeConfig(t *testing.T) {
	s, err := appinv.NewReportSettings(config.ReportsConfig{
		HighValueThreshold:    decimal.NewFromInt(500),
		HighQuantityThreshold: 50,
		LargeAdjustmentQty:    5,
		AttentionWindowDays:   7,
		SlowMovingDays:        30,
		DeadStockDays:         60,
		TransferWindowDays:    3,
		TransferMatcher:       "nearest",
		ABCLimitA:             decimal.NewFromInt(70),
		ABCLimitB:             decimal.NewFromInt(90),
	})
	require.NoError(t, err)

	assert.Equal(t, engine.MatcherNearest, s.Matcher.Name())
	assert.Equal(t, 3*24*time.Hour, s.TransferWindow)
	assert.Equal(t, 7*24*time.Hour, s.Attention.Window)
	assert.Equal(t, int64(50), s.Attention.HighQuantity)
	assert.Equal(t, engine.AgingThresholds{SlowMovingDays: 30, DeadStockDays: 60}, s.Aging)
	assertDecimal(t, "70", s.ABC.LimitA)
}

func TestNewReportSettings_MatcherDesconocido(t *testing.T) {
	_, err := appinv.NewReportSettings(config.ReportsConfig{TransferMatcher: "greedy"})
	assert.Error(t, err)
}

// ── Stock y valorización ─────────────────────────────────────────────────────

func TestCurrentStockLevels_ResumenALaFecha(t *testing.T) {
	uc := newReports(reportLedger(t))

	s, err := uc.CurrentStockLevels(context.Background(), company, time.Time{}, repository.MovementFilter{})
	require.NoError(t, err)

	assert.Equal(t, now, s.AsOf)
	require.Len(t, s.Levels, 5)
	assert.Equal(t, int64(47), s.TotalStockIn)
	assert.Equal(t, int64(5), s.TotalStockOut)
	assert.Equal(t, int64(42), s.TotalCurrent)
	assert.Zero(t, s.NegativeLines)
}

func TestCurrentStockLevels_CorteAnteriorAlTraslado(t *testing.T) {
	uc := newReports(reportLedger(t))

	s, err := uc.CurrentStockLevels(context.Background(), company, daysAgo(4),
		repository.MovementFilter{BookID: "book-3"})
	require.NoError(t, err)

	require.Len(t, s.Levels, 1)
	assert.Equal(t, "site-a", s.Levels[0].SiteID)
	assert.Equal(t, int64(8), s.Levels[0].CurrentStock)
}

func TestValuation_PorSede(t *testing.T) {
	uc := newReports(reportLedger(t))

	all, err := uc.Valuation(context.Background(), company, "")
	require.NoError(t, err)
	assertDecimal(t, "282", all.TotalValue)
	assert.Equal(t, int64(42), all.TotalUnits)

	siteA, err := uc.Valuation(context.Background(), company, "site-a")
	require.NoError(t, err)
	assertDecimal(t, "262", siteA.TotalValue)
	require.Len(t, siteA.Lines, 3)
	assert.Equal(t, "book-2", siteA.Lines[0].BookID, "mayor valor primero")
}

// ── ABC ──────────────────────────────────────────────────────────────────────

func TestABCAnalysis_UltimoMes(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.ABCAnalysis(context.Background(), company, daysAgo(30), now)
	require.NoError(t, err)

	// book-3: 24 + 12 + 12 = 48; book-1: 10. La salida sin costo no cuenta.
	assertDecimal(t, "58", r.TotalValue)
	require.Len(t, r.Assignments, 2)
	assert.Equal(t, "book-3", r.Assignments[0].BookID)
	assert.Equal(t, engine.CategoryB, r.Assignments[0].Category)
	assert.Equal(t, engine.CategoryC, r.Assignments[1].Category)
}

func TestABCAnalysis_RechazaPeriodoInvertido(t *testing.T) {
	uc := newReports(memory.NewLedgerStore())
	_, err := uc.ABCAnalysis(context.Background(), company, now, daysAgo(1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Antigüedad ───────────────────────────────────────────────────────────────

func TestAgingReport_UmbralesPorDefecto(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.AgingReport(context.Background(), company, 0, 0)
	require.NoError(t, err)

	require.Len(t, r.DeadStock, 1)
	assert.Equal(t, "book-1", r.DeadStock[0].BookID)
	assert.Equal(t, 200, r.DeadStock[0].DaysSinceMovement)
	require.Len(t, r.SlowMoving, 1)
	assert.Equal(t, "book-2", r.SlowMoving[0].BookID)
	assertDecimal(t, "200", r.SlowMovingValue)
	assertDecimal(t, "50", r.DeadStockValue)
}

func TestAgingReport_UmbralesDelLlamador(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.AgingReport(context.Background(), company, 15, 150)
	require.NoError(t, err)

	assert.Len(t, r.DeadStock, 1)
	// book-2 (100 días) y site-a/book-3 (último movimiento hace 3) → solo book-2 es lenta.
	require.Len(t, r.SlowMoving, 1)
	assert.Equal(t, 100, r.SlowMoving[0].DaysSinceMovement)
}

func TestAgingReport_RechazaUmbralesInconsistentes(t *testing.T) {
	uc := newReports(memory.NewLedgerStore())

	_, err := uc.AgingReport(context.Background(), company, 100, 50)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.AgingReport(context.Background(), company, -1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Alertas ──────────────────────────────────────────────────────────────────

func TestAttentionReport_UmbralesPorDefecto(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.AttentionReport(context.Background(), company, appinv.AttentionParams{})
	require.NoError(t, err)

	require.Len(t, r.Items, 1)
	assert.Equal(t, entity.MovementStockOut, r.Items[0].Movement.Type)
	assert.Equal(t, []engine.AttentionRule{engine.RuleStockOutWithoutReference}, r.Items[0].Rules)
}

func TestAttentionReport_ValorAltoDelLlamador(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.AttentionReport(context.Background(), company, appinv.AttentionParams{
		HighValue: decimal.NewNullDecimal(decimal.NewFromInt(20)),
	})
	require.NoError(t, err)

	require.Len(t, r.Items, 2)
	assert.Equal(t, engine.RuleHighValue.Priority(), r.Items[0].Priority)
	assert.Equal(t, "book-3", r.Items[0].Movement.BookID)
	assert.Equal(t, 1, r.ByRule[engine.RuleHighValue])
}

func TestAttentionReport_RechazaNegativos(t *testing.T) {
	uc := newReports(memory.NewLedgerStore())
	neg := int64(-1)

	_, err := uc.AttentionReport(context.Background(), company, appinv.AttentionParams{HighQuantity: &neg, WindowDays: -2})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	ve, _ := domain.AsValidationError(err)
	assert.Len(t, ve.Violations, 2)
}

// ── Traslados ────────────────────────────────────────────────────────────────

func TestTransferReport_ConciliaLlegadaFueraDelPeriodo(t *testing.T) {
	uc := newReports(reportLedger(t))

	// El período termina entre la salida (hace 3) y la llegada (hace 2).
	r, err := uc.TransferReport(context.Background(), company, daysAgo(10), daysAgo(2).Add(-time.Hour), "")
	require.NoError(t, err)

	assert.Equal(t, 1, r.TotalTransfers)
	assert.Equal(t, 1, r.Completed)
	assert.InDelta(t, 1.0, r.AverageDurationDays, 1e-9)
	require.Len(t, r.Routes, 1)
	assert.Equal(t, "site-a", r.Routes[0].FromSiteID)
	assert.Equal(t, "site-b", r.Routes[0].ToSiteID)
}

func TestTransferReport_SalidaFueraDelPeriodoNoCuenta(t *testing.T) {
	uc := newReports(reportLedger(t))

	r, err := uc.TransferReport(context.Background(), company, daysAgo(10), daysAgo(4), engine.MatcherOneToOne)
	require.NoError(t, err)

	assert.Zero(t, r.TotalTransfers)
	assert.Equal(t, engine.MatcherOneToOne, r.Matcher)
}

func TestTransferReport_MatcherDesconocido(t *testing.T) {
	uc := newReports(memory.NewLedgerStore())
	_, err := uc.TransferReport(context.Background(), company, time.Time{}, time.Time{}, "hungarian")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
