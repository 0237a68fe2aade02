package inventory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

func transferOut(id string, qty int64, at time.Time) mov {
	return mov{id: id, typ: entity.MovementTransferOut, site: "site-1", to: "site-2", qty: qty, cost: "5", at: at}
}

func transferIn(id string, qty int64, at time.Time) mov {
	return mov{id: id, typ: entity.MovementTransferIn, site: "site-2", from: "site-1", qty: qty, cost: "5", at: at}
}

func TestReconcile_Escenario2_ParConciliado(t *testing.T) {
	recs := records(transferOut("out-1", 20, day(0)), transferIn("in-1", 20, day(2)))

	r := inventory.NewReconciler(nil, 0).Reconcile(recs)

	assert.Equal(t, inventory.MatcherFirst, r.Matcher)
	assert.Equal(t, inventory.DefaultTransferWindow, r.Window)
	assert.Equal(t, 1, r.TotalTransfers)
	assert.Equal(t, 1, r.Completed)
	assert.Equal(t, 0, r.Pending)
	require.Len(t, r.Pairs, 1)
	require.True(t, r.Pairs[0].Completed())
	assert.Equal(t, "in-1", r.Pairs[0].In.ID)
	assert.InDelta(t, 2.0, r.Pairs[0].DurationDays, 1e-9)
	assert.InDelta(t, 2.0, r.AverageDurationDays, 1e-9)
}

func TestReconcile_SinLlegada_QuedaPendiente(t *testing.T) {
	recs := records(
		transferOut("out-1", 5, day(0)),
		transferIn("in-tarde", 5, day(8)), // fuera de la ventana de 7 días
	)

	r := inventory.NewReconciler(nil, 0).Reconcile(recs)

	assert.Equal(t, 0, r.Completed)
	assert.Equal(t, 1, r.Pending)
	assert.False(t, r.Pairs[0].Completed())
	assert.Zero(t, r.AverageDurationDays)
}

func TestReconcile_LimiteDeVentanaInclusivo(t *testing.T) {
	recs := records(transferOut("out-1", 5, day(0)), transferIn("in-1", 5, day(7)))

	r := inventory.NewReconciler(nil, 0).Reconcile(recs)

	assert.Equal(t, 1, r.Completed)
}

func TestReconcile_RutaYLibroDebenCoincidir(t *testing.T) {
	recs := records(
		transferOut("out-1", 5, day(0)),
		mov{id: "in-otro-libro", typ: entity.MovementTransferIn, site: "site-2", from: "site-1", book: "book-z", qty: 5, at: day(1)},
		mov{id: "in-otra-ruta", typ: entity.MovementTransferIn, site: "site-3", from: "site-1", qty: 5, at: day(1)},
	)

	r := inventory.NewReconciler(nil, 0).Reconcile(recs)

	assert.Equal(t, 0, r.Completed)
	assert.Equal(t, 1, r.Pending)
}

// Dos traslados del mismo libro y ruta dentro de la ventana: FirstMatch empareja ambas
// salidas con el primer ingreso; OneToOne reparte un ingreso por salida.
func ambiguousTransfers() []entity.MovementRecord {
	return records(
		transferOut("out-1", 10, day(0)),
		transferOut("out-2", 10, day(3)),
		transferIn("in-1", 10, day(1)),
		transferIn("in-2", 10, day(4)),
	)
}

func TestFirstMatch_AmbiguedadReutilizaIngreso(t *testing.T) {
	r := inventory.NewReconciler(inventory.FirstMatch{}, 0).Reconcile(ambiguousTransfers())

	require.Len(t, r.Pairs, 2)
	assert.Equal(t, "in-1", r.Pairs[0].In.ID)
	assert.Equal(t, "in-1", r.Pairs[1].In.ID)
	assert.InDelta(t, -2.0, r.Pairs[1].DurationDays, 1e-9)
}

func TestNearestDate_EligeElMasCercano(t *testing.T) {
	r := inventory.NewReconciler(inventory.NearestDate{}, 0).Reconcile(ambiguousTransfers())

	assert.Equal(t, "in-1", r.Pairs[0].In.ID)
	assert.Equal(t, "in-2", r.Pairs[1].In.ID)
	assert.InDelta(t, 1.0, r.AverageDurationDays, 1e-9)
}

func TestOneToOne_CadaIngresoUnaVez(t *testing.T) {
	// out-1 solo alcanza a in-1; out-2 prefiere in-1 (más cercano) pero debe ceder.
	recs := records(
		transferOut("out-2", 10, day(5)),
		transferOut("out-1", 10, day(0)),
		transferIn("in-1", 10, day(6)),
		transferIn("in-2", 10, day(11)),
	)

	r := inventory.NewReconciler(inventory.OneToOne{}, 0).Reconcile(recs)

	require.Equal(t, 2, r.Completed)
	used := map[string]string{}
	for _, p := range r.Pairs {
		require.NotNil(t, p.In)
		used[p.In.ID] = p.Out.ID
	}
	assert.Equal(t, "out-1", used["in-1"])
	assert.Equal(t, "out-2", used["in-2"])
}

func TestOneToOne_MasSalidasQueIngresos(t *testing.T) {
	recs := records(
		transferOut("out-1", 10, day(0)),
		transferOut("out-2", 10, day(1)),
		transferIn("in-1", 10, day(2)),
	)

	r := inventory.NewReconciler(inventory.OneToOne{}, 0).Reconcile(recs)

	assert.Equal(t, 1, r.Completed)
	assert.Equal(t, 1, r.Pending)
}

func TestReconcile_ConservacionConTodasLasEstrategias(t *testing.T) {
	recs := append(ambiguousTransfers(), records(
		transferOut("out-3", 1, day(20)),
		mov{id: "out-4", typ: entity.MovementTransferOut, site: "site-2", to: "site-1", qty: 3, at: day(2)},
	)...)

	for _, name := range []string{inventory.MatcherFirst, inventory.MatcherNearest, inventory.MatcherOneToOne} {
		t.Run(name, func(t *testing.T) {
			m, err := inventory.MatcherByName(name)
			require.NoError(t, err)

			r := inventory.NewReconciler(m, 0).Reconcile(recs)

			assert.Equal(t, name, r.Matcher)
			assert.Equal(t, 4, r.TotalTransfers)
			assert.Equal(t, r.TotalTransfers, r.Completed+r.Pending)
			assert.Len(t, r.Pairs, r.TotalTransfers)
		})
	}
}

func TestReconcile_AgregadoPorRuta(t *testing.T) {
	recs := append(ambiguousTransfers(), records(
		mov{id: "out-r", typ: entity.MovementTransferOut, site: "site-2", to: "site-1", qty: 3, at: day(2)},
	)...)

	r := inventory.NewReconciler(inventory.OneToOne{}, 0).Reconcile(recs)

	require.Len(t, r.Routes, 2)
	assert.Equal(t, inventory.RouteSummary{
		FromSiteID: "site-1", ToSiteID: "site-2",
		Transfers: 2, Completed: 2, QuantitySent: 20, AverageDurationDays: 1,
	}, r.Routes[0])
	assert.Equal(t, "site-2", r.Routes[1].FromSiteID)
	assert.Equal(t, 1, r.Routes[1].Pending)
	assert.Equal(t, int64(3), r.Routes[1].QuantitySent)
}

func TestReconcile_VentanaPersonalizada(t *testing.T) {
	recs := records(transferOut("out-1", 5, day(0)), transferIn("in-1", 5, day(2)))

	r := inventory.NewReconciler(nil, 24*time.Hour).Reconcile(recs)

	assert.Equal(t, 0, r.Completed)
}

func TestMatcherByName_Desconocido(t *testing.T) {
	_, err := inventory.MatcherByName("hungarian")
	assert.Error(t, err)

	m, err := inventory.MatcherByName("")
	require.NoError(t, err)
	assert.Equal(t, inventory.MatcherFirst, m.Name())
}
