package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransferPair asocia una salida de traslado con su llegada, si la hay.
type TransferPair struct {
	Out          entity.MovementRecord
	In           *entity.MovementRecord // nil = pendiente
	DurationDays float64                // (d2 − d1) en días; solo con In != nil
}

// Completed indica si el traslado tiene llegada conciliada.
func (p TransferPair) Completed() bool { return p.In != nil }

// RouteSummary agrega traslados por ruta (sede origen → sede destino).
type RouteSummary struct {
	FromSiteID          string
	ToSiteID            string
	Transfers           int
	Completed           int
	Pending             int
	QuantitySent        int64
	AverageDurationDays float64 // 0 si no hay completados
}

// TransferReport resultado de la conciliación.
// Invariante: Completed + Pending == TotalTransfers == len(Pairs).
type TransferReport struct {
	Matcher             string
	Window              time.Duration
	Pairs               []TransferPair // en el orden de entrada de las salidas
	TotalTransfers      int
	Completed           int
	Pending             int
	AverageDurationDays float64
	Routes              []RouteSummary // ordenadas por origen, destino
}

// Reconciler empareja salidas y llegadas de traslados con una estrategia intercambiable.
type Reconciler struct {
	Matcher TransferMatcher
	Window  time.Duration
}

// NewReconciler construye el conciliador; nil/0 toman FirstMatch y 7 días.
func NewReconciler(matcher TransferMatcher, window time.Duration) Reconciler {
	if matcher == nil {
		matcher = FirstMatch{}
	}
	if window <= 0 {
		window = DefaultTransferWindow
	}
	return Reconciler{Matcher: matcher, Window: window}
}

// Reconcile concilia los traslados de records. Un traslado sin llegada queda pendiente;
// no es un error.
func (r Reconciler) Reconcile(records []entity.MovementRecord) TransferReport {
	r = NewReconciler(r.Matcher, r.Window)

	var outs, ins []entity.MovementRecord
	for _, m := range records {
		switch m.Type {
		case entity.MovementTransferOut:
			outs = append(outs, m)
		case entity.MovementTransferIn:
			ins = append(ins, m)
		}
	}

	matches := r.Matcher.Match(outs, ins, r.Window)

	report := TransferReport{
		Matcher:        r.Matcher.Name(),
		Window:         r.Window,
		Pairs:          make([]TransferPair, 0, len(outs)),
		TotalTransfers: len(outs),
	}

	type routeKey struct{ from, to string }
	routes := make(map[routeKey]*RouteSummary)
	routeDays := make(map[routeKey]float64)
	var totalDays float64

	for i, out := range outs {
		pair := TransferPair{Out: out}
		key := routeKey{from: out.SiteID, to: out.ToSiteID}
		rs, ok := routes[key]
		if !ok {
			rs = &RouteSummary{FromSiteID: key.from, ToSiteID: key.to}
			routes[key] = rs
		}
		rs.Transfers++
		rs.QuantitySent += out.Magnitude()

		if j := matches[i]; j >= 0 {
			in := ins[j]
			pair.In = &in
			pair.DurationDays = days(in.Timestamp.Sub(out.Timestamp))
			report.Completed++
			totalDays += pair.DurationDays
			rs.Completed++
			routeDays[key] += pair.DurationDays
		} else {
			report.Pending++
			rs.Pending++
		}
		report.Pairs = append(report.Pairs, pair)
	}

	if report.Completed > 0 {
		report.AverageDurationDays = totalDays / float64(report.Completed)
	}

	report.Routes = make([]RouteSummary, 0, len(routes))
	for key, rs := range routes {
		if rs.Completed > 0 {
			rs.AverageDurationDays = routeDays[key] / float64(rs.Completed)
		}
		report.Routes = append(report.Routes, *rs)
	}
	sort.Slice(report.Routes, func(i, j int) bool {
		a, b := report.Routes[i], report.Routes[j]
		if a.FromSiteID != b.FromSiteID {
			return a.FromSiteID < b.FromSiteID
		}
		return a.ToSiteID < b.ToSiteID
	})

	return report
}

func days(d time.Duration) float64 {
	return d.Hours() / 24
}
