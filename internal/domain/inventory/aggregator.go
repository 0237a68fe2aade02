// Package inventory contiene el motor derivado del ledger de movimientos: niveles de stock,
// conciliación de traslados, valorización, clasificación ABC, antigüedad y alertas.
//
// Todas las funciones son puras sobre una instantánea inmutable de movimientos: no
// guardan estado compartido ni hacen I/O, por lo que pueden ejecutarse en paralelo sobre
// la misma instantánea. Un reporte lógico debe recibir una sola instantánea.
package inventory

import (
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Aggregator reproduce movimientos en niveles de stock por (sede, libro).
// Es un fold en streaming: Add acepta los movimientos en cualquier orden y Levels
// devuelve el mismo resultado para cualquier permutación de la entrada.
type Aggregator struct {
	asOf   time.Time
	groups map[entity.StockKey]*levelAccumulator
}

type levelAccumulator struct {
	level entity.StockLevel
	cost  costAccumulator
}

// NewAggregator crea un agregador con fecha de corte asOf (inclusive).
// asOf cero = sin corte.
func NewAggregator(asOf time.Time) *Aggregator {
	return &Aggregator{
		asOf:   asOf,
		groups: make(map[entity.StockKey]*levelAccumulator),
	}
}

// Add incorpora un movimiento. Los posteriores a la fecha de corte se ignoran.
func (a *Aggregator) Add(m entity.MovementRecord) {
	if !a.asOf.IsZero() && m.Timestamp.After(a.asOf) {
		return
	}
	key := m.Key()
	acc, ok := a.groups[key]
	if !ok {
		acc = &levelAccumulator{level: entity.StockLevel{SiteID: key.SiteID, BookID: key.BookID}}
		a.groups[key] = acc
	}

	switch {
	case m.IsInbound():
		acc.level.StockIn += m.Magnitude()
		acc.cost.add(m.UnitCost)
	case m.IsOutbound():
		acc.level.StockOut += m.Magnitude()
	}

	if isLater(m, acc.level) {
		acc.level.LastMovementDate = m.Timestamp
		acc.level.LastMovementType = m.Type
		acc.level.LastMovementID = m.ID
	}
}

// isLater decide el "último movimiento": mayor timestamp y, a igualdad, mayor ID.
// El desempate por ID es una política arbitraria pero determinista; con TypeID equivale
// al movimiento anexado más tarde.
func isLater(m entity.MovementRecord, l entity.StockLevel) bool {
	if l.LastMovementID == "" {
		return true
	}
	if !m.Timestamp.Equal(l.LastMovementDate) {
		return m.Timestamp.After(l.LastMovementDate)
	}
	return m.ID > l.LastMovementID
}

// Levels devuelve los niveles acumulados. Cada llamada construye un mapa nuevo.
func (a *Aggregator) Levels() map[entity.StockKey]entity.StockLevel {
	out := make(map[entity.StockKey]entity.StockLevel, len(a.groups))
	for key, acc := range a.groups {
		l := acc.level
		l.CurrentStock = l.StockIn - l.StockOut
		l.AverageCost = acc.cost.mean()
		out[key] = l
	}
	return out
}

// StockLevels reproduce records hasta asOf (inclusive) y devuelve (sede, libro) → StockLevel.
func StockLevels(records []entity.MovementRecord, asOf time.Time) map[entity.StockKey]entity.StockLevel {
	agg := NewAggregator(asOf)
	for _, m := range records {
		agg.Add(m)
	}
	return agg.Levels()
}

// SortedLevels devuelve los niveles ordenados por sede y libro.
func SortedLevels(levels map[entity.StockKey]entity.StockLevel) []entity.StockLevel {
	out := make([]entity.StockLevel, 0, len(levels))
	for _, l := range levels {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// StockLevelSummary es el reporte de stock actual con totales.
type StockLevelSummary struct {
	AsOf          time.Time
	Levels        []entity.StockLevel // ordenados por sede, libro
	TotalStockIn  int64
	TotalStockOut int64
	TotalCurrent  int64
	NegativeLines int // existencias con stock < 0 (ajustes sin entradas previas, etc.)
}

// SummarizeLevels arma el StockLevelSummary de un mapa de niveles.
func SummarizeLevels(levels map[entity.StockKey]entity.StockLevel, asOf time.Time) StockLevelSummary {
	s := StockLevelSummary{AsOf: asOf, Levels: SortedLevels(levels)}
	for _, l := range s.Levels {
		s.TotalStockIn += l.StockIn
		s.TotalStockOut += l.StockOut
		s.TotalCurrent += l.CurrentStock
		if l.CurrentStock < 0 {
			s.NegativeLines++
		}
	}
	return s
}
