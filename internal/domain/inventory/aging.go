package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Umbrales de antigüedad por defecto (días).
const (
	DefaultSlowMovingDays = 90
	DefaultDeadStockDays  = 180
)

// AgingThresholds umbrales en días desde el último movimiento.
type AgingThresholds struct {
	SlowMovingDays int
	DeadStockDays  int
}

// DefaultAgingThresholds 90 / 180 días.
func DefaultAgingThresholds() AgingThresholds {
	return AgingThresholds{SlowMovingDays: DefaultSlowMovingDays, DeadStockDays: DefaultDeadStockDays}
}

// AgingItem existencia con stock positivo y sin movimiento reciente.
type AgingItem struct {
	SiteID            string
	BookID            string
	CurrentStock      int64
	LastMovementDate  time.Time
	LastMovementType  entity.MovementType
	DaysSinceMovement int
	AverageCost       decimal.NullDecimal
	Value             decimal.NullDecimal // stock × costo promedio, si hay costo
}

// AgingReport existencias de baja rotación y muertas.
type AgingReport struct {
	AsOf            time.Time
	Thresholds      AgingThresholds
	SlowMoving      []AgingItem // más antiguas primero
	DeadStock       []AgingItem
	SlowMovingValue decimal.Decimal
	DeadStockValue  decimal.Decimal
}

// AnalyzeAging clasifica las existencias con stock > 0: muerta si los días desde el último
// movimiento superan DeadStockDays; de baja rotación si superan SlowMovingDays sin ser
// muerta. Las activas no se reportan y las de stock ≤ 0 nunca aparecen.
// Los días se cuentan completos (fracciones hacia abajo).
func AnalyzeAging(levels map[entity.StockKey]entity.StockLevel, today time.Time, th AgingThresholds) AgingReport {
	report := AgingReport{
		AsOf:            today,
		Thresholds:      th,
		SlowMovingValue: decimal.Zero,
		DeadStockValue:  decimal.Zero,
	}

	for _, l := range SortedLevels(levels) {
		if l.CurrentStock <= 0 {
			continue
		}
		elapsed := int(today.Sub(l.LastMovementDate) / (24 * time.Hour))
		item := AgingItem{
			SiteID:            l.SiteID,
			BookID:            l.BookID,
			CurrentStock:      l.CurrentStock,
			LastMovementDate:  l.LastMovementDate,
			LastMovementType:  l.LastMovementType,
			DaysSinceMovement: elapsed,
			AverageCost:       l.AverageCost,
		}
		if l.AverageCost.Valid {
			item.Value = decimal.NewNullDecimal(LineValue(l.CurrentStock, l.AverageCost.Decimal))
		}

		switch {
		case elapsed > th.DeadStockDays:
			report.DeadStock = append(report.DeadStock, item)
			if item.Value.Valid {
				report.DeadStockValue = report.DeadStockValue.Add(item.Value.Decimal)
			}
		case elapsed > th.SlowMovingDays:
			report.SlowMoving = append(report.SlowMoving, item)
			if item.Value.Valid {
				report.SlowMovingValue = report.SlowMovingValue.Add(item.Value.Decimal)
			}
		}
	}

	byAge := func(items []AgingItem) {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DaysSinceMovement > items[j].DaysSinceMovement
		})
	}
	byAge(report.SlowMoving)
	byAge(report.DeadStock)
	return report
}
