package inventory

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ABCCategory categoría de valor de un libro.
type ABCCategory uint8

const (
	CategoryA ABCCategory = iota + 1
	CategoryB
	CategoryC
)

// ABCCategories las tres categorías en orden.
var ABCCategories = []ABCCategory{CategoryA, CategoryB, CategoryC}

func (c ABCCategory) String() string {
	switch c {
	case CategoryA:
		return "A"
	case CategoryB:
		return "B"
	case CategoryC:
		return "C"
	}
	return fmt.Sprintf("ABCCategory(%d)", uint8(c))
}

// MarshalText serializa la categoría como "A", "B" o "C".
func (c ABCCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ABCThresholds límites del porcentaje acumulado: A ≤ LimitA, B ≤ LimitB, resto C.
type ABCThresholds struct {
	LimitA decimal.Decimal
	LimitB decimal.Decimal
}

// DefaultABCThresholds 80 / 95.
func DefaultABCThresholds() ABCThresholds {
	return ABCThresholds{LimitA: decimal.NewFromInt(80), LimitB: decimal.NewFromInt(95)}
}

func (t ABCThresholds) categorize(cumulative decimal.Decimal) ABCCategory {
	switch {
	case cumulative.LessThanOrEqual(t.LimitA):
		return CategoryA
	case cumulative.LessThanOrEqual(t.LimitB):
		return CategoryB
	}
	return CategoryC
}

// ABCAssignment clasificación de un libro en el periodo.
type ABCAssignment struct {
	BookID               string
	Rank                 int // 1 = mayor valor
	TotalValue           decimal.Decimal
	ValuePercentage      decimal.Decimal
	CumulativePercentage decimal.Decimal
	Category             ABCCategory
	Movements            int
	Units                int64
}

// ABCCategoryTotal totales por categoría.
type ABCCategoryTotal struct {
	Category        ABCCategory
	Books           int
	TotalValue      decimal.Decimal
	ValuePercentage decimal.Decimal
}

// ABCReport resultado del análisis ABC.
type ABCReport struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	TotalValue  decimal.Decimal
	Assignments []ABCAssignment    // por rango
	Categories  []ABCCategoryTotal // siempre A, B, C
}

var hundred = decimal.NewFromInt(100)

// ClassifyABC clasifica libros por su aporte al valor movido en [start, end] (inclusive;
// extremos cero = sin límite). Solo cuentan movimientos con TotalCost; el valor de un
// libro es Σ|TotalCost| de todas sus sedes.
//
// Empates de valor: se conserva el orden de primera aparición del libro en records.
// Si el valor total es cero no hay nada que clasificar y el reporte sale vacío.
func ClassifyABC(records []entity.MovementRecord, start, end time.Time, th ABCThresholds) ABCReport {
	report := ABCReport{PeriodStart: start, PeriodEnd: end, TotalValue: decimal.Zero}

	index := make(map[string]int)
	var books []ABCAssignment
	for _, m := range records {
		if !m.TotalCost.Valid || !InPeriod(m.Timestamp, start, end) {
			continue
		}
		i, ok := index[m.BookID]
		if !ok {
			i = len(books)
			index[m.BookID] = i
			books = append(books, ABCAssignment{BookID: m.BookID, TotalValue: decimal.Zero})
		}
		books[i].TotalValue = books[i].TotalValue.Add(m.TotalCost.Decimal.Abs())
		books[i].Movements++
		books[i].Units += m.Magnitude()
		report.TotalValue = report.TotalValue.Add(m.TotalCost.Decimal.Abs())
	}

	report.Categories = make([]ABCCategoryTotal, len(ABCCategories))
	for i, c := range ABCCategories {
		report.Categories[i] = ABCCategoryTotal{Category: c, TotalValue: decimal.Zero, ValuePercentage: decimal.Zero}
	}
	if !report.TotalValue.IsPositive() {
		return report
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].TotalValue.GreaterThan(books[j].TotalValue)
	})

	cumulative := decimal.Zero
	for i := range books {
		b := &books[i]
		cumulative = cumulative.Add(b.TotalValue)
		b.Rank = i + 1
		b.ValuePercentage = b.TotalValue.Mul(hundred).Div(report.TotalValue)
		// Acumulado sobre los valores (no sobre porcentajes redondeados): el último es 100 exacto.
		b.CumulativePercentage = cumulative.Mul(hundred).Div(report.TotalValue)
		b.Category = th.categorize(b.CumulativePercentage)

		ct := &report.Categories[b.Category-CategoryA]
		ct.Books++
		ct.TotalValue = ct.TotalValue.Add(b.TotalValue)
	}
	for i := range report.Categories {
		ct := &report.Categories[i]
		ct.ValuePercentage = ct.TotalValue.Mul(hundred).Div(report.TotalValue)
	}

	report.Assignments = books
	return report
}

// InPeriod indica si ts cae en [start, end], ambos inclusive. Un extremo cero no acota.
func InPeriod(ts, start, end time.Time) bool {
	if !start.IsZero() && ts.Before(start) {
		return false
	}
	if !end.IsZero() && ts.After(end) {
		return false
	}
	return true
}
