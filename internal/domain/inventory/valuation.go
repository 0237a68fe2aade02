package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ValuationLine valor de una existencia (sede, libro) al costo promedio ponderado.
type ValuationLine struct {
	SiteID       string
	BookID       string
	CurrentStock int64
	AverageCost  decimal.Decimal
	TotalValue   decimal.Decimal
}

// SiteValuation subtotal por sede.
type SiteValuation struct {
	SiteID     string
	Lines      int
	TotalUnits int64
	TotalValue decimal.Decimal
}

// ValuationReport valorización del inventario. Solo método de costo promedio.
type ValuationReport struct {
	SiteID      string          // filtro aplicado; vacío = todas las sedes
	Lines       []ValuationLine // mayor valor primero; empate por sede, libro
	Sites       []SiteValuation // ordenadas por sede
	TotalUnits  int64
	TotalValue  decimal.Decimal
	AverageCost decimal.NullDecimal // TotalValue / TotalUnits
	// ExcludedLines existencias fuera de la valorización: stock ≤ 0 o sin costo promedio.
	// No se cuentan como líneas de valor cero para no sesgar los promedios.
	ExcludedLines int
}

// Valuate calcula stock × costo promedio por existencia y los totales.
// siteID vacío valoriza todas las sedes.
func Valuate(levels map[entity.StockKey]entity.StockLevel, siteID string) ValuationReport {
	report := ValuationReport{SiteID: siteID, TotalValue: decimal.Zero}
	sites := make(map[string]*SiteValuation)

	for _, l := range SortedLevels(levels) {
		if siteID != "" && l.SiteID != siteID {
			continue
		}
		if l.CurrentStock <= 0 || !l.AverageCost.Valid {
			report.ExcludedLines++
			continue
		}
		line := ValuationLine{
			SiteID:       l.SiteID,
			BookID:       l.BookID,
			CurrentStock: l.CurrentStock,
			AverageCost:  l.AverageCost.Decimal,
			TotalValue:   LineValue(l.CurrentStock, l.AverageCost.Decimal),
		}
		report.Lines = append(report.Lines, line)
		report.TotalUnits += line.CurrentStock
		report.TotalValue = report.TotalValue.Add(line.TotalValue)

		sv, ok := sites[l.SiteID]
		if !ok {
			sv = &SiteValuation{SiteID: l.SiteID, TotalValue: decimal.Zero}
			sites[l.SiteID] = sv
		}
		sv.Lines++
		sv.TotalUnits += line.CurrentStock
		sv.TotalValue = sv.TotalValue.Add(line.TotalValue)
	}

	// SortedLevels ya dejó el orden por sede/libro; el estable lo conserva en empates.
	sort.SliceStable(report.Lines, func(i, j int) bool {
		return report.Lines[i].TotalValue.GreaterThan(report.Lines[j].TotalValue)
	})

	report.Sites = make([]SiteValuation, 0, len(sites))
	for _, sv := range sites {
		report.Sites = append(report.Sites, *sv)
	}
	sort.Slice(report.Sites, func(i, j int) bool { return report.Sites[i].SiteID < report.Sites[j].SiteID })

	if report.TotalUnits > 0 {
		report.AverageCost = decimal.NewNullDecimal(report.TotalValue.Div(decimal.NewFromInt(report.TotalUnits)))
	}
	return report
}
