// Package xlsx genera el resumen de inventario como libro de Excel (una hoja por reporte).
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ContentType del libro generado.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Nombres de las hojas, en orden.
const (
	SheetSummary   = "Resumen"
	SheetStock     = "Existencias"
	SheetValuation = "Valorización"
	SheetABC       = "ABC"
	SheetAging     = "Antigüedad"
	SheetAttention = "Atención"
	SheetTransfers = "Traslados"
)

// Formatos numéricos incorporados de Excel.
const (
	fmtInteger = 3 // #,##0
	fmtMoney   = 4 // #,##0.00
)

// OverviewRenderer implementa inventory.OverviewRenderer con excelize.
type OverviewRenderer struct{}

var _ appinv.OverviewRenderer = (*OverviewRenderer)(nil)

func NewOverviewRenderer() *OverviewRenderer { return &OverviewRenderer{} }

func (r *OverviewRenderer) Format() string      { return "xlsx" }
func (r *OverviewRenderer) ContentType() string { return ContentType }

// column describe una columna: cabecera y formato numérico (0 = texto).
type column struct {
	header string
	numFmt int
	width  float64
}

type book struct {
	f      *excelize.File
	header int
	styles map[int]int
}

// Render arma el libro y devuelve sus bytes.
func (r *OverviewRenderer) Render(_ context.Context, o *appinv.OverviewReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	b := &book{f: f, styles: map[int]int{}}
	var err error
	if b.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"00467F"}},
	}); err != nil {
		return nil, fmt.Errorf("xlsx: estilo de cabecera: %w", err)
	}
	for _, nf := range []int{fmtInteger, fmtMoney} {
		if b.styles[nf], err = f.NewStyle(&excelize.Style{NumFmt: nf}); err != nil {
			return nil, fmt.Errorf("xlsx: estilo numérico: %w", err)
		}
	}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	steps := []func(*appinv.OverviewReport) error{
		b.summary, b.stock, b.valuation, b.abc, b.aging, b.attention, b.transfers,
	}
	for _, step := range steps {
		if err := step(o); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: escribir libro: %w", err)
	}
	return buf.Bytes(), nil
}

// ── Hojas ─────────────────────────────────────────────────────────────────────

func (b *book) summary(o *appinv.OverviewReport) error {
	var avg any = ""
	if o.Valuation.AverageCost.Valid {
		avg = money(o.Valuation.AverageCost.Decimal)
	}
	rows := [][]any{
		{"Empresa", o.CompanyID},
		{"Generado", o.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Movimientos leídos", o.Records},
		{"Unidades en stock", o.Stock.TotalCurrent},
		{"Existencias negativas", o.Stock.NegativeLines},
		{"Valor del inventario", money(o.Valuation.TotalValue)},
		{"Costo promedio", avg},
		{"Líneas sin costo", o.Valuation.ExcludedLines},
		{"Valor stock lento", money(o.Aging.SlowMovingValue)},
		{"Valor stock muerto", money(o.Aging.DeadStockValue)},
		{"Movimientos a revisar", len(o.Attention.Items)},
		{"Traslados pendientes", o.Transfers.Pending},
	}
	return b.table(SheetSummary, []column{{"Indicador", 0, 26}, {"Valor", 0, 22}}, rows)
}

func (b *book) stock(o *appinv.OverviewReport) error {
	rows := make([][]any, 0, len(o.Stock.Levels))
	for _, l := range o.Stock.Levels {
		var avg any = ""
		if l.AverageCost.Valid {
			avg = money(l.AverageCost.Decimal)
		}
		rows = append(rows, []any{
			o.SiteName(l.SiteID), o.BookTitle(l.BookID),
			l.StockIn, l.StockOut, l.CurrentStock,
			l.LastMovementDate.Format("2006-01-02"), l.LastMovementType.String(), avg,
		})
	}
	return b.table(SheetStock, []column{
		{"Sede", 0, 20}, {"Libro", 0, 32},
		{"Entradas", fmtInteger, 10}, {"Salidas", fmtInteger, 10}, {"Stock", fmtInteger, 10},
		{"Último movimiento", 0, 16}, {"Tipo", 0, 14}, {"Costo promedio", fmtMoney, 14},
	}, rows)
}

func (b *book) valuation(o *appinv.OverviewReport) error {
	rows := make([][]any, 0, len(o.Valuation.Lines))
	for _, l := range o.Valuation.Lines {
		rows = append(rows, []any{
			o.SiteName(l.SiteID), o.BookTitle(l.BookID),
			l.CurrentStock, money(l.AverageCost), money(l.TotalValue),
		})
	}
	return b.table(SheetValuation, []column{
		{"Sede", 0, 20}, {"Libro", 0, 32},
		{"Stock", fmtInteger, 10}, {"Costo promedio", fmtMoney, 14}, {"Valor", fmtMoney, 16},
	}, rows)
}

func (b *book) abc(o *appinv.OverviewReport) error {
	rows := make([][]any, 0, len(o.ABC.Assignments))
	for _, a := range o.ABC.Assignments {
		rows = append(rows, []any{
			a.Rank, o.BookTitle(a.BookID), a.Category.String(),
			money(a.TotalValue), money(a.ValuePercentage), money(a.CumulativePercentage),
			a.Movements, a.Units,
		})
	}
	return b.table(SheetABC, []column{
		{"#", fmtInteger, 6}, {"Libro", 0, 32}, {"Categoría", 0, 10},
		{"Valor de salidas", fmtMoney, 16}, {"% del total", fmtMoney, 12}, {"% acumulado", fmtMoney, 12},
		{"Movimientos", fmtInteger, 12}, {"Unidades", fmtInteger, 10},
	}, rows)
}

func (b *book) aging(o *appinv.OverviewReport) error {
	var rows [][]any
	add := func(status string, items []engine.AgingItem) {
		for _, it := range items {
			var value any = ""
			if it.Value.Valid {
				value = money(it.Value.Decimal)
			}
			rows = append(rows, []any{
				status, o.SiteName(it.SiteID), o.BookTitle(it.BookID), it.CurrentStock,
				it.LastMovementDate.Format("2006-01-02"), it.DaysSinceMovement, value,
			})
		}
	}
	add("muerto", o.Aging.DeadStock)
	add("lento", o.Aging.SlowMoving)
	return b.table(SheetAging, []column{
		{"Estado", 0, 10}, {"Sede", 0, 20}, {"Libro", 0, 32}, {"Stock", fmtInteger, 10},
		{"Último movimiento", 0, 16}, {"Días", fmtInteger, 8}, {"Valor", fmtMoney, 14},
	}, rows)
}

func (b *book) attention(o *appinv.OverviewReport) error {
	rows := make([][]any, 0, len(o.Attention.Items))
	for _, it := range o.Attention.Items {
		m := it.Movement
		var value any = ""
		if m.TotalCost.Valid {
			value = money(m.TotalCost.Decimal)
		}
		rows = append(rows, []any{
			it.Priority, m.Timestamp.Format("2006-01-02 15:04"), m.Type.String(),
			o.SiteName(m.SiteID), o.BookTitle(m.BookID), m.Quantity, value,
			strings.Join(it.Reasons(), "; "), m.ID,
		})
	}
	return b.table(SheetAttention, []column{
		{"Prioridad", fmtInteger, 10}, {"Fecha", 0, 16}, {"Tipo", 0, 14},
		{"Sede", 0, 20}, {"Libro", 0, 32}, {"Cantidad", fmtInteger, 10}, {"Valor", fmtMoney, 14},
		{"Motivos", 0, 40}, {"Movimiento", 0, 30},
	}, rows)
}

func (b *book) transfers(o *appinv.OverviewReport) error {
	rows := make([][]any, 0, len(o.Transfers.Pairs))
	for _, p := range o.Transfers.Pairs {
		status, arrived, days := "pendiente", any(""), any("")
		if p.Completed() {
			status = "completado"
			arrived = p.In.Timestamp.Format("2006-01-02 15:04")
			days = p.DurationDays
		}
		rows = append(rows, []any{
			status, o.SiteName(p.Out.SiteID), o.SiteName(p.Out.ToSiteID), o.BookTitle(p.Out.BookID),
			p.Out.Quantity, p.Out.Timestamp.Format("2006-01-02 15:04"), arrived, days, p.Out.ID,
		})
	}
	return b.table(SheetTransfers, []column{
		{"Estado", 0, 12}, {"Origen", 0, 20}, {"Destino", 0, 20}, {"Libro", 0, 32},
		{"Cantidad", fmtInteger, 10}, {"Despacho", 0, 16}, {"Llegada", 0, 16},
		{"Días", fmtMoney, 8}, {"Salida", 0, 30},
	}, rows)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// table crea (si hace falta) la hoja y escribe cabecera, filas, anchos y formatos.
func (b *book) table(sheet string, cols []column, rows [][]any) error {
	if idx, _ := b.f.GetSheetIndex(sheet); idx < 0 {
		if _, err := b.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: crear hoja %s: %w", sheet, err)
		}
	}
	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c.header
	}
	if err := b.f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("xlsx: cabecera %s: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := b.f.SetCellStyle(sheet, "A1", last, b.header); err != nil {
		return err
	}

	for i, values := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := b.f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx: fila %d de %s: %w", i+2, sheet, err)
		}
	}

	for i, c := range cols {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := b.f.SetColWidth(sheet, name, name, c.width); err != nil {
			return err
		}
		if c.numFmt == 0 || len(rows) == 0 {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(i+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(i+1, len(rows)+1)
		if err := b.f.SetCellStyle(sheet, top, bottom, b.styles[c.numFmt]); err != nil {
			return err
		}
	}
	return nil
}

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }
