// Package pdf genera el resumen de inventario en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + fecha de generación │ movimientos leídos  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: unidades / valor / costo promedio / negativas      │
//	│  VALORIZACIÓN POR SEDE                                       │
//	│  TOP LÍNEAS POR VALOR                                        │
//	│  ABC: categorías + libros clase A                            │
//	│  ANTIGÜEDAD: stock lento y muerto                            │
//	│  ATENCIÓN: movimientos a revisar                             │
//	│  TRASLADOS: rutas con completados / pendientes               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	engine "github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// ContentType del documento generado.
const ContentType = "application/pdf"

// Máximo de filas por tabla; el resto va en el XLSX.
const maxRows = 25

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// OverviewRenderer implementa inventory.OverviewRenderer usando Maroto v2.
type OverviewRenderer struct {
	p *message.Printer
}

var _ appinv.OverviewRenderer = (*OverviewRenderer)(nil)

// NewOverviewRenderer construye el renderer. Los números se formatean en español (1.234,50).
func NewOverviewRenderer() *OverviewRenderer {
	return &OverviewRenderer{p: message.NewPrinter(language.Spanish)}
}

func (r *OverviewRenderer) Format() string      { return "pdf" }
func (r *OverviewRenderer) ContentType() string { return ContentType }

// Render genera el PDF y devuelve sus bytes.
func (r *OverviewRenderer) Render(_ context.Context, o *appinv.OverviewReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Resumen de inventario", true).
		WithAuthor(o.CompanyID, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headerRow(o))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(r.totalsRow(o))

	m.AddRows(r.section("VALORIZACIÓN POR SEDE")...)
	m.AddRows(r.siteRows(o)...)

	m.AddRows(r.section("LÍNEAS DE MAYOR VALOR")...)
	m.AddRows(r.valuationRows(o)...)

	m.AddRows(r.section(fmt.Sprintf("CLASIFICACIÓN ABC (%s a %s)",
		o.ABC.PeriodStart.Format("02/01/2006"), o.ABC.PeriodEnd.Format("02/01/2006")))...)
	m.AddRows(r.abcRows(o)...)

	m.AddRows(r.section(fmt.Sprintf("ANTIGÜEDAD (lento desde %d días, muerto desde %d días)",
		o.Aging.Thresholds.SlowMovingDays, o.Aging.Thresholds.DeadStockDays))...)
	m.AddRows(r.agingRows(o)...)

	m.AddRows(r.section("MOVIMIENTOS A REVISAR")...)
	m.AddRows(r.attentionRows(o)...)

	m.AddRows(r.section("TRASLADOS")...)
	m.AddRows(r.transferRows(o)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (r *OverviewRenderer) headerRow(o *appinv.OverviewReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("RESUMEN DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Empresa: "+o.CompanyID, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+o.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(r.p.Sprintf("%d movimientos", o.Records), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func (r *OverviewRenderer) totalsRow(o *appinv.OverviewReport) core.Row {
	cell := func(label, value string, c *props.Color) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Color: c}),
		)
	}
	avg := "—"
	if o.Valuation.AverageCost.Valid {
		avg = "$" + r.money(o.Valuation.AverageCost.Decimal)
	}
	negColor := colorPrimary
	if o.Stock.NegativeLines > 0 {
		negColor = colorAlert
	}
	return row.New(14).Add(
		cell("Unidades en stock", r.p.Sprintf("%d", o.Stock.TotalCurrent), colorPrimary),
		cell("Valor del inventario", "$"+r.money(o.Valuation.TotalValue), colorPrimary),
		cell("Costo promedio", avg, colorPrimary),
		cell("Existencias negativas", r.p.Sprintf("%d", o.Stock.NegativeLines), negColor),
	)
}

func (r *OverviewRenderer) section(title string) []core.Row {
	return []core.Row{
		row.New(4),
		row.New(7).Add(col.New(12).Add(text.New(title, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1,
		}))),
		line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}),
	}
}

// table arma cabecera + filas. sizes suma 12; las columnas numéricas van a la derecha.
func table(headers []string, sizes []int, numeric []bool, rows [][]string) []core.Row {
	mk := func(values []string, style fontstyle.Type, c *props.Color) core.Row {
		cols := make([]core.Col, len(values))
		for i, v := range values {
			a := align.Left
			if numeric[i] {
				a = align.Right
			}
			cols[i] = col.New(sizes[i]).Add(text.New(v, props.Text{
				Style: style, Size: 7.5, Align: a, Color: c, Top: 1, Left: 1, Right: 1,
			}))
		}
		return row.New(6).Add(cols...)
	}
	out := []core.Row{mk(headers, fontstyle.Bold, colorGray)}
	if len(rows) == 0 {
		return append(out, row.New(6).Add(col.New(12).Add(text.New("Sin datos", props.Text{
			Size: 7.5, Color: colorGray, Top: 1, Left: 1,
		}))))
	}
	for _, values := range rows {
		out = append(out, mk(values, fontstyle.Normal, nil))
	}
	return out
}

func (r *OverviewRenderer) siteRows(o *appinv.OverviewReport) []core.Row {
	rows := make([][]string, 0, len(o.Valuation.Sites))
	for _, s := range o.Valuation.Sites {
		rows = append(rows, []string{
			o.SiteName(s.SiteID),
			r.p.Sprintf("%d", s.Lines),
			r.p.Sprintf("%d", s.TotalUnits),
			"$" + r.money(s.TotalValue),
		})
	}
	return table([]string{"Sede", "Líneas", "Unidades", "Valor"}, []int{6, 2, 2, 2}, []bool{false, true, true, true}, rows)
}

func (r *OverviewRenderer) valuationRows(o *appinv.OverviewReport) []core.Row {
	lines := o.Valuation.Lines[:min(len(o.Valuation.Lines), maxRows)]
	rows := make([][]string, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, []string{
			o.BookTitle(l.BookID),
			o.SiteName(l.SiteID),
			r.p.Sprintf("%d", l.CurrentStock),
			"$" + r.money(l.AverageCost),
			"$" + r.money(l.TotalValue),
		})
	}
	return table([]string{"Libro", "Sede", "Stock", "Costo prom.", "Valor"}, []int{4, 3, 1, 2, 2}, []bool{false, false, true, true, true}, rows)
}

func (r *OverviewRenderer) abcRows(o *appinv.OverviewReport) []core.Row {
	cats := make([][]string, 0, len(o.ABC.Categories))
	for _, c := range o.ABC.Categories {
		cats = append(cats, []string{
			c.Category.String(),
			r.p.Sprintf("%d", c.Books),
			"$" + r.money(c.TotalValue),
			r.percent(c.ValuePercentage),
		})
	}
	out := table([]string{"Categoría", "Libros", "Valor de salidas", "% del total"}, []int{3, 3, 3, 3}, []bool{false, true, true, true}, cats)

	assignments := o.ABC.Assignments[:min(len(o.ABC.Assignments), maxRows)]
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{
			r.p.Sprintf("%d", a.Rank),
			o.BookTitle(a.BookID),
			a.Category.String(),
			"$" + r.money(a.TotalValue),
			r.percent(a.CumulativePercentage),
		})
	}
	out = append(out, row.New(3))
	return append(out, table([]string{"#", "Libro", "Cat.", "Valor", "% acumulado"}, []int{1, 5, 1, 3, 2}, []bool{true, false, false, true, true}, rows)...)
}

func (r *OverviewRenderer) agingRows(o *appinv.OverviewReport) []core.Row {
	var rows [][]string
	add := func(label string, items []engine.AgingItem) {
		for _, it := range items {
			if len(rows) == maxRows {
				return
			}
			value := "—"
			if it.Value.Valid {
				value = "$" + r.money(it.Value.Decimal)
			}
			rows = append(rows, []string{
				label,
				o.BookTitle(it.BookID),
				o.SiteName(it.SiteID),
				r.p.Sprintf("%d", it.CurrentStock),
				r.p.Sprintf("%d", it.DaysSinceMovement),
				value,
			})
		}
	}
	add("Muerto", o.Aging.DeadStock)
	add("Lento", o.Aging.SlowMoving)
	out := table([]string{"Estado", "Libro", "Sede", "Stock", "Días", "Valor"}, []int{1, 4, 2, 1, 2, 2}, []bool{false, false, false, true, true, true}, rows)
	return append(out, row.New(6).Add(col.New(12).Add(text.New(
		fmt.Sprintf("Valor lento: $%s   |   Valor muerto: $%s", r.money(o.Aging.SlowMovingValue), r.money(o.Aging.DeadStockValue)),
		props.Text{Size: 7.5, Align: align.Right, Color: colorGray, Top: 1, Right: 1},
	))))
}

func (r *OverviewRenderer) attentionRows(o *appinv.OverviewReport) []core.Row {
	items := o.Attention.Items[:min(len(o.Attention.Items), maxRows)]
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		m := it.Movement
		value := "—"
		if m.TotalCost.Valid {
			value = "$" + r.money(m.TotalCost.Decimal)
		}
		rows = append(rows, []string{
			m.Timestamp.Format("02/01/2006"),
			m.Type.String(),
			o.BookTitle(m.BookID),
			r.p.Sprintf("%d", m.Quantity),
			value,
			it.Rules[0].Reason(),
		})
	}
	return table([]string{"Fecha", "Tipo", "Libro", "Cant.", "Valor", "Motivo"}, []int{2, 2, 3, 1, 2, 2}, []bool{false, false, false, true, true, false}, rows)
}

func (r *OverviewRenderer) transferRows(o *appinv.OverviewReport) []core.Row {
	t := o.Transfers
	rows := make([][]string, 0, len(t.Routes))
	for _, rt := range t.Routes {
		rows = append(rows, []string{
			o.SiteName(rt.FromSiteID) + " a " + o.SiteName(rt.ToSiteID),
			r.p.Sprintf("%d", rt.Transfers),
			r.p.Sprintf("%d", rt.Completed),
			r.p.Sprintf("%d", rt.Pending),
			r.p.Sprintf("%d", rt.QuantitySent),
			r.p.Sprintf("%.1f", rt.AverageDurationDays),
		})
	}
	out := table([]string{"Ruta", "Traslados", "Completos", "Pendientes", "Unidades", "Días prom."}, []int{4, 2, 2, 1, 1, 2}, []bool{false, true, true, true, true, true}, rows)
	return append(out, row.New(6).Add(col.New(12).Add(text.New(
		r.p.Sprintf("Estrategia: %s   |   %d traslados, %d pendientes", t.Matcher, t.TotalTransfers, t.Pending),
		props.Text{Size: 7.5, Align: align.Right, Color: colorGray, Top: 1, Right: 1},
	))))
}

// ── helpers ───────────────────────────────────────────────────────────────────

// money formatea con separador de miles y dos decimales: 1234.5 → "1.234,50".
func (r *OverviewRenderer) money(d decimal.Decimal) string {
	return r.p.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

func (r *OverviewRenderer) percent(d decimal.Decimal) string {
	return r.p.Sprintf("%.1f%%", d.Round(1).InexactFloat64())
}
