package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

type fakeRenderer struct {
	format string
	got    *appinv.OverviewReport
	err    error
}

func (r *fakeRenderer) Format() string      { return r.format }
func (r *fakeRenderer) ContentType() string { return "application/x-" + r.format }
func (r *fakeRenderer) Render(_ context.Context, report *appinv.OverviewReport) ([]byte, error) {
	r.got = report
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.format + ":" + report.CompanyID), nil
}

func TestOverview_CoincideConLosReportesIndividuales(t *testing.T) {
	ctx := context.Background()
	store := reportLedger(t)
	settings := appinv.DefaultReportSettings()
	overview := appinv.NewOverviewUseCase(store, settings, nil, fixedClock)
	reports := appinv.NewReportUseCase(store, settings, nil, fixedClock)

	o, err := overview.Overview(ctx, company)
	require.NoError(t, err)

	assert.Equal(t, company, o.CompanyID)
	assert.Equal(t, now, o.GeneratedAt)
	assert.Equal(t, 7, o.Records)

	val, err := reports.Valuation(ctx, company, "")
	require.NoError(t, err)
	assert.Equal(t, val, o.Valuation)

	aging, err := reports.AgingReport(ctx, company, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, aging, o.Aging)

	attention, err := reports.AttentionReport(ctx, company, appinv.AttentionParams{})
	require.NoError(t, err)
	assert.Equal(t, len(attention.Items), len(o.Attention.Items))

	assert.Equal(t, 1, o.Transfers.Completed)
	assert.Equal(t, int64(42), o.Stock.TotalCurrent)
	assert.Equal(t, now.Add(-appinv.OverviewABCPeriod), o.ABC.PeriodStart)
	// La entrada de book-2 (hace 100 días) queda fuera de los 90 días.
	for _, a := range o.ABC.Assignments {
		assert.NotEqual(t, "book-2", a.BookID)
	}
}

func TestOverview_LedgerVacio(t *testing.T) {
	uc := appinv.NewOverviewUseCase(memory.NewLedgerStore(), appinv.DefaultReportSettings(), nil, fixedClock)

	o, err := uc.Overview(context.Background(), company)
	require.NoError(t, err)

	assert.Zero(t, o.Records)
	assert.Empty(t, o.Stock.Levels)
	assert.Empty(t, o.ABC.Assignments)
	assert.Len(t, o.ABC.Categories, 3)
	assert.Zero(t, o.Transfers.TotalTransfers)
}

func TestOverviewExport_UsaElRendererDelFormato(t *testing.T) {
	pdf := &fakeRenderer{format: "pdf"}
	xlsx := &fakeRenderer{format: "xlsx"}
	uc := appinv.NewOverviewUseCase(reportLedger(t), appinv.DefaultReportSettings(), nil, fixedClock, pdf, xlsx)

	data, contentType, err := uc.Export(context.Background(), company, "XLSX")
	require.NoError(t, err)

	assert.Equal(t, "xlsx:"+company, string(data))
	assert.Equal(t, "application/x-xlsx", contentType)
	require.NotNil(t, xlsx.got)
	assert.Nil(t, pdf.got)
	assert.Equal(t, []string{"pdf", "xlsx"}, uc.Formats())
}

func TestOverviewExport_FormatoDesconocido(t *testing.T) {
	uc := appinv.NewOverviewUseCase(memory.NewLedgerStore(), appinv.DefaultReportSettings(), nil, fixedClock,
		&fakeRenderer{format: "xlsx"}, &fakeRenderer{format: "pdf"})
	_, _, err := uc.Export(context.Background(), company, "csv")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "pdf, xlsx", "el mensaje lista los formatos disponibles")
}

func TestOverviewExport_PropagaErrorDelRenderer(t *testing.T) {
	boom := errors.New("sin fuentes")
	uc := appinv.NewOverviewUseCase(memory.NewLedgerStore(), appinv.DefaultReportSettings(), nil, fixedClock,
		&fakeRenderer{format: "pdf", err: boom})
	_, _, err := uc.Export(context.Background(), company, "pdf")
	assert.ErrorIs(t, err, boom)
}

func TestOverview_EnriqueceConCatalogo(t *testing.T) {
	catalog := memory.NewCatalogStore()
	catalog.PutBook(entity.Book{ID: "book-1", CompanyID: company, Title: "Cien años de soledad"})
	catalog.PutSite(entity.Site{ID: "site-a", CompanyID: company, Name: "Bodega Central"})
	uc := appinv.NewOverviewUseCase(reportLedger(t), appinv.DefaultReportSettings(), nil, fixedClock).
		WithCatalog(catalog)

	o, err := uc.Overview(context.Background(), company)
	require.NoError(t, err)

	assert.Equal(t, "Cien años de soledad", o.BookTitle("book-1"))
	assert.Equal(t, "book-2", o.BookTitle("book-2"), "sin metadatos se muestra el ID")
	assert.Equal(t, "Bodega Central", o.SiteName("site-a"))
	assert.Equal(t, "site-b", o.SiteName("site-b"))
}
