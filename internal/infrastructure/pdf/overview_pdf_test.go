package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func overview(t *testing.T, withMovements bool) *appinv.OverviewReport {
	t.Helper()
	ctx := context.Background()
	ledger := memory.NewLedgerStore()
	if withMovements {
		h := func(site, book string, days int) entity.MovementHeader {
			return entity.MovementHeader{CompanyID: "company-1", SiteID: site, BookID: book,
				Timestamp: now.AddDate(0, 0, -days), CreatedBy: "user-1"}
		}
		cost := decimal.NewNullDecimal(decimal.NewFromInt(1500))
		in, err := entity.NewStockIn(h("site-a", "book-1", 200), 10, cost, entity.Reference{})
		require.NoError(t, err)
		out, err := entity.NewStockOut(h("site-a", "book-1", 20), 4, cost, entity.Reference{})
		require.NoError(t, err)
		tr, err := entity.NewTransferOut(h("site-a", "book-1", 5), "site-b", 2, cost, entity.Reference{})
		require.NoError(t, err)
		require.NoError(t, ledger.AppendBatch(ctx, []entity.MovementRecord{in, out, tr}))
	}
	uc := appinv.NewOverviewUseCase(ledger, appinv.DefaultReportSettings(), logger.Nop(), func() time.Time { return now })
	o, err := uc.Overview(ctx, "company-1")
	require.NoError(t, err)
	return o
}

func TestOverviewRenderer_GeneraPDF(t *testing.T) {
	r := pdf.NewOverviewRenderer()
	assert.Equal(t, "pdf", r.Format())
	assert.Equal(t, "application/pdf", r.ContentType())

	data, err := r.Render(context.Background(), overview(t, true))
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "el documento debe empezar con la firma PDF")
}

func TestOverviewRenderer_LedgerVacio(t *testing.T) {
	data, err := pdf.NewOverviewRenderer().Render(context.Background(), overview(t, false))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
