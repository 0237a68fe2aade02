package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
)

var t0 = time.Date(2025, 4, 2, 15, 30, 0, 123456789, time.UTC)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func header(site, book string, at time.Time) entity.MovementHeader {
	return entity.MovementHeader{CompanyID: "c1", SiteID: site, BookID: book, Timestamp: at, CreatedBy: "u1"}
}

func TestStore_RoundTripConservaCostosYFecha(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	withCost, err := entity.NewTransferOut(header("s1", "b1", t0), "s2", 12,
		decimal.NewNullDecimal(decimal.RequireFromString("4.35")), entity.Reference{Type: "Requisition", ID: "rq-1"})
	require.NoError(t, err)
	noCost, err := entity.NewAdjustment(header("s1", "b1", t0.Add(time.Hour)), -3, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)

	for _, m := range []entity.MovementRecord{withCost, noCost} {
		_, err := s.Append(ctx, m)
		require.NoError(t, err)
	}

	got, err := s.GetByID(ctx, "c1", withCost.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTransferOut, got.Type)
	assert.Equal(t, "s2", got.ToSiteID)
	assert.True(t, got.Timestamp.Equal(t0))
	require.True(t, got.UnitCost.Valid)
	assert.True(t, got.UnitCost.Decimal.Equal(decimal.RequireFromString("4.35")))
	assert.True(t, got.TotalCost.Decimal.Equal(decimal.RequireFromString("52.2")))
	assert.NoError(t, got.Validate())

	adj, err := s.GetByID(ctx, "c1", noCost.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), adj.Quantity)
	assert.False(t, adj.UnitCost.Valid)
	assert.False(t, adj.TotalCost.Valid)
}

func TestStore_DuplicadoYNoEncontrado(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m, err := entity.NewStockIn(header("s1", "b1", t0), 5, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)

	_, err = s.Append(ctx, m)
	require.NoError(t, err)
	_, err = s.Append(ctx, m)
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "err=%v", err)

	_, err = s.GetByID(ctx, "c1", "mov_inexistente")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStore_UnaSolaLlegadaPorTraslado(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	out, err := entity.NewTransferOut(header("s1", "b1", t0), "s2", 4, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)
	ref := entity.Reference{Type: entity.ReferenceTransfer, ID: out.ID}
	first, err := entity.NewTransferIn(header("s2", "b1", t0.Add(time.Hour)), "s1", 4, decimal.NullDecimal{}, ref)
	require.NoError(t, err)
	second, err := entity.NewTransferIn(header("s2", "b1", t0.Add(2*time.Hour)), "s1", 4, decimal.NullDecimal{}, ref)
	require.NoError(t, err)

	require.NoError(t, s.AppendBatch(ctx, []entity.MovementRecord{out, first}))
	_, err = s.Append(ctx, second)
	assert.True(t, errors.Is(err, domain.ErrDuplicate), "err=%v", err)
	assert.Contains(t, err.Error(), "ya recibido")

	// Otra referencia u otro tipo no chocan con el índice.
	other, err := entity.NewTransferIn(header("s2", "b1", t0), "s1", 1, decimal.NullDecimal{},
		entity.Reference{Type: "Requisition", ID: out.ID})
	require.NoError(t, err)
	_, err = s.Append(ctx, other)
	assert.NoError(t, err)
}

func TestStore_CostoConMasDeCuatroDecimalesEsExacto(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	m, err := entity.NewStockIn(header("s1", "b1", t0), 3,
		decimal.NewNullDecimal(decimal.RequireFromString("0.12345")), entity.Reference{})
	require.NoError(t, err)
	_, err = s.Append(ctx, m)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, "c1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.12345", got.UnitCost.Decimal.String())
	assert.Equal(t, "0.37035", got.TotalCost.Decimal.String())
	assert.NoError(t, got.Validate())
}

func TestStore_AppendBatchRevierteTodo(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	a, err := entity.NewStockIn(header("s1", "b1", t0), 5, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)

	err = s.AppendBatch(ctx, []entity.MovementRecord{a, a})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))

	all, err := s.Query(ctx, "c1", repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_QueryFiltrosYOrden(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	var ids []string
	for i, site := range []string{"s1", "s2", "s1"} {
		m, err := entity.NewStockIn(header(site, "b1", t0.Add(time.Duration(2-i)*time.Hour)), 1, decimal.NullDecimal{}, entity.Reference{})
		require.NoError(t, err)
		_, err = s.Append(ctx, m)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	all, err := s.Query(ctx, "c1", repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{all[0].ID, all[1].ID, all[2].ID})

	from := t0.Add(time.Hour)
	filtered, err := s.Query(ctx, "c1", repository.MovementFilter{SiteID: "s1", From: &from})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, ids[0], filtered[0].ID)

	none, err := s.Query(ctx, "c2", repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_ArchivoPersisteEntreAperturas(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	m, err := entity.NewStockIn(header("s1", "b1", t0), 5, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)
	_, err = s.Append(ctx, m)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetByID(ctx, "c1", m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestStore_Catalogo(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.UpsertBook(ctx, entity.Book{ID: "b1", CompanyID: "c1", ISBN: "978-958", Title: "María"}))
	require.NoError(t, s.UpsertBook(ctx, entity.Book{ID: "b1", CompanyID: "c1", ISBN: "978-958", Title: "María (2a ed.)"}))
	require.NoError(t, s.UpsertSite(ctx, entity.Site{ID: "s1", CompanyID: "c1", Name: "Sede Centro"}))

	books, err := s.BooksByIDs(ctx, "c1", []string{"b1", "nope"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "María (2a ed.)", books["b1"].Title)

	sites, err := s.SitesByIDs(ctx, "c1", []string{"s1"})
	require.NoError(t, err)
	assert.Equal(t, "Sede Centro", sites["s1"].Name)

	empty, err := s.SitesByIDs(ctx, "c1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
