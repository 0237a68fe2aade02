package entity_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

var testTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func header() entity.MovementHeader {
	return entity.MovementHeader{
		CompanyID: "company-1",
		SiteID:    "site-1",
		BookID:    "book-a",
		Timestamp: testTime,
		CreatedBy: "user-1",
	}
}

func cost(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func fields(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := domain.AsValidationError(err)
	require.True(t, ok, "se esperaba *domain.ValidationError, llegó %v", err)
	out := make([]string, 0, len(ve.Violations))
	for _, v := range ve.Violations {
		out = append(out, v.Field)
	}
	return out
}

// ── Constructores ─────────────────────────────────────────────────────────────

func TestNewStockIn_DerivaTotalCostYAsignaID(t *testing.T) {
	m, err := entity.NewStockIn(header(), 100, cost("10"), entity.Reference{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(m.ID, "mov_"))
	assert.Equal(t, entity.MovementStockIn, m.Type)
	require.True(t, m.TotalCost.Valid)
	assert.True(t, m.TotalCost.Decimal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, m.IsInbound())
	assert.False(t, m.IsOutbound())
}

func TestNewStockOut_SinCosto_TotalCostAusente(t *testing.T) {
	m, err := entity.NewStockOut(header(), 30, decimal.NullDecimal{}, entity.Reference{Type: "Requisition", ID: "req-7"})
	require.NoError(t, err)

	assert.False(t, m.UnitCost.Valid)
	assert.False(t, m.TotalCost.Valid, "sin unit_cost no hay total_cost")
	assert.True(t, m.IsOutbound())
	assert.True(t, m.HasReference())
}

func TestNewAdjustment_ConservaSigno(t *testing.T) {
	m, err := entity.NewAdjustment(header(), -50, cost("2.5"), entity.Reference{})
	require.NoError(t, err)

	assert.Equal(t, int64(-50), m.Quantity)
	assert.Equal(t, int64(50), m.Magnitude())
	assert.True(t, m.IsOutbound())
	assert.True(t, m.TotalCost.Decimal.Equal(decimal.RequireFromString("-125")))
}

func TestNewTransferOut_RutaValida(t *testing.T) {
	m, err := entity.NewTransferOut(header(), "site-2", 20, cost("4"), entity.Reference{})
	require.NoError(t, err)

	assert.Equal(t, "site-2", m.ToSiteID)
	assert.Empty(t, m.FromSiteID)
	assert.True(t, m.Type.IsTransfer())
}

func TestNewTransferIn_RutaValida(t *testing.T) {
	h := header()
	h.SiteID = "site-2"
	m, err := entity.NewTransferIn(h, "site-1", 20, decimal.NullDecimal{}, entity.Reference{})
	require.NoError(t, err)

	assert.Equal(t, "site-1", m.FromSiteID)
	assert.True(t, m.IsInbound())
}

func TestNewCorrection_ReferenciaAlOriginal(t *testing.T) {
	orig, err := entity.NewStockIn(header(), 100, cost("10"), entity.Reference{})
	require.NoError(t, err)

	corr, err := entity.NewCorrection(orig, -5, "auditor", testTime.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, entity.MovementAdjustment, corr.Type)
	assert.Equal(t, entity.ReferenceCorrection, corr.ReferenceType)
	assert.Equal(t, orig.ID, corr.ReferenceID)
	assert.Equal(t, orig.SiteID, corr.SiteID)
	assert.Equal(t, orig.BookID, corr.BookID)
	assert.NotEqual(t, orig.ID, corr.ID)
	assert.Equal(t, int64(100), orig.Quantity, "el original no se modifica")
}

// ── Validación en ingesta ─────────────────────────────────────────────────────

func TestNewMovement_CantidadCero(t *testing.T) {
	_, err := entity.NewStockIn(header(), 0, cost("1"), entity.Reference{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, []string{"quantity"}, fields(t, err))
}

func TestNewMovement_CantidadNegativaSoloEnAjustes(t *testing.T) {
	_, err := entity.NewStockOut(header(), -3, decimal.NullDecimal{}, entity.Reference{})
	assert.Equal(t, []string{"quantity"}, fields(t, err))
}

func TestNewMovement_TipoInvalido(t *testing.T) {
	h := header()
	_, err := entity.NewMovement(entity.MovementInput{
		CompanyID: h.CompanyID, SiteID: h.SiteID, BookID: h.BookID,
		Timestamp: h.Timestamp, Quantity: 1,
	})
	assert.Contains(t, fields(t, err), "movement_type")
}

func TestNewTransferOut_DestinoIgualAOrigen(t *testing.T) {
	_, err := entity.NewTransferOut(header(), "site-1", 5, decimal.NullDecimal{}, entity.Reference{})
	assert.Equal(t, []string{"to_site_id"}, fields(t, err))
}

func TestNewTransferIn_SinOrigen(t *testing.T) {
	_, err := entity.NewTransferIn(header(), "", 5, decimal.NullDecimal{}, entity.Reference{})
	assert.Equal(t, []string{"from_site_id"}, fields(t, err))
}

func TestNewMovement_ReferenciaIncompleta(t *testing.T) {
	_, err := entity.NewStockIn(header(), 1, decimal.NullDecimal{}, entity.Reference{Type: "Registration"})
	assert.Equal(t, []string{"reference_id"}, fields(t, err))

	_, err = entity.NewStockIn(header(), 1, decimal.NullDecimal{}, entity.Reference{ID: "reg-1"})
	assert.Equal(t, []string{"reference_type"}, fields(t, err))
}

func TestNewMovement_CostoNegativo(t *testing.T) {
	_, err := entity.NewStockIn(header(), 1, cost("-0.01"), entity.Reference{})
	assert.Equal(t, []string{"unit_cost"}, fields(t, err))
}

func TestNewMovement_EnumeraTodasLasViolaciones(t *testing.T) {
	_, err := entity.NewMovement(entity.MovementInput{
		CompanyID:     "company-1",
		SiteID:        "site-1",
		BookID:        "book-a",
		Type:          entity.MovementTransferOut,
		Quantity:      0,
		ToSiteID:      "site-1",
		ReferenceType: "Requisition",
		UnitCost:      cost("-1"),
		Timestamp:     testTime,
	})
	require.Error(t, err)

	got := fields(t, err)
	assert.ElementsMatch(t, []string{"quantity", "to_site_id", "reference_id", "unit_cost"}, got)
	assert.Contains(t, err.Error(), "quantity")
	assert.Contains(t, err.Error(), "unit_cost")
}

func TestNewMovement_CamposDeRutaFueraDeTraslado(t *testing.T) {
	h := header()
	_, err := entity.NewMovement(entity.MovementInput{
		CompanyID: h.CompanyID, SiteID: h.SiteID, BookID: h.BookID, Timestamp: h.Timestamp,
		Type: entity.MovementStockIn, Quantity: 1, FromSiteID: "site-9", ToSiteID: "site-8",
	})
	assert.ElementsMatch(t, []string{"from_site_id", "to_site_id"}, fields(t, err))
}

func TestValidate_TotalCostInconsistente(t *testing.T) {
	m, err := entity.NewStockIn(header(), 10, cost("3"), entity.Reference{})
	require.NoError(t, err)

	m.TotalCost = cost("31")
	assert.Equal(t, []string{"total_cost"}, fields(t, m.Validate()))
}

// ── MovementType ──────────────────────────────────────────────────────────────

func TestMovementType_TextRoundTrip(t *testing.T) {
	for _, mt := range entity.MovementTypes {
		raw, err := json.Marshal(mt)
		require.NoError(t, err)

		var back entity.MovementType
		require.NoError(t, json.Unmarshal(raw, &back))
		assert.Equal(t, mt, back)
	}
}

func TestParseMovementType_Desconocido(t *testing.T) {
	_, err := entity.ParseMovementType("RETURN")
	assert.Error(t, err)
	assert.False(t, entity.MovementType(0).IsValid())
}
