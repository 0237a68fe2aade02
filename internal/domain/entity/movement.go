package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/id"
)

// Tipos de referencia que genera la propia aplicación.
const (
	ReferenceCorrection = "Correction" // ajuste que corrige otro movimiento
	ReferenceTransfer   = "Transfer"   // llegada que referencia su TransferOut
)

// MovementRecord es un evento de inventario del ledger (recepción, salida, tramo de traslado o ajuste).
//
// Es inmutable una vez anexado: no existen métodos que lo modifiquen y se maneja por valor.
// Las correcciones se expresan como un nuevo Adjustment que referencia al original (NewCorrection).
//
// Quantity es una magnitud no negativa para StockIn/StockOut/TransferIn/TransferOut (la dirección
// la da Type); en Adjustment el signo se conserva (positivo aumenta, negativo disminuye).
type MovementRecord struct {
	ID            string
	CompanyID     string
	SiteID        string
	BookID        string
	Type          MovementType
	Quantity      int64
	ReferenceType string // "Registration", "Requisition", "Correction"...; vacío = sin referencia
	ReferenceID   string
	FromSiteID    string // solo TransferIn
	ToSiteID      string // solo TransferOut
	UnitCost      decimal.NullDecimal
	TotalCost     decimal.NullDecimal // Quantity × UnitCost cuando UnitCost está presente
	Timestamp     time.Time
	CreatedBy     string
}

// MovementHeader datos comunes a todos los constructores por tipo.
type MovementHeader struct {
	CompanyID string
	SiteID    string
	BookID    string
	Timestamp time.Time
	CreatedBy string
}

// Reference enlaza un movimiento con el evento de negocio que lo originó.
type Reference struct {
	Type string
	ID   string
}

// MovementInput entrada genérica de NewMovement. ID vacío = se genera un TypeID nuevo.
type MovementInput struct {
	ID            string
	CompanyID     string
	SiteID        string
	BookID        string
	Type          MovementType
	Quantity      int64
	ReferenceType string
	ReferenceID   string
	FromSiteID    string
	ToSiteID      string
	UnitCost      decimal.NullDecimal
	Timestamp     time.Time
	CreatedBy     string
}

// NewMovement construye y valida un movimiento. Deriva TotalCost y asigna ID si falta.
// Devuelve *domain.ValidationError con todas las reglas incumplidas.
func NewMovement(in MovementInput) (MovementRecord, error) {
	m := MovementRecord{
		ID:            in.ID,
		CompanyID:     in.CompanyID,
		SiteID:        in.SiteID,
		BookID:        in.BookID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		FromSiteID:    in.FromSiteID,
		ToSiteID:      in.ToSiteID,
		UnitCost:      in.UnitCost,
		Timestamp:     in.Timestamp,
		CreatedBy:     in.CreatedBy,
	}
	if m.ID == "" {
		m.ID = id.NewMovementID()
	}
	m.TotalCost = totalCost(m.Quantity, m.UnitCost)
	if err := m.Validate(); err != nil {
		return MovementRecord{}, err
	}
	return m, nil
}

// NewStockIn construye una entrada (recepción) de qty unidades.
func NewStockIn(h MovementHeader, qty int64, unitCost decimal.NullDecimal, ref Reference) (MovementRecord, error) {
	return NewMovement(h.input(MovementStockIn, qty, unitCost, ref))
}

// NewStockOut construye una salida de qty unidades.
func NewStockOut(h MovementHeader, qty int64, unitCost decimal.NullDecimal, ref Reference) (MovementRecord, error) {
	return NewMovement(h.input(MovementStockOut, qty, unitCost, ref))
}

// NewTransferOut construye el tramo de salida de un traslado desde h.SiteID hacia toSiteID.
func NewTransferOut(h MovementHeader, toSiteID string, qty int64, unitCost decimal.NullDecimal, ref Reference) (MovementRecord, error) {
	in := h.input(MovementTransferOut, qty, unitCost, ref)
	in.ToSiteID = toSiteID
	return NewMovement(in)
}

// NewTransferIn construye el tramo de llegada de un traslado desde fromSiteID hacia h.SiteID.
func NewTransferIn(h MovementHeader, fromSiteID string, qty int64, unitCost decimal.NullDecimal, ref Reference) (MovementRecord, error) {
	in := h.input(MovementTransferIn, qty, unitCost, ref)
	in.FromSiteID = fromSiteID
	return NewMovement(in)
}

// NewAdjustment construye un ajuste con signo (qty > 0 aumenta, qty < 0 disminuye).
func NewAdjustment(h MovementHeader, qty int64, unitCost decimal.NullDecimal, ref Reference) (MovementRecord, error) {
	return NewMovement(h.input(MovementAdjustment, qty, unitCost, ref))
}

// NewCorrection construye el ajuste que corrige original en delta unidades.
// Conserva empresa, sede y libro del original y lo referencia como "Correction".
func NewCorrection(original MovementRecord, delta int64, createdBy string, at time.Time) (MovementRecord, error) {
	h := MovementHeader{
		CompanyID: original.CompanyID,
		SiteID:    original.SiteID,
		BookID:    original.BookID,
		Timestamp: at,
		CreatedBy: createdBy,
	}
	return NewAdjustment(h, delta, decimal.NullDecimal{}, Reference{Type: ReferenceCorrection, ID: original.ID})
}

func (h MovementHeader) input(t MovementType, qty int64, unitCost decimal.NullDecimal, ref Reference) MovementInput {
	return MovementInput{
		CompanyID:     h.CompanyID,
		SiteID:        h.SiteID,
		BookID:        h.BookID,
		Type:          t,
		Quantity:      qty,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		UnitCost:      unitCost,
		Timestamp:     h.Timestamp,
		CreatedBy:     h.CreatedBy,
	}
}

// Validate comprueba las invariantes de ingesta y devuelve todas las violaciones juntas.
// Lo usan los constructores y los adaptadores del ledger antes de anexar.
func (m MovementRecord) Validate() error {
	ve := &domain.ValidationError{}

	if m.ID == "" {
		ve.Add("id", "requerido")
	}
	if m.CompanyID == "" {
		ve.Add("company_id", "requerido")
	}
	if m.SiteID == "" {
		ve.Add("site_id", "requerido")
	}
	if m.BookID == "" {
		ve.Add("book_id", "requerido")
	}
	if m.Timestamp.IsZero() {
		ve.Add("timestamp", "requerido")
	}

	if !m.Type.IsValid() {
		ve.Add("movement_type", "debe ser STOCK_IN, STOCK_OUT, TRANSFER_IN, TRANSFER_OUT o ADJUSTMENT")
	}

	switch {
	case m.Quantity == 0:
		ve.Add("quantity", "no puede ser cero")
	case m.Quantity < 0 && m.Type != MovementAdjustment:
		ve.Add("quantity", "debe ser una magnitud positiva; solo los ajustes llevan signo")
	}

	switch m.Type {
	case MovementTransferOut:
		if m.ToSiteID == "" {
			ve.Add("to_site_id", "requerido en TRANSFER_OUT")
		} else if m.ToSiteID == m.SiteID {
			ve.Add("to_site_id", "debe ser distinto de site_id")
		}
		if m.FromSiteID != "" {
			ve.Add("from_site_id", "solo aplica a TRANSFER_IN")
		}
	case MovementTransferIn:
		if m.FromSiteID == "" {
			ve.Add("from_site_id", "requerido en TRANSFER_IN")
		} else if m.FromSiteID == m.SiteID {
			ve.Add("from_site_id", "debe ser distinto de site_id")
		}
		if m.ToSiteID != "" {
			ve.Add("to_site_id", "solo aplica a TRANSFER_OUT")
		}
	default:
		if m.FromSiteID != "" {
			ve.Add("from_site_id", "solo aplica a TRANSFER_IN")
		}
		if m.ToSiteID != "" {
			ve.Add("to_site_id", "solo aplica a TRANSFER_OUT")
		}
	}

	if m.ReferenceType != "" && m.ReferenceID == "" {
		ve.Add("reference_id", "requerido cuando hay reference_type")
	}
	if m.ReferenceID != "" && m.ReferenceType == "" {
		ve.Add("reference_type", "requerido cuando hay reference_id")
	}

	if m.UnitCost.Valid && m.UnitCost.Decimal.IsNegative() {
		ve.Add("unit_cost", "no puede ser negativo")
	}
	if want := totalCost(m.Quantity, m.UnitCost); want.Valid != m.TotalCost.Valid ||
		(want.Valid && !want.Decimal.Equal(m.TotalCost.Decimal)) {
		ve.Add("total_cost", "debe ser quantity × unit_cost")
	}

	return ve.OrNil()
}

// IsInbound indica si el movimiento suma al stock de su sede
// (StockIn, TransferIn o Adjustment positivo).
func (m MovementRecord) IsInbound() bool {
	switch m.Type {
	case MovementStockIn, MovementTransferIn:
		return true
	case MovementAdjustment:
		return m.Quantity > 0
	}
	return false
}

// IsOutbound indica si el movimiento resta del stock de su sede
// (StockOut, TransferOut o Adjustment negativo).
func (m MovementRecord) IsOutbound() bool {
	switch m.Type {
	case MovementStockOut, MovementTransferOut:
		return true
	case MovementAdjustment:
		return m.Quantity < 0
	}
	return false
}

// Magnitude devuelve |Quantity|.
func (m MovementRecord) Magnitude() int64 {
	if m.Quantity < 0 {
		return -m.Quantity
	}
	return m.Quantity
}

// HasReference indica si el movimiento está enlazado a un evento de negocio.
func (m MovementRecord) HasReference() bool {
	return m.ReferenceType != ""
}

// Key devuelve la clave (sede, libro) del movimiento.
func (m MovementRecord) Key() StockKey {
	return StockKey{SiteID: m.SiteID, BookID: m.BookID}
}

func totalCost(qty int64, unitCost decimal.NullDecimal) decimal.NullDecimal {
	if !unitCost.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(unitCost.Decimal.Mul(decimal.NewFromInt(qty)))
}
