package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockKey identifica una existencia por sede y libro.
type StockKey struct {
	SiteID string
	BookID string
}

// Less ordena claves por sede y luego por libro (salidas deterministas).
func (k StockKey) Less(o StockKey) bool {
	if k.SiteID != o.SiteID {
		return k.SiteID < o.SiteID
	}
	return k.BookID < o.BookID
}

// StockLevel es el stock derivado de un (sede, libro). No se persiste: siempre equivale
// a reproducir el ledger completo hasta la fecha de corte.
//
// CurrentStock puede ser negativo (un ajuste negativo sin entradas previas); no se recorta a cero.
type StockLevel struct {
	SiteID           string
	BookID           string
	StockIn          int64
	StockOut         int64
	CurrentStock     int64
	LastMovementDate time.Time
	LastMovementType MovementType
	LastMovementID   string
	AverageCost      decimal.NullDecimal // ausente si ninguna entrada trae costo
}

// Key devuelve la clave del nivel.
func (l StockLevel) Key() StockKey {
	return StockKey{SiteID: l.SiteID, BookID: l.BookID}
}
