package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter filtros opcionales de consulta del ledger. Campos vacíos/nil = sin filtro.
// From y To son inclusivos.
type MovementFilter struct {
	SiteID string
	BookID string
	From   *time.Time
	To     *time.Time
}

// Matches indica si m cumple el filtro (la empresa se filtra aparte).
func (f MovementFilter) Matches(m entity.MovementRecord) bool {
	if f.SiteID != "" && m.SiteID != f.SiteID {
		return false
	}
	if f.BookID != "" && m.BookID != f.BookID {
		return false
	}
	if f.From != nil && m.Timestamp.Before(*f.From) {
		return false
	}
	if f.To != nil && m.Timestamp.After(*f.To) {
		return false
	}
	return true
}

// LedgerRepository define el puerto del ledger de movimientos (solo anexar y leer).
//
// Los adaptadores validan cada registro con MovementRecord.Validate antes de anexar y
// devuelven domain.ErrDuplicate si el ID ya existe. No hay operaciones de actualización
// ni borrado: las correcciones son nuevos ajustes.
type LedgerRepository interface {
	Append(ctx context.Context, m entity.MovementRecord) (string, error)
	// AppendBatch anexa todos los registros o ninguno.
	AppendBatch(ctx context.Context, ms []entity.MovementRecord) error
	// GetByID devuelve domain.ErrNotFound si no existe en la empresa.
	GetByID(ctx context.Context, companyID, id string) (entity.MovementRecord, error)
	// Query devuelve una instantánea ordenada por timestamp, id.
	Query(ctx context.Context, companyID string, f MovementFilter) ([]entity.MovementRecord, error)
	// Scan recorre los movimientos en el mismo orden que Query sin materializarlos.
	// Un error de fn detiene el recorrido y se devuelve tal cual.
	Scan(ctx context.Context, companyID string, f MovementFilter, fn func(entity.MovementRecord) error) error
}
