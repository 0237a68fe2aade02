// Package inventory contiene los casos de uso del ledger: registro de movimientos,
// correcciones, traslados y reportes derivados.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RegisterMovementUseCase anexa movimientos validados al ledger. Nunca modifica ni borra:
// las correcciones y recepciones de traslado son registros nuevos.
type RegisterMovementUseCase struct {
	ledger repository.LedgerRepository
	log    *logger.Logger
	clock  Clock
}

// NewRegisterMovementUseCase construye el caso de uso. log y clock pueden ser nil.
func NewRegisterMovementUseCase(ledger repository.LedgerRepository, log *logger.Logger, clock Clock) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{ledger: ledger, log: logger.OrNop(log), clock: clock}
}

// MovementInput entrada para registrar un movimiento de cualquier tipo.
// Timestamp cero = ahora.
type MovementInput struct {
	CompanyID     string
	UserID        string
	SiteID        string
	BookID        string
	Type          entity.MovementType
	Quantity      int64
	UnitCost      decimal.NullDecimal
	ReferenceType string
	ReferenceID   string
	FromSiteID    string
	ToSiteID      string
	Timestamp     time.Time
}

// RegisterMovement valida y anexa un movimiento. Devuelve *domain.ValidationError con
// todas las reglas incumplidas si el registro no es válido.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, in MovementInput) (entity.MovementRecord, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.clock.now()
	}
	m, err := entity.NewMovement(entity.MovementInput{
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
		Timestamp:     ts,
		CreatedBy:     in.UserID,
	})
	if err != nil {
		return entity.MovementRecord{}, err
	}
	if _, err := uc.ledger.Append(ctx, m); err != nil {
		return entity.MovementRecord{}, err
	}
	uc.logAppended(m)
	return m, nil
}

// CorrectMovement anexa un ajuste de delta unidades que referencia a originalID.
// reason solo queda en el log: el registro no tiene campo de observaciones.
func (uc *RegisterMovementUseCase) CorrectMovement(ctx context.Context, companyID, userID, originalID string, delta int64, reason string) (entity.MovementRecord, error) {
	original, err := uc.ledger.GetByID(ctx, companyID, originalID)
	if err != nil {
		return entity.MovementRecord{}, err
	}
	m, err := entity.NewCorrection(original, delta, userID, uc.clock.now())
	if err != nil {
		return entity.MovementRecord{}, err
	}
	if _, err := uc.ledger.Append(ctx, m); err != nil {
		return entity.MovementRecord{}, err
	}
	uc.logAppended(m)
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("corrects", original.ID).
		Str("reason", reason).
		Msg("corrección registrada")
	return m, nil
}

// TransferInput entrada para despachar un traslado entre sedes.
type TransferInput struct {
	CompanyID  string
	UserID     string
	BookID     string
	FromSiteID string
	ToSiteID   string
	Quantity   int64
	UnitCost   decimal.NullDecimal
	Reference  entity.Reference
	Timestamp  time.Time // cero = ahora
}

func (in TransferInput) header(siteID string, ts time.Time) entity.MovementHeader {
	return entity.MovementHeader{
		CompanyID: in.CompanyID,
		SiteID:    siteID,
		BookID:    in.BookID,
		Timestamp: ts,
		CreatedBy: in.UserID,
	}
}

// DispatchTransfer anexa el tramo de salida (TransferOut) en la sede origen.
// La llegada se registra después con ReceiveTransfer.
func (uc *RegisterMovementUseCase) DispatchTransfer(ctx context.Context, in TransferInput) (entity.MovementRecord, error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.clock.now()
	}
	out, err := entity.NewTransferOut(in.header(in.FromSiteID, ts), in.ToSiteID, in.Quantity, in.UnitCost, in.Reference)
	if err != nil {
		return entity.MovementRecord{}, err
	}
	if _, err := uc.ledger.Append(ctx, out); err != nil {
		return entity.MovementRecord{}, err
	}
	uc.logAppended(out)
	return out, nil
}

// ReceiptInput datos de la llegada. Quantity 0 = la cantidad despachada; UnitCost
// ausente = el costo del despacho; Timestamp cero = ahora.
type ReceiptInput struct {
	Quantity  int64
	UnitCost  decimal.NullDecimal
	Timestamp time.Time
}

// ReceiveTransfer anexa el TransferIn en la sede destino del despacho outboundID,
// referenciándolo como "Transfer". Un despacho solo se recibe una vez (domain.ErrDuplicate):
// la búsqueda previa evita el caso común y el ledger rechaza la segunda llegada al anexar,
// aunque dos recepciones concurrentes pasen ambas la búsqueda.
func (uc *RegisterMovementUseCase) ReceiveTransfer(ctx context.Context, companyID, userID, outboundID string, in ReceiptInput) (entity.MovementRecord, error) {
	out, err := uc.ledger.GetByID(ctx, companyID, outboundID)
	if err != nil {
		return entity.MovementRecord{}, err
	}
	if out.Type != entity.MovementTransferOut {
		ve := &domain.ValidationError{}
		ve.Add("id", "el movimiento no es un TRANSFER_OUT")
		return entity.MovementRecord{}, ve
	}

	received := errors.New("recibido")
	err = uc.ledger.Scan(ctx, companyID, repository.MovementFilter{SiteID: out.ToSiteID, BookID: out.BookID},
		func(m entity.MovementRecord) error {
			if m.Type == entity.MovementTransferIn && m.ReferenceType == entity.ReferenceTransfer && m.ReferenceID == out.ID {
				return received
			}
			return nil
		})
	switch {
	case errors.Is(err, received):
		return entity.MovementRecord{}, fmt.Errorf("traslado %s ya recibido: %w", out.ID, domain.ErrDuplicate)
	case err != nil:
		return entity.MovementRecord{}, err
	}

	qty := in.Quantity
	if qty == 0 {
		qty = out.Quantity
	}
	cost := in.UnitCost
	if !cost.Valid {
		cost = out.UnitCost
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.clock.now()
	}
	h := entity.MovementHeader{
		CompanyID: companyID,
		SiteID:    out.ToSiteID,
		BookID:    out.BookID,
		Timestamp: ts,
		CreatedBy: userID,
	}
	m, err := entity.NewTransferIn(h, out.SiteID, qty, cost, entity.Reference{Type: entity.ReferenceTransfer, ID: out.ID})
	if err != nil {
		return entity.MovementRecord{}, err
	}
	if _, err := uc.ledger.Append(ctx, m); err != nil {
		return entity.MovementRecord{}, err
	}
	uc.logAppended(m)
	return m, nil
}

// TransferImmediate anexa salida y llegada con la misma fecha en una sola operación atómica.
func (uc *RegisterMovementUseCase) TransferImmediate(ctx context.Context, in TransferInput) (out, arrival entity.MovementRecord, err error) {
	ts := in.Timestamp
	if ts.IsZero() {
		ts = uc.clock.now()
	}
	out, err = entity.NewTransferOut(in.header(in.FromSiteID, ts), in.ToSiteID, in.Quantity, in.UnitCost, in.Reference)
	if err != nil {
		return entity.MovementRecord{}, entity.MovementRecord{}, err
	}
	arrival, err = entity.NewTransferIn(in.header(in.ToSiteID, ts), in.FromSiteID, in.Quantity, in.UnitCost,
		entity.Reference{Type: entity.ReferenceTransfer, ID: out.ID})
	if err != nil {
		return entity.MovementRecord{}, entity.MovementRecord{}, err
	}
	if err := uc.ledger.AppendBatch(ctx, []entity.MovementRecord{out, arrival}); err != nil {
		return entity.MovementRecord{}, entity.MovementRecord{}, err
	}
	uc.logAppended(out)
	uc.logAppended(arrival)
	return out, arrival, nil
}

func (uc *RegisterMovementUseCase) logAppended(m entity.MovementRecord) {
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("type", m.Type.String()).
		Str("company_id", m.CompanyID).
		Str("site_id", m.SiteID).
		Str("book_id", m.BookID).
		Int64("quantity", m.Quantity).
		Msg("movimiento anexado")
}
