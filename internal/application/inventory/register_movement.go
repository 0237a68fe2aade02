package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement.
// Un movement_type desconocido no corta la validación: se construye con tipo cero y la
// violación de movement_type se reporta junto con las del resto de campos.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) (entity.MovementRecord, error) {
	t, parseErr := entity.ParseMovementType(in.Type)
	m, err := uc.RegisterMovement(ctx, MovementInput{
		CompanyID:     companyID,
		UserID:        userID,
		SiteID:        in.SiteID,
		BookID:        in.BookID,
		Type:          t,
		Quantity:      in.Quantity,
		UnitCost:      nullDecimal(in.UnitCost),
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		FromSiteID:    in.FromSiteID,
		ToSiteID:      in.ToSiteID,
		Timestamp:     timeOrZero(in.Timestamp),
	})
	if parseErr == nil {
		return m, err
	}
	// Con tipo cero Validate siempre falla, así que err es la ValidationError del constructor.
	ve, ok := domain.AsValidationError(err)
	if !ok {
		ve = &domain.ValidationError{}
		ve.Add("movement_type", parseErr.Error())
		return entity.MovementRecord{}, ve
	}
	for i := range ve.Violations {
		if ve.Violations[i].Field == "movement_type" {
			ve.Violations[i].Message = parseErr.Error()
		}
	}
	return entity.MovementRecord{}, ve
}

// TransferFromRequest despacha el traslado o, con immediate, anexa ambos tramos.
// in es nil cuando solo se despacha.
func (uc *RegisterMovementUseCase) TransferFromRequest(ctx context.Context, companyID, userID string, req dto.TransferRequest) (out entity.MovementRecord, in *entity.MovementRecord, err error) {
	input := TransferInput{
		CompanyID:  companyID,
		UserID:     userID,
		BookID:     req.BookID,
		FromSiteID: req.FromSiteID,
		ToSiteID:   req.ToSiteID,
		Quantity:   req.Quantity,
		UnitCost:   nullDecimal(req.UnitCost),
		Reference:  entity.Reference{Type: req.ReferenceType, ID: req.ReferenceID},
		Timestamp:  timeOrZero(req.Timestamp),
	}
	if !req.Immediate {
		out, err = uc.DispatchTransfer(ctx, input)
		return out, nil, err
	}
	out, arrival, err := uc.TransferImmediate(ctx, input)
	if err != nil {
		return entity.MovementRecord{}, nil, err
	}
	return out, &arrival, nil
}

// ReceiveTransferFromRequest adapta el request de recepción.
func (uc *RegisterMovementUseCase) ReceiveTransferFromRequest(ctx context.Context, companyID, userID, outboundID string, req dto.ReceiptRequest) (entity.MovementRecord, error) {
	return uc.ReceiveTransfer(ctx, companyID, userID, outboundID, ReceiptInput{
		Quantity:  req.Quantity,
		UnitCost:  nullDecimal(req.UnitCost),
		Timestamp: timeOrZero(req.Timestamp),
	})
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
