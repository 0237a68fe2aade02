package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo ledger de movimientos sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q  Querier
	tx *TxRunner // nil cuando q ya es una transacción
}

// NewLedgerRepository construye el adaptador sobre el pool; AppendBatch abre su propia transacción.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{q: pool, tx: NewTxRunner(pool)}
}

// newLedgerRepoTx adaptador atado a una transacción en curso.
func newLedgerRepoTx(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const (
	uniqueViolation = "23505"
	// Un TRANSFER_OUT admite una sola llegada (migrations/002_transfer_receipts.sql).
	transferReceiptIndex = "uq_stock_movements_transfer_receipt"
)

const insertMovement = `
	INSERT INTO stock_movements (id, company_id, site_id, book_id, movement_type, quantity,
		reference_type, reference_id, from_site_id, to_site_id, unit_cost, total_cost, occurred_at, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

func (r *LedgerRepo) insert(ctx context.Context, m entity.MovementRecord) error {
	_, err := r.q.Exec(ctx, insertMovement,
		m.ID, m.CompanyID, m.SiteID, m.BookID, m.Type.String(), m.Quantity,
		m.ReferenceType, m.ReferenceID, m.FromSiteID, m.ToSiteID,
		m.UnitCost, m.TotalCost, m.Timestamp, m.CreatedBy,
	)
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == transferReceiptIndex {
			return fmt.Errorf("traslado %s ya recibido: %w", m.ReferenceID, domain.ErrDuplicate)
		}
		return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
	}
	return fmt.Errorf("insert stock movement: %w", err)
}

// Append valida y persiste un movimiento.
func (r *LedgerRepo) Append(ctx context.Context, m entity.MovementRecord) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := r.insert(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// AppendBatch persiste todos los movimientos en una sola transacción.
func (r *LedgerRepo) AppendBatch(ctx context.Context, ms []entity.MovementRecord) error {
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	insertAll := func(repo *LedgerRepo) error {
		for _, m := range ms {
			if err := repo.insert(ctx, m); err != nil {
				return err
			}
		}
		return nil
	}
	if r.tx == nil {
		return insertAll(r)
	}
	return r.tx.Run(ctx, func(q Querier) error {
		return insertAll(newLedgerRepoTx(q))
	})
}

const selectMovement = `
	SELECT id, company_id, site_id, book_id, movement_type, quantity, reference_type, reference_id,
		from_site_id, to_site_id, unit_cost, total_cost, occurred_at, created_by
	FROM stock_movements`

func scanMovement(row pgx.Row) (entity.MovementRecord, error) {
	var m entity.MovementRecord
	var typ string
	if err := row.Scan(&m.ID, &m.CompanyID, &m.SiteID, &m.BookID, &typ, &m.Quantity,
		&m.ReferenceType, &m.ReferenceID, &m.FromSiteID, &m.ToSiteID,
		&m.UnitCost, &m.TotalCost, &m.Timestamp, &m.CreatedBy); err != nil {
		return entity.MovementRecord{}, err
	}
	t, err := entity.ParseMovementType(typ)
	if err != nil {
		return entity.MovementRecord{}, err
	}
	m.Type = t
	return m, nil
}

// GetByID obtiene un movimiento de la empresa.
func (r *LedgerRepo) GetByID(ctx context.Context, companyID, id string) (entity.MovementRecord, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, selectMovement+` WHERE company_id = $1 AND id = $2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.MovementRecord{}, domain.ErrNotFound
		}
		return entity.MovementRecord{}, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

// Query devuelve la selección completa en memoria.
func (r *LedgerRepo) Query(ctx context.Context, companyID string, f repository.MovementFilter) ([]entity.MovementRecord, error) {
	var list []entity.MovementRecord
	err := r.Scan(ctx, companyID, f, func(m entity.MovementRecord) error {
		list = append(list, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Scan recorre el cursor sin materializar el historial.
func (r *LedgerRepo) Scan(ctx context.Context, companyID string, f repository.MovementFilter, fn func(entity.MovementRecord) error) error {
	query, args := buildMovementQuery(companyID, f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query stock movements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return fmt.Errorf("scan stock movement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func buildMovementQuery(companyID string, f repository.MovementFilter) (string, []any) {
	query := selectMovement + ` WHERE company_id = $1`
	args := []any{companyID}
	pos := 2
	if f.SiteID != "" {
		query += fmt.Sprintf(" AND site_id = $%d", pos)
		args = append(args, f.SiteID)
		pos++
	}
	if f.BookID != "" {
		query += fmt.Sprintf(" AND book_id = $%d", pos)
		args = append(args, f.BookID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *f.To)
	}
	query += " ORDER BY occurred_at, id"
	return query, args
}
