// Package sqlite implementa el ledger embebido sobre modernc.org/sqlite (sin cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.LedgerRepository  = (*Store)(nil)
	_ repository.CatalogRepository = (*Store)(nil)
)

// MemoryPath base de datos en memoria (tests, demos).
const MemoryPath = ":memory:"

// Store ledger y catálogo sobre una base SQLite.
type Store struct {
	db *sql.DB
}

// Open abre (o crea) la base en path y aplica las migraciones pendientes.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := path
	if path != MemoryPath {
		// Los pragmas en el DSN se aplican a cada conexión del pool.
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == MemoryPath {
		// Cada conexión a :memory: es una base distinta.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate aplica las migraciones que aún no figuran en schema_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
    name       TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`); err != nil {
		return fmt.Errorf("sqlite: schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var n int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, m.name).Scan(&n); err != nil {
			return fmt.Errorf("sqlite: migración %s: %w", m.name, err)
		}
		if n > 0 {
			continue
		}
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("sqlite: begin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: migración %s: %w", m.name, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`,
			m.name, time.Now().Unix()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: registrar %s: %w", m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("sqlite: commit %s: %w", m.name, err)
		}
	}
	return nil
}

// Ping verifica la conexión.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close cierra la base.
func (s *Store) Close() error { return s.db.Close() }

// execer lo cumplen *sql.DB y *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const insertMovement = `
INSERT INTO stock_movements (id, company_id, site_id, book_id, movement_type, quantity,
    reference_type, reference_id, from_site_id, to_site_id, unit_cost, total_cost, occurred_at, created_by)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func insert(ctx context.Context, ex execer, m entity.MovementRecord) error {
	_, err := ex.ExecContext(ctx, insertMovement,
		m.ID, m.CompanyID, m.SiteID, m.BookID, m.Type.String(), m.Quantity,
		m.ReferenceType, m.ReferenceID, m.FromSiteID, m.ToSiteID,
		nullableDecimal(m.UnitCost), nullableDecimal(m.TotalCost),
		m.Timestamp.UnixNano(), m.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if strings.Contains(err.Error(), "reference_id") {
				return fmt.Errorf("traslado %s ya recibido: %w", m.ReferenceID, domain.ErrDuplicate)
			}
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (s *Store) Append(ctx context.Context, m entity.MovementRecord) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	if err := insert(ctx, s.db, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (s *Store) AppendBatch(ctx context.Context, ms []entity.MovementRecord) error {
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range ms {
		if err := insert(ctx, tx, m); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const selectMovement = `
SELECT id, company_id, site_id, book_id, movement_type, quantity, reference_type, reference_id,
    from_site_id, to_site_id, unit_cost, total_cost, occurred_at, created_by
FROM stock_movements`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (entity.MovementRecord, error) {
	var (
		m                   entity.MovementRecord
		typ                 string
		unitCost, totalCost sql.NullString
		occurredAt          int64
	)
	if err := row.Scan(&m.ID, &m.CompanyID, &m.SiteID, &m.BookID, &typ, &m.Quantity,
		&m.ReferenceType, &m.ReferenceID, &m.FromSiteID, &m.ToSiteID,
		&unitCost, &totalCost, &occurredAt, &m.CreatedBy); err != nil {
		return entity.MovementRecord{}, err
	}
	t, err := entity.ParseMovementType(typ)
	if err != nil {
		return entity.MovementRecord{}, err
	}
	m.Type = t
	if m.UnitCost, err = parseNullDecimal(unitCost); err != nil {
		return entity.MovementRecord{}, fmt.Errorf("unit_cost: %w", err)
	}
	if m.TotalCost, err = parseNullDecimal(totalCost); err != nil {
		return entity.MovementRecord{}, fmt.Errorf("total_cost: %w", err)
	}
	m.Timestamp = time.Unix(0, occurredAt).UTC()
	return m, nil
}

func (s *Store) GetByID(ctx context.Context, companyID, id string) (entity.MovementRecord, error) {
	row := s.db.QueryRowContext(ctx, selectMovement+` WHERE company_id = ? AND id = ?`, companyID, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.MovementRecord{}, domain.ErrNotFound
		}
		return entity.MovementRecord{}, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (s *Store) Query(ctx context.Context, companyID string, f repository.MovementFilter) ([]entity.MovementRecord, error) {
	var list []entity.MovementRecord
	err := s.Scan(ctx, companyID, f, func(m entity.MovementRecord) error {
		list = append(list, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Scan recorre el cursor fila a fila. fn no debe escribir en el mismo Store: con
// MemoryPath hay una única conexión y quedaría bloqueada.
func (s *Store) Scan(ctx context.Context, companyID string, f repository.MovementFilter, fn func(entity.MovementRecord) error) error {
	query := selectMovement + ` WHERE company_id = ?`
	args := []any{companyID}
	if f.SiteID != "" {
		query += ` AND site_id = ?`
		args = append(args, f.SiteID)
	}
	if f.BookID != "" {
		query += ` AND book_id = ?`
		args = append(args, f.BookID)
	}
	if f.From != nil {
		query += ` AND occurred_at >= ?`
		args = append(args, f.From.UnixNano())
	}
	if f.To != nil {
		query += ` AND occurred_at <= ?`
		args = append(args, f.To.UnixNano())
	}
	query += ` ORDER BY occurred_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return fmt.Errorf("scan movement: %w", err)
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return rows.Err()
}

func nullableDecimal(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// isUniqueViolation detecta PRIMARY KEY / UNIQUE fallidos.
func isUniqueViolation(err error) bool {
	var se *sqlitedriver.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
