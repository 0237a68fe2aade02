package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogRepo)(nil)

// CatalogRepo libros y sedes sobre PostgreSQL.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository construye el adaptador del catálogo.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// BooksByIDs obtiene los libros existentes entre ids.
func (r *CatalogRepo) BooksByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Book, error) {
	out := make(map[string]entity.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, isbn, title FROM books WHERE company_id = $1 AND id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("books by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.ISBN, &b.Title); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out[b.ID] = b
	}
	return out, rows.Err()
}

// SitesByIDs obtiene las sedes existentes entre ids.
func (r *CatalogRepo) SitesByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Site, error) {
	out := make(map[string]entity.Site, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, company_id, name, address FROM sites WHERE company_id = $1 AND id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("sites by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s entity.Site
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Address); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}
