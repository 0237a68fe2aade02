package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// CatalogRepository define el puerto de metadatos de libros y sedes (solo presentación).
// Los IDs inexistentes se omiten del resultado; no son error.
type CatalogRepository interface {
	BooksByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Book, error)
	SitesByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Site, error)
}
