package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.CatalogRepository = (*CatalogStore)(nil)

// CatalogStore catálogo de libros y sedes en memoria.
type CatalogStore struct {
	mu    sync.RWMutex
	books map[string]entity.Book
	sites map[string]entity.Site
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		books: make(map[string]entity.Book),
		sites: make(map[string]entity.Site),
	}
}

// PutBook registra o reemplaza un libro.
func (s *CatalogStore) PutBook(b entity.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.books[b.ID] = b
}

// PutSite registra o reemplaza una sede.
func (s *CatalogStore) PutSite(st entity.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites[st.ID] = st
}

func (s *CatalogStore) BooksByIDs(_ context.Context, companyID string, ids []string) (map[string]entity.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entity.Book, len(ids))
	for _, id := range ids {
		if b, ok := s.books[id]; ok && b.CompanyID == companyID {
			out[id] = b
		}
	}
	return out, nil
}

func (s *CatalogStore) SitesByIDs(_ context.Context, companyID string, ids []string) (map[string]entity.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]entity.Site, len(ids))
	for _, id := range ids {
		if st, ok := s.sites[id]; ok && st.CompanyID == companyID {
			out[id] = st
		}
	}
	return out, nil
}
