package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// UpsertBook registra o actualiza un libro del catálogo.
func (s *Store) UpsertBook(ctx context.Context, b entity.Book) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO books (id, company_id, isbn, title) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET isbn = excluded.isbn, title = excluded.title`,
		b.ID, b.CompanyID, b.ISBN, b.Title)
	if err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

// UpsertSite registra o actualiza una sede.
func (s *Store) UpsertSite(ctx context.Context, st entity.Site) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sites (id, company_id, name, address) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, address = excluded.address`,
		st.ID, st.CompanyID, st.Name, st.Address)
	if err != nil {
		return fmt.Errorf("upsert site: %w", err)
	}
	return nil
}

func (s *Store) BooksByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Book, error) {
	out := make(map[string]entity.Book, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id, company_id, isbn, title FROM books WHERE company_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, inArgs(companyID, ids)...)
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

func (s *Store) SitesByIDs(ctx context.Context, companyID string, ids []string) (map[string]entity.Site, error) {
	out := make(map[string]entity.Site, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query := `SELECT id, company_id, name, address FROM sites WHERE company_id = ? AND id IN (` + placeholders(len(ids)) + `)`
	rows, err := s.db.QueryContext(ctx, query, inArgs(companyID, ids)...)
	if err != nil {
		return nil, fmt.Errorf("sites by ids: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st entity.Site
		if err := rows.Scan(&st.ID, &st.CompanyID, &st.Name, &st.Address); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		out[st.ID] = st
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func inArgs(companyID string, ids []string) []any {
	args := make([]any, 0, len(ids)+1)
	args = append(args, companyID)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}
