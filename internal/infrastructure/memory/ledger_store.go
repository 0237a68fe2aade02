// Package memory implementa el ledger y el catálogo en proceso. Se usa en tests y con
// LEDGER_DRIVER=memory; no persiste nada entre reinicios.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerStore)(nil)

// LedgerStore ledger solo-anexar protegido por un RWMutex.
type LedgerStore struct {
	mu       sync.RWMutex
	records  []entity.MovementRecord
	byID     map[string]int
	receipts map[receiptKey]string // TransferOut recibido -> ID de su TransferIn
}

// receiptKey identifica el TransferOut que referencia una llegada.
type receiptKey struct {
	companyID  string
	outboundID string
}

// receiptOf devuelve la clave si m es la llegada de un traslado ("Transfer").
func receiptOf(m entity.MovementRecord) (receiptKey, bool) {
	if m.Type != entity.MovementTransferIn || m.ReferenceType != entity.ReferenceTransfer {
		return receiptKey{}, false
	}
	return receiptKey{companyID: m.CompanyID, outboundID: m.ReferenceID}, true
}

// NewLedgerStore crea un ledger vacío.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{byID: make(map[string]int), receipts: make(map[receiptKey]string)}
}

func (s *LedgerStore) Append(_ context.Context, m entity.MovementRecord) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(m, nil); err != nil {
		return "", err
	}
	s.append(m)
	return m.ID, nil
}

func (s *LedgerStore) AppendBatch(_ context.Context, ms []entity.MovementRecord) error {
	for _, m := range ms {
		if err := m.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]entity.MovementRecord, 0, len(ms))
	for _, m := range ms {
		if err := s.checkUnique(m, batch); err != nil {
			return err
		}
		batch = append(batch, m)
	}
	for _, m := range ms {
		s.append(m)
	}
	return nil
}

// checkUnique rechaza IDs repetidos y una segunda llegada del mismo traslado, contra lo ya
// anexado y contra pending (el resto del lote). Requiere s.mu tomado.
func (s *LedgerStore) checkUnique(m entity.MovementRecord, pending []entity.MovementRecord) error {
	if _, exists := s.byID[m.ID]; exists {
		return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
	}
	key, isReceipt := receiptOf(m)
	if isReceipt {
		if _, received := s.receipts[key]; received {
			return fmt.Errorf("traslado %s ya recibido: %w", key.outboundID, domain.ErrDuplicate)
		}
	}
	for _, p := range pending {
		if p.ID == m.ID {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
		if pk, ok := receiptOf(p); isReceipt && ok && pk == key {
			return fmt.Errorf("traslado %s ya recibido: %w", key.outboundID, domain.ErrDuplicate)
		}
	}
	return nil
}

func (s *LedgerStore) append(m entity.MovementRecord) {
	s.byID[m.ID] = len(s.records)
	s.records = append(s.records, m)
	if key, ok := receiptOf(m); ok {
		s.receipts[key] = m.ID
	}
}

func (s *LedgerStore) GetByID(_ context.Context, companyID, id string) (entity.MovementRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok || s.records[i].CompanyID != companyID {
		return entity.MovementRecord{}, domain.ErrNotFound
	}
	return s.records[i], nil
}

func (s *LedgerStore) Query(ctx context.Context, companyID string, f repository.MovementFilter) ([]entity.MovementRecord, error) {
	var out []entity.MovementRecord
	err := s.Scan(ctx, companyID, f, func(m entity.MovementRecord) error {
		out = append(out, m)
		return nil
	})
	return out, err
}

// Scan copia la selección bajo el lock de lectura y llama fn ya sin lock, así fn puede
// anexar sin bloquearse. La instantánea es la del momento de la copia.
func (s *LedgerStore) Scan(ctx context.Context, companyID string, f repository.MovementFilter, fn func(entity.MovementRecord) error) error {
	s.mu.RLock()
	selected := make([]entity.MovementRecord, 0, len(s.records))
	for _, m := range s.records {
		if m.CompanyID == companyID && f.Matches(m) {
			selected = append(selected, m)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})

	for _, m := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
	}
	return nil
}

// Len número de movimientos anexados (todas las empresas).
func (s *LedgerStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
