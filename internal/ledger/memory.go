package ledger

import (
	"context"
	"sync"

	"github.com/Atomized-titan/qri/internal/domain"
)

// MemoryLedger keeps issuances in process memory. Records do not expire.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]domain.Issuance
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]domain.Issuance)}
}

func (m *MemoryLedger) Record(ctx context.Context, issuance *domain.Issuance) error {
	m.mu.Lock()
	m.records[issuance.Random] = *issuance
	m.mu.Unlock()
	return nil
}

func (m *MemoryLedger) Lookup(ctx context.Context, random string) (*domain.Issuance, error) {
	m.mu.RLock()
	rec, ok := m.records[random]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryLedger) Close() error {
	return nil
}
