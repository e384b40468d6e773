package ledger

import (
	"context"
	"errors"

	"github.com/Atomized-titan/qri/internal/domain"
)

var ErrNotFound = errors.New("issuance not found")

// Ledger records identifiers issued by this service, keyed by their random
// segment.
type Ledger interface {
	Record(ctx context.Context, issuance *domain.Issuance) error
	Lookup(ctx context.Context, random string) (*domain.Issuance, error)
	Close() error
}
