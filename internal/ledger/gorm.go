package ledger

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/pkg/database"
	"github.com/Atomized-titan/qri/pkg/log"
)

// GormLedger stores issuances in a SQL table.
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger migrates the issuance table and wraps db.
func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if err := database.AutoMigrate(db, &domain.IssuanceModel{}); err != nil {
		return nil, err
	}
	return &GormLedger{db: db}, nil
}

func (g *GormLedger) Record(ctx context.Context, issuance *domain.Issuance) error {
	l := log.Ctx(ctx)

	model := domain.IssuanceToModel(issuance)
	result := g.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldQRI, issuance.QRI).Msg("failed to record issuance in db")
		return result.Error
	}
	l.Debug().Str(log.FieldQRI, issuance.QRI).Msg("issuance recorded in db")
	return nil
}

func (g *GormLedger) Lookup(ctx context.Context, random string) (*domain.Issuance, error) {
	l := log.Ctx(ctx)

	var model domain.IssuanceModel
	result := g.db.WithContext(ctx).First(&model, "random = ?", random)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error().Err(result.Error).Str("random", random).Msg("failed to look up issuance")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

func (g *GormLedger) Close() error {
	return database.Close(g.db)
}
