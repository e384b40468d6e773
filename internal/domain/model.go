package domain

import (
	"time"
)

// IssuanceModel is the GORM model for the issuance ledger. Rows are keyed by
// the random segment, which is unique with overwhelming probability.
type IssuanceModel struct {
	Random    string    `gorm:"type:varchar(32);primaryKey"`
	QRI       string    `gorm:"type:text;not null"`
	Timestamp string    `gorm:"type:varchar(17);index;not null"`
	Signed    bool      `gorm:"not null;default:false"`
	KeyID     string    `gorm:"type:varchar(64)"`
	IssuedAt  time.Time `gorm:"index;not null"`
}

// TableName specifies the table name for IssuanceModel.
func (IssuanceModel) TableName() string {
	return "qri_issuances"
}

// ToDomain converts IssuanceModel to domain Issuance.
func (m *IssuanceModel) ToDomain() *Issuance {
	return &Issuance{
		QRI:       m.QRI,
		Random:    m.Random,
		Timestamp: m.Timestamp,
		Signed:    m.Signed,
		KeyID:     m.KeyID,
		IssuedAt:  m.IssuedAt,
	}
}

// IssuanceToModel converts domain Issuance to IssuanceModel.
func IssuanceToModel(i *Issuance) *IssuanceModel {
	return &IssuanceModel{
		Random:    i.Random,
		QRI:       i.QRI,
		Timestamp: i.Timestamp,
		Signed:    i.Signed,
		KeyID:     i.KeyID,
		IssuedAt:  i.IssuedAt,
	}
}
