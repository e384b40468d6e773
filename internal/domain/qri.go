package domain

import (
	"time"

	"github.com/Atomized-titan/qri/pkg/qri"
)

// GenerateRequest asks for a new identifier.
type GenerateRequest struct {
	Sign bool `json:"sign"`
}

// GenerateBatchRequest asks for several identifiers at once.
type GenerateBatchRequest struct {
	Count int  `json:"count" binding:"required,min=1"`
	Sign  bool `json:"sign"`
}

// ParseRequest carries a serialized identifier.
type ParseRequest struct {
	QRI string `json:"qri" binding:"required"`
}

// ValidateRequest names the identifier to check and, optionally, the key to
// check its signature with: either a configured key ID or inline PEM text.
type ValidateRequest struct {
	QRI       string `json:"qri" binding:"required"`
	KeyID     string `json:"key_id,omitempty"`
	PublicKey string `json:"public_key,omitempty"`
}

// QRIResponse is the field-level view of an identifier.
type QRIResponse struct {
	QRI       string `json:"qri"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
	Random    string `json:"random"`
	Checksum  string `json:"checksum"`
	Signature string `json:"signature,omitempty"`
	Signed    bool   `json:"signed"`
	KeyID     string `json:"key_id,omitempty"`
}

// NewQRIResponse converts an identifier to its response form.
func NewQRIResponse(id qri.Identifier, keyID string) *QRIResponse {
	return &QRIResponse{
		QRI:       id.String(),
		Version:   id.Version(),
		Timestamp: id.Timestamp(),
		Random:    id.Random(),
		Checksum:  id.Checksum(),
		Signature: id.Signature(),
		Signed:    id.Signed(),
		KeyID:     keyID,
	}
}

// BatchResponse holds generated identifiers.
type BatchResponse struct {
	QRIs []QRIResponse `json:"qris"`
}

// ValidateResponse is the verdict for a validation request. Reason is empty
// when Valid is true.
type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Issuance records an identifier this service generated.
type Issuance struct {
	QRI       string    `json:"qri"`
	Random    string    `json:"random"`
	Timestamp string    `json:"timestamp"`
	Signed    bool      `json:"signed"`
	KeyID     string    `json:"key_id,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
}

// NewIssuance builds the ledger record for id.
func NewIssuance(id qri.Identifier, keyID string, at time.Time) *Issuance {
	return &Issuance{
		QRI:       id.String(),
		Random:    id.Random(),
		Timestamp: id.Timestamp(),
		Signed:    id.Signed(),
		KeyID:     keyID,
		IssuedAt:  at.UTC(),
	}
}
