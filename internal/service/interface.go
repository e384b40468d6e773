package service

import (
	"context"
	"crypto"

	"github.com/Atomized-titan/qri/internal/domain"
)

// QRIService defines the interface for identifier business logic.
type QRIService interface {
	Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.QRIResponse, error)
	GenerateBatch(ctx context.Context, req *domain.GenerateBatchRequest) (*domain.BatchResponse, error)
	Parse(ctx context.Context, req *domain.ParseRequest) (*domain.QRIResponse, error)
	Validate(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error)
	VerifySignature(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error)
	Issued(ctx context.Context, text string) (*domain.Issuance, error)
}

// KeySource resolves signing and verification keys.
type KeySource interface {
	Signer() (crypto.Signer, string, error)
	PublicKey(id string) (crypto.PublicKey, error)
}
