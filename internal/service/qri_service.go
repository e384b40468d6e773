package service

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Atomized-titan/qri/internal/audit"
	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/internal/keys"
	"github.com/Atomized-titan/qri/internal/ledger"
	"github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/pubsub"
	"github.com/Atomized-titan/qri/pkg/qri"
)

// recordConcurrency bounds parallel ledger writes for a batch.
const recordConcurrency = 8

var (
	ErrSigningUnavailable = errors.New("signing is unavailable")
	ErrKeyNotFound        = errors.New("public key not found")
	ErrNotIssued          = errors.New("qri was not issued by this service")
	ErrBatchSize          = errors.New("batch size out of range")
)

// qriServiceImpl implements QRIService interface.
type qriServiceImpl struct {
	generator *qri.Generator
	validator qri.Validator
	keys      KeySource
	ledger    ledger.Ledger
	publisher pubsub.Publisher
	channel   string
	batchMax  int
	now       func() time.Time
	lookups   singleflight.Group
}

// NewQRIService creates a new identifier service. Every generated identifier
// is recorded in led and announced on channel through pub.
func NewQRIService(gen *qri.Generator, validator qri.Validator, ks KeySource, led ledger.Ledger, pub pubsub.Publisher, channel string, batchMax int) QRIService {
	return &qriServiceImpl{
		generator: gen,
		validator: validator,
		keys:      ks,
		ledger:    led,
		publisher: pub,
		channel:   channel,
		batchMax:  batchMax,
		now:       time.Now,
	}
}

// Generate creates one identifier, signed with the configured key on request.
func (s *qriServiceImpl) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.QRIResponse, error) {
	signer, keyID, err := s.signer(ctx, req.Sign)
	if err != nil {
		return nil, err
	}

	var id qri.Identifier
	if signer != nil {
		id, err = s.generator.GenerateSigned(signer)
	} else {
		id, err = s.generator.Generate(qri.Options{})
	}
	if err != nil {
		return nil, s.generateError(ctx, err)
	}

	issuance := domain.NewIssuance(id, keyID, s.now())
	if err := s.record(ctx, issuance); err != nil {
		return nil, err
	}
	s.announce(ctx, id, issuance)
	audit.Log(ctx, audit.ActionGenerate, id.String(), keyID, "qri generated")

	return domain.NewQRIResponse(id, keyID), nil
}

// GenerateBatch creates req.Count identifiers. Every issuance is recorded
// before any event is published, so a failed ledger write publishes nothing.
// Records written before the failure stay in the ledger.
func (s *qriServiceImpl) GenerateBatch(ctx context.Context, req *domain.GenerateBatchRequest) (*domain.BatchResponse, error) {
	if req.Count < 1 || (s.batchMax > 0 && req.Count > s.batchMax) {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrBatchSize, req.Count, s.batchMax)
	}

	signer, keyID, err := s.signer(ctx, req.Sign)
	if err != nil {
		return nil, err
	}

	ids, err := s.generator.GenerateBatch(req.Count, signer)
	if err != nil {
		return nil, s.generateError(ctx, err)
	}

	resp := &domain.BatchResponse{QRIs: make([]domain.QRIResponse, len(ids))}
	issuances := make([]*domain.Issuance, len(ids))
	issuedAt := s.now()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(recordConcurrency)
	for i, id := range ids {
		resp.QRIs[i] = *domain.NewQRIResponse(id, keyID)
		issuances[i] = domain.NewIssuance(id, keyID, issuedAt)
		g.Go(func() error {
			return s.record(gCtx, issuances[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		s.announce(ctx, id, issuances[i])
	}
	audit.LogBatch(ctx, audit.ActionGenerate, len(ids), keyID, "qri batch generated")

	return resp, nil
}

// Parse splits a serialized identifier into its fields without validating it.
func (s *qriServiceImpl) Parse(ctx context.Context, req *domain.ParseRequest) (*domain.QRIResponse, error) {
	id, err := qri.Parse(req.QRI)
	if err != nil {
		return nil, err
	}
	return domain.NewQRIResponse(id, ""), nil
}

// Validate checks fields and checksum and, when a key is named or supplied,
// the signature. A failed check is a verdict, not an error.
func (s *qriServiceImpl) Validate(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	id, err := qri.Parse(req.QRI)
	if err != nil {
		return nil, err
	}

	var verr error
	if req.KeyID != "" {
		pub, err := s.publicKey(req.KeyID)
		if err != nil {
			return nil, err
		}
		verr = s.validator.Validate(id, pub)
	} else {
		verr = s.validator.ValidatePEM(id, req.PublicKey)
	}

	return s.verdict(ctx, audit.ActionValidate, id, req.KeyID, verr), nil
}

// VerifySignature checks only the signature. A key is required.
func (s *qriServiceImpl) VerifySignature(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	if req.KeyID == "" && req.PublicKey == "" {
		return nil, qri.ErrPublicKeyRequired
	}

	id, err := qri.Parse(req.QRI)
	if err != nil {
		return nil, err
	}

	var pub crypto.PublicKey
	if req.KeyID != "" {
		if pub, err = s.publicKey(req.KeyID); err != nil {
			return nil, err
		}
	} else if pub, err = qri.ParsePublicKey(req.PublicKey); err != nil {
		return s.verdict(ctx, audit.ActionVerify, id, "", err), nil
	}

	return s.verdict(ctx, audit.ActionVerify, id, req.KeyID, qri.VerifyWith(pub, id.Payload(), id.Signature())), nil
}

// Issued returns the ledger record of an identifier this service generated.
func (s *qriServiceImpl) Issued(ctx context.Context, text string) (*domain.Issuance, error) {
	id, err := qri.Parse(text)
	if err != nil {
		return nil, err
	}

	// The shared lookup must outlive any single caller's cancellation.
	lookupCtx := context.WithoutCancel(ctx)
	result, err, _ := s.lookups.Do(id.Random(), func() (interface{}, error) {
		return s.ledger.Lookup(lookupCtx, id.Random())
	})
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return nil, ErrNotIssued
		}
		return nil, err
	}
	rec := result.(*domain.Issuance)
	// The random segment is the ledger key; the rest must match too.
	if rec.QRI != id.String() {
		return nil, ErrNotIssued
	}
	return rec, nil
}

func (s *qriServiceImpl) signer(ctx context.Context, sign bool) (crypto.Signer, string, error) {
	if !sign {
		return nil, "", nil
	}
	signer, keyID, err := s.keys.Signer()
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Msg("signing requested without a signing key")
		return nil, "", fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return signer, keyID, nil
}

func (s *qriServiceImpl) publicKey(id string) (crypto.PublicKey, error) {
	pub, err := s.keys.PublicKey(id)
	if err != nil {
		if errors.Is(err, keys.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
		}
		return nil, err
	}
	return pub, nil
}

// generateError classifies a generator failure. Signing failures are
// reported as ErrSigningUnavailable; anything else is an entropy or clock
// fault.
func (s *qriServiceImpl) generateError(ctx context.Context, err error) error {
	l := log.Ctx(ctx)
	if errors.Is(err, qri.ErrSigningFailed) || errors.Is(err, qri.ErrSignatureLength) || errors.Is(err, qri.ErrUnsupportedKey) {
		l.Warn().Err(err).Msg("failed to sign qri")
		return fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	l.Error().Err(err).Msg("failed to generate qri")
	return err
}

func (s *qriServiceImpl) record(ctx context.Context, issuance *domain.Issuance) error {
	if err := s.ledger.Record(ctx, issuance); err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldQRI, issuance.QRI).Msg("failed to record issuance")
		return err
	}
	return nil
}

// announce publishes the issued event. Publish failures are logged only.
func (s *qriServiceImpl) announce(ctx context.Context, id qri.Identifier, issuance *domain.Issuance) {
	l := log.Ctx(ctx)
	event, err := pubsub.NewEvent(pubsub.EventIssued, id.Random(), pubsub.IssuedPayload{
		QRI:       issuance.QRI,
		Timestamp: issuance.Timestamp,
		Signed:    issuance.Signed,
		KeyID:     issuance.KeyID,
	})
	if err != nil {
		l.Warn().Err(err).Msg("failed to build issued event")
		return
	}
	if err := s.publisher.Publish(ctx, s.channel, event); err != nil {
		l.Warn().Err(err).Str(log.FieldQRI, issuance.QRI).Msg("failed to publish issued event")
	}
}

func (s *qriServiceImpl) verdict(ctx context.Context, action string, id qri.Identifier, keyID string, err error) *domain.ValidateResponse {
	if err != nil {
		l := log.Ctx(ctx)
		l.Warn().Err(err).Str(log.FieldQRI, id.String()).Str(audit.FieldAction, action).Msg("qri rejected")
		audit.LogResult(ctx, action, id.String(), keyID, false, err.Error())
		return &domain.ValidateResponse{Valid: false, Reason: err.Error()}
	}
	audit.LogResult(ctx, action, id.String(), keyID, true, "")
	return &domain.ValidateResponse{Valid: true}
}
