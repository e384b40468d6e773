package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Atomized-titan/qri/internal/domain"
	"github.com/Atomized-titan/qri/internal/service"
	pkglog "github.com/Atomized-titan/qri/pkg/log"
	"github.com/Atomized-titan/qri/pkg/qri"
)

type qriServer struct {
	svc service.QRIService
}

// NewServer wraps svc as a QRIServer.
func NewServer(svc service.QRIService) QRIServer {
	return &qriServer{svc: svc}
}

func (s *qriServer) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.QRIResponse, error) {
	resp, err := s.svc.Generate(ctx, req)
	return resp, toStatus(err)
}

func (s *qriServer) GenerateBatch(ctx context.Context, req *domain.GenerateBatchRequest) (*domain.BatchResponse, error) {
	resp, err := s.svc.GenerateBatch(ctx, req)
	return resp, toStatus(err)
}

func (s *qriServer) Parse(ctx context.Context, req *domain.ParseRequest) (*domain.QRIResponse, error) {
	resp, err := s.svc.Parse(ctx, req)
	return resp, toStatus(err)
}

func (s *qriServer) Validate(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	resp, err := s.svc.Validate(ctx, req)
	return resp, toStatus(err)
}

func (s *qriServer) VerifySignature(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	resp, err := s.svc.VerifySignature(ctx, req)
	return resp, toStatus(err)
}

func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, qri.ErrInvalidFormat),
		errors.Is(err, qri.ErrPublicKeyRequired),
		errors.Is(err, service.ErrBatchSize):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrKeyNotFound),
		errors.Is(err, service.ErrNotIssued):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrSigningUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// NewGRPCServer creates a server with the logging interceptor and the
// qri service registered.
func NewGRPCServer(svc service.QRIService, logger zerolog.Logger) *grpc.Server {
	s := grpc.NewServer(
		grpc.UnaryInterceptor(pkglog.UnaryServerInterceptor(logger)),
	)
	RegisterQRIServer(s, NewServer(svc))
	return s
}

// StartGRPCServer creates and starts the gRPC server in a background goroutine.
func StartGRPCServer(addr string, svc service.QRIService, logger zerolog.Logger) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s := NewGRPCServer(svc, logger)

	go func() {
		logger.Info().Str("addr", addr).Msg("grpc server listening")
		if err := s.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("grpc server error")
		}
	}()

	return s, nil
}
