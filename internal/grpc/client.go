package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Atomized-titan/qri/internal/domain"
	pkglog "github.com/Atomized-titan/qri/pkg/log"
)

var _ QRIServer = (*Client)(nil)

// Client calls a remote qri.v1.QRIService.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient connects to target. Extra options are applied after the
// defaults, which are plaintext transport, request ID forwarding and the
// JSON codec.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(pkglog.UnaryClientInterceptor()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for %s: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Generate(ctx context.Context, req *domain.GenerateRequest) (*domain.QRIResponse, error) {
	out := new(domain.QRIResponse)
	if err := c.conn.Invoke(ctx, fullMethod("Generate"), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GenerateBatch(ctx context.Context, req *domain.GenerateBatchRequest) (*domain.BatchResponse, error) {
	out := new(domain.BatchResponse)
	if err := c.conn.Invoke(ctx, fullMethod("GenerateBatch"), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Parse(ctx context.Context, req *domain.ParseRequest) (*domain.QRIResponse, error) {
	out := new(domain.QRIResponse)
	if err := c.conn.Invoke(ctx, fullMethod("Parse"), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Validate(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	out := new(domain.ValidateResponse)
	if err := c.conn.Invoke(ctx, fullMethod("Validate"), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) VerifySignature(ctx context.Context, req *domain.ValidateRequest) (*domain.ValidateResponse, error) {
	out := new(domain.ValidateResponse)
	if err := c.conn.Invoke(ctx, fullMethod("VerifySignature"), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
