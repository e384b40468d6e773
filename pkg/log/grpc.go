package log

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const metadataKeyRequestID = "x-request-id"

// UnaryServerInterceptor returns a gRPC unary server interceptor that
// creates a child logger with request metadata and injects it into context.
func UnaryServerInterceptor(logger zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()

		reqID := requestIDFromMD(ctx)
		child := logger.With().
			Str(FieldRequestID, reqID).
			Str(FieldGRPCMethod, info.FullMethod).
			Logger()

		ctx = WithRequestID(WithLogger(ctx, child), reqID)

		resp, err := handler(ctx, req)

		code := status.Code(err)
		child.Info().
			Str(FieldGRPCCode, code.String()).
			Float64(FieldLatency, float64(time.Since(start).Milliseconds())).
			Err(err).
			Msg("unary call completed")

		return resp, err
	}
}

// UnaryClientInterceptor forwards the request ID stored in the context as
// outgoing metadata, so server logs can be correlated with the caller.
func UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		if reqID := RequestID(ctx); reqID != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, metadataKeyRequestID, reqID)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func requestIDFromMD(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		vals := md.Get(metadataKeyRequestID)
		if len(vals) > 0 && vals[0] != "" {
			return vals[0]
		}
	}
	return uuid.New().String()
}
