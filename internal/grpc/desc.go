package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/Atomized-titan/qri/internal/domain"
)

const serviceName = "qri.v1.QRIService"

// QRIServer is the server API for qri.v1.QRIService.
type QRIServer interface {
	Generate(context.Context, *domain.GenerateRequest) (*domain.QRIResponse, error)
	GenerateBatch(context.Context, *domain.GenerateBatchRequest) (*domain.BatchResponse, error)
	Parse(context.Context, *domain.ParseRequest) (*domain.QRIResponse, error)
	Validate(context.Context, *domain.ValidateRequest) (*domain.ValidateResponse, error)
	VerifySignature(context.Context, *domain.ValidateRequest) (*domain.ValidateResponse, error)
}

func fullMethod(name string) string {
	return "/" + serviceName + "/" + name
}

// unaryHandler adapts a typed server method to the grpc method handler
// signature.
func unaryHandler[Req, Resp any](name string, call func(QRIServer, context.Context, *Req) (*Resp, error)) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(QRIServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(name),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(QRIServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the grpc.ServiceDesc for qri.v1.QRIService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*QRIServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Generate", Handler: unaryHandler("Generate", QRIServer.Generate)},
		{MethodName: "GenerateBatch", Handler: unaryHandler("GenerateBatch", QRIServer.GenerateBatch)},
		{MethodName: "Parse", Handler: unaryHandler("Parse", QRIServer.Parse)},
		{MethodName: "Validate", Handler: unaryHandler("Validate", QRIServer.Validate)},
		{MethodName: "VerifySignature", Handler: unaryHandler("VerifySignature", QRIServer.VerifySignature)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "qri/v1/qri.proto",
}

// RegisterQRIServer registers srv on s.
func RegisterQRIServer(s grpc.ServiceRegistrar, srv QRIServer) {
	s.RegisterService(&ServiceDesc, srv)
}
