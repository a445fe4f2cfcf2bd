package grpc_controller

import (
	"context"

	"github.com/horockey/hydrakv/internal/proto/hydrakvpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// kvServiceHandler is implemented by GrpcController. grpc checks it on registration.
type kvServiceHandler interface {
	handle(ctx context.Context, m hydrakvpb.Method, req hydrakvpb.Message) (hydrakvpb.Message, error)
}

func newServiceDesc() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: hydrakvpb.ServiceName,
		HandlerType: (*kvServiceHandler)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    hydrakvpb.File().Path(),
	}

	for _, m := range hydrakvpb.Methods {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: m.Name,
			Handler:    unaryHandler(m),
		})
	}

	return desc
}

func unaryHandler(m hydrakvpb.Method) grpc.MethodHandler {
	return func(
		srv any,
		ctx context.Context,
		dec func(any) error,
		interceptor grpc.UnaryServerInterceptor,
	) (any, error) {
		req := hydrakvpb.New(m.Input)
		if err := dec(req); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding %s: %s", m.Input, err)
		}

		h := srv.(kvServiceHandler)
		handler := func(ctx context.Context, req any) (any, error) {
			return h.handle(ctx, m, req.(hydrakvpb.Message))
		}
		if interceptor == nil {
			return handler(ctx, req)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: m.FullName(),
		}
		return interceptor(ctx, req, info, handler)
	}
}
