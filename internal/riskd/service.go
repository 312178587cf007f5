package riskd

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ppiankov/ztbench/internal/risk"
)

// scorerService is the server side of risk.ScoreMethod.
type scorerService interface {
	Score(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var scorerServiceDesc = grpc.ServiceDesc{
	ServiceName: risk.ServiceName,
	HandlerType: (*scorerService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Score", Handler: scoreHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ztbench/risk/v1/risk.proto",
}

func scoreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(scorerService).Score(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: risk.ScoreMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(scorerService).Score(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
