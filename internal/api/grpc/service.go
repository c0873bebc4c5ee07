package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "matcher.v1.Matcher"

type MatcherServer interface {
	SubmitOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTradesForOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOrderbook(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MatcherServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MatcherServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(MatcherServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// ServiceDesc is the descriptor normally emitted by protoc-gen-go-grpc.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		handler("SubmitOrder", MatcherServer.SubmitOrder),
		handler("GetOrder", MatcherServer.GetOrder),
		handler("GetTradesForOrder", MatcherServer.GetTradesForOrder),
		handler("GetOrderbook", MatcherServer.GetOrderbook),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matcher/v1/matcher.proto",
}

func RegisterMatcherServer(s grpc.ServiceRegistrar, srv MatcherServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// MatcherClient calls the service over an existing connection.
type MatcherClient struct {
	cc grpc.ClientConnInterface
}

func NewMatcherClient(cc grpc.ClientConnInterface) *MatcherClient {
	return &MatcherClient{cc: cc}
}

func (c *MatcherClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MatcherClient) SubmitOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "SubmitOrder", in, opts...)
}

func (c *MatcherClient) GetOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetOrder", in, opts...)
}

func (c *MatcherClient) GetTradesForOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetTradesForOrder", in, opts...)
}

func (c *MatcherClient) GetOrderbook(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "GetOrderbook", in, opts...)
}
