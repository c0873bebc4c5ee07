package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewServer builds a grpc.Server with logging and panic recovery and
// registers s on it.
func NewServer(s *GRPCServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingUnaryInterceptor, s.recoveryUnaryInterceptor))
	srv := grpc.NewServer(opts...)
	RegisterMatcherServer(srv, s)
	return srv
}

func (s *GRPCServer) loggingUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	fields := []zap.Field{
		zap.String("method", info.FullMethod),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		st, _ := status.FromError(err)
		fields = append(fields, zap.String("grpc_code", st.Code().String()), zap.Error(err))
		if st.Code() == codes.Internal || st.Code() == codes.Unknown {
			s.log.Error("gRPC unary call failed", fields...)
		} else {
			s.log.Info("gRPC unary call rejected", fields...)
		}
	} else {
		s.log.Debug("gRPC unary call completed", fields...)
	}
	return resp, err
}

func (s *GRPCServer) recoveryUnaryInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("gRPC unary call panic recovered",
				zap.String("method", info.FullMethod),
				zap.Any("panic", r),
				zap.Stack("stack"))
			err = status.Errorf(codes.Internal, "internal server error")
		}
	}()
	return handler(ctx, req)
}
