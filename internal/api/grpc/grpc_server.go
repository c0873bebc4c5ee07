package grpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/olyamironova/mev-matcher/internal/api/dto"
	"github.com/olyamironova/mev-matcher/internal/core"
	"github.com/olyamironova/mev-matcher/internal/domain"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCServer exposes the engine over gRPC. Requests and responses are
// google.protobuf.Struct values carrying the same JSON documents as the
// HTTP API.
type GRPCServer struct {
	Eng *core.Engine
	log *zap.Logger
}

var _ MatcherServer = (*GRPCServer)(nil)

func NewGRPCServer(eng *core.Engine, log *zap.Logger) *GRPCServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &GRPCServer{Eng: eng, log: log}
}

type getOrderRequest struct {
	OrderID string `json:"order_id"`
}

type getOrderbookRequest struct {
	Depth int `json:"depth"`
}

func (s *GRPCServer) SubmitOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req dto.SubmitOrderRequest
	if err := requireDecimalStrings(in, "price", "quantity"); err != nil {
		return nil, err
	}
	if err := fromStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	res, err := s.Eng.Submit(ctx, req.ToDomain())
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(dto.FromSubmitResult(res))
}

func (s *GRPCServer) GetOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getOrderRequest
	if err := fromStruct(in, &req); err != nil || req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	o, err := s.Eng.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(dto.GetOrderResponse{Order: dto.FromOrder(o)})
}

func (s *GRPCServer) GetTradesForOrder(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getOrderRequest
	if err := fromStruct(in, &req); err != nil || req.OrderID == "" {
		return nil, status.Error(codes.InvalidArgument, "order_id is required")
	}
	trades, err := s.Eng.GetTradesForOrder(ctx, req.OrderID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(dto.GetTradesResponse{OrderID: req.OrderID, Trades: dto.FromTrades(trades)})
}

func (s *GRPCServer) GetOrderbook(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req getOrderbookRequest
	if err := fromStruct(in, &req); err != nil || req.Depth < 0 {
		return nil, status.Error(codes.InvalidArgument, "depth must be a non-negative integer")
	}
	return toStruct(dto.FromSnapshot(s.Eng.Orderbook(req.Depth)))
}

func toStatus(err error) error {
	switch {
	case domain.IsValidation(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, core.ErrEngineClosed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// requireDecimalStrings rejects numeric values for the named fields: a Struct
// number is a float64 and cannot carry an exact decimal.
func requireDecimalStrings(in *structpb.Struct, names ...string) error {
	for _, name := range names {
		v, ok := in.GetFields()[name]
		if !ok {
			continue
		}
		switch v.GetKind().(type) {
		case *structpb.Value_StringValue, *structpb.Value_NullValue:
		default:
			return status.Errorf(codes.InvalidArgument, "%s must be a decimal string", name)
		}
	}
	return nil
}

func fromStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
