// Package riskgatev1 declares the riskgate.v1.RiskService gRPC contract.
// Payloads are google.protobuf.Struct so that no generated message types
// are needed; the field layout is fixed by the conversion helpers in this
// package.
package riskgatev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "riskgate.v1.RiskService"

	ClassifyFullMethod     = "/riskgate.v1.RiskService/Classify"
	RuleBaseInfoFullMethod = "/riskgate.v1.RiskService/RuleBaseInfo"
)

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	// Classify takes a profile Struct and returns a result Struct.
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// RuleBaseInfo describes the active rule base.
	RuleBaseInfo(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterRiskServiceServer registers srv on s.
func RegisterRiskServiceServer(s grpc.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&RiskService_ServiceDesc, srv)
}

// RiskService_ServiceDesc is the grpc.ServiceDesc for RiskService.
var RiskService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Classify", Handler: classifyHandler},
		{MethodName: "RuleBaseInfo", Handler: ruleBaseInfoHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "riskgate/v1/risk.proto",
}

func classifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).Classify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ClassifyFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).Classify(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func ruleBaseInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RiskServiceServer).RuleBaseInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: RuleBaseInfoFullMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RiskServiceServer).RuleBaseInfo(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// RiskServiceClient is the client API for RiskService.
type RiskServiceClient interface {
	Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RuleBaseInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type riskServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRiskServiceClient wraps a connection.
func NewRiskServiceClient(cc grpc.ClientConnInterface) RiskServiceClient {
	return &riskServiceClient{cc}
}

func (c *riskServiceClient) Classify(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClassifyFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *riskServiceClient) RuleBaseInfo(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RuleBaseInfoFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
