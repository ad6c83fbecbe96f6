package tengrpc

import (
	"context"

	"google.golang.org/grpc"
)

// TemporalEngineServer is the service interface a concrete engine
// implements (see Server in server.go). Structurally mirrors the teacher's
// pb.VisualiserServiceServer shape: one method per RPC, context first,
// request pointer second.
type TemporalEngineServer interface {
	Parse(ctx context.Context, req *ParseRequest) (*ParseResponse, error)
	Restrict(ctx context.Context, req *RestrictRequest) (*RestrictResponse, error)
	Synchronize(ctx context.Context, req *SynchronizeRequest) (*SynchronizeResponse, error)
	NearestApproachDistance(ctx context.Context, req *NearestApproachDistanceRequest) (*NearestApproachDistanceResponse, error)
}

func _TemporalEngine_Parse_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ParseRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TemporalEngineServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tempo.TemporalEngine/Parse"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TemporalEngineServer).Parse(ctx, req.(*ParseRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TemporalEngine_Restrict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(RestrictRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TemporalEngineServer).Restrict(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tempo.TemporalEngine/Restrict"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TemporalEngineServer).Restrict(ctx, req.(*RestrictRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TemporalEngine_Synchronize_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SynchronizeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TemporalEngineServer).Synchronize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tempo.TemporalEngine/Synchronize"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TemporalEngineServer).Synchronize(ctx, req.(*SynchronizeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _TemporalEngine_NearestApproachDistance_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(NearestApproachDistanceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TemporalEngineServer).NearestApproachDistance(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/tempo.TemporalEngine/NearestApproachDistance"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TemporalEngineServer).NearestApproachDistance(ctx, req.(*NearestApproachDistanceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-written equivalent of what protoc-gen-go-grpc
// would emit from a tempo.proto service definition.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: "tempo.TemporalEngine",
	HandlerType: (*TemporalEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Parse", Handler: _TemporalEngine_Parse_Handler},
		{MethodName: "Restrict", Handler: _TemporalEngine_Restrict_Handler},
		{MethodName: "Synchronize", Handler: _TemporalEngine_Synchronize_Handler},
		{MethodName: "NearestApproachDistance", Handler: _TemporalEngine_NearestApproachDistance_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "internal/tengrpc/service.go",
}

// RegisterService registers server with grpcServer, mirroring the
// teacher's visualiser.RegisterService helper.
func RegisterService(grpcServer *grpc.Server, server TemporalEngineServer) {
	grpcServer.RegisterService(&ServiceDesc, server)
}

// Client is a thin TemporalEngineServer-shaped wrapper over a
// grpc.ClientConnInterface, forcing the json content-subtype codec this
// package registers.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc for calling the temporal engine service.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Parse(ctx context.Context, req *ParseRequest, opts ...grpc.CallOption) (*ParseResponse, error) {
	out := new(ParseResponse)
	opts = append(opts, grpc.CallContentSubtype(codecName))
	if err := c.cc.Invoke(ctx, "/tempo.TemporalEngine/Parse", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Restrict(ctx context.Context, req *RestrictRequest, opts ...grpc.CallOption) (*RestrictResponse, error) {
	out := new(RestrictResponse)
	opts = append(opts, grpc.CallContentSubtype(codecName))
	if err := c.cc.Invoke(ctx, "/tempo.TemporalEngine/Restrict", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Synchronize(ctx context.Context, req *SynchronizeRequest, opts ...grpc.CallOption) (*SynchronizeResponse, error) {
	out := new(SynchronizeResponse)
	opts = append(opts, grpc.CallContentSubtype(codecName))
	if err := c.cc.Invoke(ctx, "/tempo.TemporalEngine/Synchronize", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) NearestApproachDistance(ctx context.Context, req *NearestApproachDistanceRequest, opts ...grpc.CallOption) (*NearestApproachDistanceResponse, error) {
	out := new(NearestApproachDistanceResponse)
	opts = append(opts, grpc.CallContentSubtype(codecName))
	if err := c.cc.Invoke(ctx, "/tempo.TemporalEngine/NearestApproachDistance", req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
