package htlcv1

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "htlc.v1.HTLCService"

type HTLCServiceServer interface {
	Lock(context.Context, *LockRequest) (*LockResponse, error)
	Claim(context.Context, *ClaimRequest) (*ClaimResponse, error)
	Unlock(context.Context, *UnlockRequest) (*UnlockResponse, error)
	IsAssetLocked(context.Context, *IsAssetLockedRequest) (*IsAssetLockedResponse, error)
	GetHTLC(context.Context, *GetHTLCRequest) (*GetHTLCResponse, error)
	GetHTLCHash(context.Context, *GetHTLCHashRequest) (*GetHTLCHashResponse, error)
	GetHTLCPreimage(context.Context, *GetHTLCPreimageRequest) (*GetHTLCPreimageResponse, error)
	GetClaimReceipts(context.Context, *GetClaimReceiptsRequest) (*GetClaimReceiptsResponse, error)
	RegisterAsset(context.Context, *RegisterAssetRequest) (*RegisterAssetResponse, error)
	GetAsset(context.Context, *GetAssetRequest) (*GetAssetResponse, error)
	GenerateHash(context.Context, *GenerateHashRequest) (*GenerateHashResponse, error)
	GetInfo(context.Context, *GetInfoRequest) (*GetInfoResponse, error)
}

func RegisterHTLCServiceServer(s grpc.ServiceRegistrar, srv HTLCServiceServer) {
	s.RegisterService(&HTLCService_ServiceDesc, srv)
}

// nolint:all
var HTLCService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*HTLCServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Lock",
			Handler:    unaryHandler("Lock", HTLCServiceServer.Lock),
		},
		{
			MethodName: "Claim",
			Handler:    unaryHandler("Claim", HTLCServiceServer.Claim),
		},
		{
			MethodName: "Unlock",
			Handler:    unaryHandler("Unlock", HTLCServiceServer.Unlock),
		},
		{
			MethodName: "IsAssetLocked",
			Handler:    unaryHandler("IsAssetLocked", HTLCServiceServer.IsAssetLocked),
		},
		{
			MethodName: "GetHTLC",
			Handler:    unaryHandler("GetHTLC", HTLCServiceServer.GetHTLC),
		},
		{
			MethodName: "GetHTLCHash",
			Handler:    unaryHandler("GetHTLCHash", HTLCServiceServer.GetHTLCHash),
		},
		{
			MethodName: "GetHTLCPreimage",
			Handler:    unaryHandler("GetHTLCPreimage", HTLCServiceServer.GetHTLCPreimage),
		},
		{
			MethodName: "GetClaimReceipts",
			Handler:    unaryHandler("GetClaimReceipts", HTLCServiceServer.GetClaimReceipts),
		},
		{
			MethodName: "RegisterAsset",
			Handler:    unaryHandler("RegisterAsset", HTLCServiceServer.RegisterAsset),
		},
		{
			MethodName: "GetAsset",
			Handler:    unaryHandler("GetAsset", HTLCServiceServer.GetAsset),
		},
		{
			MethodName: "GenerateHash",
			Handler:    unaryHandler("GenerateHash", HTLCServiceServer.GenerateHash),
		},
		{
			MethodName: "GetInfo",
			Handler:    unaryHandler("GetInfo", HTLCServiceServer.GetInfo),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "htlc/v1/service.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler[Req any, Res any](
	method string, call func(HTLCServiceServer, context.Context, *Req) (*Res, error),
) func(
	srv interface{}, ctx context.Context, dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	return func(
		srv interface{}, ctx context.Context, dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(HTLCServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(HTLCServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type HTLCServiceClient interface {
	Lock(ctx context.Context, in *LockRequest, opts ...grpc.CallOption) (*LockResponse, error)
	Claim(ctx context.Context, in *ClaimRequest, opts ...grpc.CallOption) (*ClaimResponse, error)
	Unlock(ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption) (*UnlockResponse, error)
	IsAssetLocked(ctx context.Context, in *IsAssetLockedRequest, opts ...grpc.CallOption) (*IsAssetLockedResponse, error)
	GetHTLC(ctx context.Context, in *GetHTLCRequest, opts ...grpc.CallOption) (*GetHTLCResponse, error)
	GetHTLCHash(ctx context.Context, in *GetHTLCHashRequest, opts ...grpc.CallOption) (*GetHTLCHashResponse, error)
	GetHTLCPreimage(ctx context.Context, in *GetHTLCPreimageRequest, opts ...grpc.CallOption) (*GetHTLCPreimageResponse, error)
	GetClaimReceipts(ctx context.Context, in *GetClaimReceiptsRequest, opts ...grpc.CallOption) (*GetClaimReceiptsResponse, error)
	RegisterAsset(ctx context.Context, in *RegisterAssetRequest, opts ...grpc.CallOption) (*RegisterAssetResponse, error)
	GetAsset(ctx context.Context, in *GetAssetRequest, opts ...grpc.CallOption) (*GetAssetResponse, error)
	GenerateHash(ctx context.Context, in *GenerateHashRequest, opts ...grpc.CallOption) (*GenerateHashResponse, error)
	GetInfo(ctx context.Context, in *GetInfoRequest, opts ...grpc.CallOption) (*GetInfoResponse, error)
}

type htlcServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHTLCServiceClient(cc grpc.ClientConnInterface) HTLCServiceClient {
	return &htlcServiceClient{cc}
}

func invoke[Res any](
	ctx context.Context, cc grpc.ClientConnInterface, method string,
	in interface{}, opts []grpc.CallOption,
) (*Res, error) {
	out := new(Res)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *htlcServiceClient) Lock(
	ctx context.Context, in *LockRequest, opts ...grpc.CallOption,
) (*LockResponse, error) {
	return invoke[LockResponse](ctx, c.cc, "Lock", in, opts)
}

func (c *htlcServiceClient) Claim(
	ctx context.Context, in *ClaimRequest, opts ...grpc.CallOption,
) (*ClaimResponse, error) {
	return invoke[ClaimResponse](ctx, c.cc, "Claim", in, opts)
}

func (c *htlcServiceClient) Unlock(
	ctx context.Context, in *UnlockRequest, opts ...grpc.CallOption,
) (*UnlockResponse, error) {
	return invoke[UnlockResponse](ctx, c.cc, "Unlock", in, opts)
}

func (c *htlcServiceClient) IsAssetLocked(
	ctx context.Context, in *IsAssetLockedRequest, opts ...grpc.CallOption,
) (*IsAssetLockedResponse, error) {
	return invoke[IsAssetLockedResponse](ctx, c.cc, "IsAssetLocked", in, opts)
}

func (c *htlcServiceClient) GetHTLC(
	ctx context.Context, in *GetHTLCRequest, opts ...grpc.CallOption,
) (*GetHTLCResponse, error) {
	return invoke[GetHTLCResponse](ctx, c.cc, "GetHTLC", in, opts)
}

func (c *htlcServiceClient) GetHTLCHash(
	ctx context.Context, in *GetHTLCHashRequest, opts ...grpc.CallOption,
) (*GetHTLCHashResponse, error) {
	return invoke[GetHTLCHashResponse](ctx, c.cc, "GetHTLCHash", in, opts)
}

func (c *htlcServiceClient) GetHTLCPreimage(
	ctx context.Context, in *GetHTLCPreimageRequest, opts ...grpc.CallOption,
) (*GetHTLCPreimageResponse, error) {
	return invoke[GetHTLCPreimageResponse](ctx, c.cc, "GetHTLCPreimage", in, opts)
}

func (c *htlcServiceClient) GetClaimReceipts(
	ctx context.Context, in *GetClaimReceiptsRequest, opts ...grpc.CallOption,
) (*GetClaimReceiptsResponse, error) {
	return invoke[GetClaimReceiptsResponse](ctx, c.cc, "GetClaimReceipts", in, opts)
}

func (c *htlcServiceClient) RegisterAsset(
	ctx context.Context, in *RegisterAssetRequest, opts ...grpc.CallOption,
) (*RegisterAssetResponse, error) {
	return invoke[RegisterAssetResponse](ctx, c.cc, "RegisterAsset", in, opts)
}

func (c *htlcServiceClient) GetAsset(
	ctx context.Context, in *GetAssetRequest, opts ...grpc.CallOption,
) (*GetAssetResponse, error) {
	return invoke[GetAssetResponse](ctx, c.cc, "GetAsset", in, opts)
}

func (c *htlcServiceClient) GenerateHash(
	ctx context.Context, in *GenerateHashRequest, opts ...grpc.CallOption,
) (*GenerateHashResponse, error) {
	return invoke[GenerateHashResponse](ctx, c.cc, "GenerateHash", in, opts)
}

func (c *htlcServiceClient) GetInfo(
	ctx context.Context, in *GetInfoRequest, opts ...grpc.CallOption,
) (*GetInfoResponse, error) {
	return invoke[GetInfoResponse](ctx, c.cc, "GetInfo", in, opts)
}
