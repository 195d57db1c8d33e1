package allocationv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "netalloc.allocation.v1.AllocationService"

const (
	AllocationService_Allocate_FullMethodName       = "/" + ServiceName + "/Allocate"
	AllocationService_EnumeratePaths_FullMethodName = "/" + ServiceName + "/EnumeratePaths"
	AllocationService_GetRun_FullMethodName         = "/" + ServiceName + "/GetRun"
	AllocationService_ListRuns_FullMethodName       = "/" + ServiceName + "/ListRuns"
	AllocationService_DeleteRun_FullMethodName      = "/" + ServiceName + "/DeleteRun"
	AllocationService_Example_FullMethodName        = "/" + ServiceName + "/Example"
)

// AllocationServiceClient клиентский API сервиса
type AllocationServiceClient interface {
	Allocate(ctx context.Context, in *AllocateRequest, opts ...grpc.CallOption) (*AllocateResponse, error)
	EnumeratePaths(ctx context.Context, in *EnumeratePathsRequest, opts ...grpc.CallOption) (*EnumeratePathsResponse, error)
	GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error)
	ListRuns(ctx context.Context, in *ListRunsRequest, opts ...grpc.CallOption) (*ListRunsResponse, error)
	DeleteRun(ctx context.Context, in *DeleteRunRequest, opts ...grpc.CallOption) (*DeleteRunResponse, error)
	Example(ctx context.Context, in *ExampleRequest, opts ...grpc.CallOption) (*ExampleResponse, error)
}

type allocationServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAllocationServiceClient создаёт клиента. Все вызовы идут с JSON кодеком.
func NewAllocationServiceClient(cc grpc.ClientConnInterface) AllocationServiceClient {
	return &allocationServiceClient{cc}
}

func (c *allocationServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *allocationServiceClient) Allocate(ctx context.Context, in *AllocateRequest, opts ...grpc.CallOption) (*AllocateResponse, error) {
	out := new(AllocateResponse)
	if err := c.invoke(ctx, AllocationService_Allocate_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) EnumeratePaths(ctx context.Context, in *EnumeratePathsRequest, opts ...grpc.CallOption) (*EnumeratePathsResponse, error) {
	out := new(EnumeratePathsResponse)
	if err := c.invoke(ctx, AllocationService_EnumeratePaths_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) GetRun(ctx context.Context, in *GetRunRequest, opts ...grpc.CallOption) (*GetRunResponse, error) {
	out := new(GetRunResponse)
	if err := c.invoke(ctx, AllocationService_GetRun_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) ListRuns(ctx context.Context, in *ListRunsRequest, opts ...grpc.CallOption) (*ListRunsResponse, error) {
	out := new(ListRunsResponse)
	if err := c.invoke(ctx, AllocationService_ListRuns_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) DeleteRun(ctx context.Context, in *DeleteRunRequest, opts ...grpc.CallOption) (*DeleteRunResponse, error) {
	out := new(DeleteRunResponse)
	if err := c.invoke(ctx, AllocationService_DeleteRun_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *allocationServiceClient) Example(ctx context.Context, in *ExampleRequest, opts ...grpc.CallOption) (*ExampleResponse, error) {
	out := new(ExampleResponse)
	if err := c.invoke(ctx, AllocationService_Example_FullMethodName, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// AllocationServiceServer серверный API сервиса
type AllocationServiceServer interface {
	Allocate(context.Context, *AllocateRequest) (*AllocateResponse, error)
	EnumeratePaths(context.Context, *EnumeratePathsRequest) (*EnumeratePathsResponse, error)
	GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error)
	ListRuns(context.Context, *ListRunsRequest) (*ListRunsResponse, error)
	DeleteRun(context.Context, *DeleteRunRequest) (*DeleteRunResponse, error)
	Example(context.Context, *ExampleRequest) (*ExampleResponse, error)
	mustEmbedUnimplementedAllocationServiceServer()
}

// UnimplementedAllocationServiceServer встраивается в реализации
type UnimplementedAllocationServiceServer struct{}

func (UnimplementedAllocationServiceServer) Allocate(context.Context, *AllocateRequest) (*AllocateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Allocate not implemented")
}
func (UnimplementedAllocationServiceServer) EnumeratePaths(context.Context, *EnumeratePathsRequest) (*EnumeratePathsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method EnumeratePaths not implemented")
}
func (UnimplementedAllocationServiceServer) GetRun(context.Context, *GetRunRequest) (*GetRunResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRun not implemented")
}
func (UnimplementedAllocationServiceServer) ListRuns(context.Context, *ListRunsRequest) (*ListRunsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRuns not implemented")
}
func (UnimplementedAllocationServiceServer) DeleteRun(context.Context, *DeleteRunRequest) (*DeleteRunResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteRun not implemented")
}
func (UnimplementedAllocationServiceServer) Example(context.Context, *ExampleRequest) (*ExampleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Example not implemented")
}
func (UnimplementedAllocationServiceServer) mustEmbedUnimplementedAllocationServiceServer() {}

// RegisterAllocationServiceServer регистрирует реализацию на сервере
func RegisterAllocationServiceServer(s grpc.ServiceRegistrar, srv AllocationServiceServer) {
	s.RegisterService(&AllocationService_ServiceDesc, srv)
}

// unaryHandler строит обработчик метода с поддержкой интерсепторов
func unaryHandler[Req any, Resp any](
	method string,
	call func(AllocationServiceServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AllocationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AllocationServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// AllocationService_ServiceDesc описание сервиса для grpc.Server
var AllocationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AllocationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Allocate",
			Handler:    unaryHandler(AllocationService_Allocate_FullMethodName, AllocationServiceServer.Allocate),
		},
		{
			MethodName: "EnumeratePaths",
			Handler:    unaryHandler(AllocationService_EnumeratePaths_FullMethodName, AllocationServiceServer.EnumeratePaths),
		},
		{
			MethodName: "GetRun",
			Handler:    unaryHandler(AllocationService_GetRun_FullMethodName, AllocationServiceServer.GetRun),
		},
		{
			MethodName: "ListRuns",
			Handler:    unaryHandler(AllocationService_ListRuns_FullMethodName, AllocationServiceServer.ListRuns),
		},
		{
			MethodName: "DeleteRun",
			Handler:    unaryHandler(AllocationService_DeleteRun_FullMethodName, AllocationServiceServer.DeleteRun),
		},
		{
			MethodName: "Example",
			Handler:    unaryHandler(AllocationService_Example_FullMethodName, AllocationServiceServer.Example),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "netalloc/allocation/v1",
}
