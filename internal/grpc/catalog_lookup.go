// internal/grpc/catalog_lookup.go
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The catalog.CatalogLookup service is described with protobuf well-known types, so
// it needs no generated message code:
//
//	service CatalogLookup {
//	  rpc GetTitleInfo(google.protobuf.Int64Value) returns (google.protobuf.Struct);
//	  rpc CheckTitleExists(google.protobuf.Int64Value) returns (google.protobuf.BoolValue);
//	}
const (
	ServiceName            = "catalog.CatalogLookup"
	GetTitleInfoMethod     = "/catalog.CatalogLookup/GetTitleInfo"
	CheckTitleExistsMethod = "/catalog.CatalogLookup/CheckTitleExists"
)

// CatalogLookupServer is the server API for the catalog.CatalogLookup service.
type CatalogLookupServer interface {
	GetTitleInfo(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CheckTitleExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

func RegisterCatalogLookupServer(s grpc.ServiceRegistrar, srv CatalogLookupServer) {
	s.RegisterService(&CatalogLookupServiceDesc, srv)
}

func getTitleInfoHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogLookupServer).GetTitleInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTitleInfoMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogLookupServer).GetTitleInfo(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func checkTitleExistsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogLookupServer).CheckTitleExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckTitleExistsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogLookupServer).CheckTitleExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogLookupServiceDesc is the grpc.ServiceDesc for the catalog.CatalogLookup service.
var CatalogLookupServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogLookupServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetTitleInfo", Handler: getTitleInfoHandler},
		{MethodName: "CheckTitleExists", Handler: checkTitleExistsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/catalog_lookup.proto",
}
