package internalgrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

func RegisterEventsServer(s *grpc.Server, srv EventsServer) {
	s.RegisterService(&eventsServiceDesc, srv)
}

type unaryCall func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error)

func unaryHandler(name string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(
			srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
		) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EventsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodName(name)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(EventsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var eventsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EventsServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListByMonth", func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error) {
			return srv.ListByMonth(ctx, r)
		}),
		unaryHandler("GetEvent", func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error) {
			return srv.GetEvent(ctx, r)
		}),
		unaryHandler("CreateEvent", func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error) {
			return srv.CreateEvent(ctx, r)
		}),
		unaryHandler("UpdateEvent", func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error) {
			return srv.UpdateEvent(ctx, r)
		}),
		unaryHandler("DeleteEvent", func(srv EventsServer, ctx context.Context, r *structpb.Struct) (interface{}, error) {
			return srv.DeleteEvent(ctx, r)
		}),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "calendar/events",
}
