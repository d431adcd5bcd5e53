package internalgrpc

import (
	"context"
	"time"

	"github.com/golang/protobuf/ptypes/empty"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	EventsServiceName    = "calendar.Events"
	AssistantServiceName = "calendar.Assistant"
)

// Services use well-known message types only, so descriptors are declared by hand.
var eventsServiceDesc = grpc.ServiceDesc{
	ServiceName: EventsServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListEvents", Handler: listEventsHandler},
		{MethodName: "GetEvent", Handler: getEventHandler},
		{MethodName: "RemoveEvent", Handler: removeEventHandler},
	},
	Streams: []grpc.StreamDesc{},
}

var assistantServiceDesc = grpc.ServiceDesc{
	ServiceName: AssistantServiceName,
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ask", Handler: askHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func listEventsHandler(
	srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(empty.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).ListEvents(ctx, req.(*empty.Empty))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + EventsServiceName + "/ListEvents"}
	return interceptor(ctx, in, info, call)
}

func getEventHandler(
	srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).GetEvent(ctx, req.(*wrapperspb.Int64Value))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + EventsServiceName + "/GetEvent"}
	return interceptor(ctx, in, info, call)
}

func removeEventHandler(
	srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).RemoveEvent(ctx, req.(*wrapperspb.Int64Value))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + EventsServiceName + "/RemoveEvent"}
	return interceptor(ctx, in, info, call)
}

func askHandler(
	srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor,
) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(*Server).Ask(ctx, req.(*wrapperspb.StringValue))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + AssistantServiceName + "/Ask"}
	return interceptor(ctx, in, info, call)
}

func loggingHandler(
	ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	log.WithField("method", info.FullMethod).
		WithField("code", status.Code(err).String()).
		WithField("latency", time.Since(start)).
		Info("grpc request processed")
	return resp, err
}
