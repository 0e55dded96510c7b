package interceptors

import (
	"context"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// recoverHandler turns a panic raised while serving method into an Internal
// status. Only the method name reaches the client; the stack goes to the log.
func recoverHandler(method string, err *error) {
	r := recover()
	if r == nil {
		return
	}
	log.WithField("method", method).Errorf("recovered from panic: %v", r)
	log.Trace(string(debug.Stack()))
	*err = status.Errorf(codes.Internal, "internal error in %s", method)
}

func unaryPanicRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req interface{},
		info *grpc.UnaryServerInfo, handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer recoverHandler(info.FullMethod, &err)
		return handler(ctx, req)
	}
}

func streamPanicRecoveryInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{}, stream grpc.ServerStream,
		info *grpc.StreamServerInfo, handler grpc.StreamHandler,
	) (err error) {
		defer recoverHandler(info.FullMethod, &err)
		return handler(srv, stream)
	}
}
