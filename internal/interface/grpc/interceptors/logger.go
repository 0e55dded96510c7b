package interceptors

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func unaryLogger(
	ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	entry := log.WithField("elapsed", time.Since(start).String())
	if err != nil {
		entry.WithField("code", status.Code(err).String()).
			Debugf("gRPC method: %s failed: %s", info.FullMethod, err)
		return resp, err
	}
	entry.Debugf("gRPC method: %s", info.FullMethod)
	return resp, nil
}

func streamLogger(
	srv interface{},
	stream grpc.ServerStream,
	info *grpc.StreamServerInfo,
	handler grpc.StreamHandler,
) error {
	log.Debugf("gRPC method: %s", info.FullMethod)
	return handler(srv, stream)
}
