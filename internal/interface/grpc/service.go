package grpcservice

import (
	"context"
	"fmt"
	"net"

	"github.com/ark-network/htlc/internal/config"
	"github.com/ark-network/htlc/internal/core/application"
	interfaces "github.com/ark-network/htlc/internal/interface"
	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
	"github.com/ark-network/htlc/internal/interface/grpc/handlers"
	"github.com/ark-network/htlc/internal/interface/grpc/interceptors"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	grpchealth "google.golang.org/grpc/health/grpc_health_v1"
)

type service struct {
	version   string
	config    Config
	appConfig *config.Config

	appSvc       application.Service
	grpcServer   *grpc.Server
	healthSvc    *health.Server
	otelShutdown func(context.Context) error
}

func NewService(
	version string, svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}
	appSvc, err := appConfig.AppService()
	if err != nil {
		return nil, err
	}

	if !svcConfig.insecure() {
		if err := generateTLSKeyCert(svcConfig); err != nil {
			return nil, err
		}
		log.Debugf("tls key pair available in %s", svcConfig.tlsDatadir())
	}

	return &service{
		version: version, config: svcConfig, appConfig: appConfig, appSvc: appSvc,
	}, nil
}

func (s *service) Start() error {
	if endpoint := s.appConfig.OtelCollectorEndpoint; endpoint != "" {
		shutdown, err := initOtelSDK(context.Background(), endpoint)
		if err != nil {
			return err
		}
		s.otelShutdown = shutdown
	}

	opts, err := s.serverOptions()
	if err != nil {
		return err
	}
	s.grpcServer = grpc.NewServer(opts...)
	s.healthSvc = health.NewServer()
	htlcv1.RegisterHTLCServiceServer(s.grpcServer, handlers.NewHandler(s.version, s.appSvc))
	grpchealth.RegisterHealthServer(s.grpcServer, s.healthSvc)

	if err := s.appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start htlc service: %s", err)
	}
	log.Info("htlc service started")

	lis, err := net.Listen("tcp", s.config.address())
	if err != nil {
		s.appSvc.Stop()
		return err
	}
	// nolint:all
	go s.grpcServer.Serve(lis)
	s.healthSvc.SetServingStatus(htlcv1.ServiceName, grpchealth.HealthCheckResponse_SERVING)

	log.Infof("grpc server listening on %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	if s.healthSvc != nil {
		s.healthSvc.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
		log.Info("grpc server stopped")
	}

	s.appSvc.Stop()
	log.Info("htlc service stopped")

	if s.otelShutdown != nil {
		if err := s.otelShutdown(context.Background()); err != nil {
			log.WithError(err).Warn("failed to flush telemetry")
		}
	}
}

func (s *service) serverOptions() ([]grpc.ServerOption, error) {
	creds := insecure.NewCredentials()
	if !s.config.insecure() {
		tlsConfig, err := s.config.tlsConfig()
		if err != nil {
			return nil, err
		}
		creds = credentials.NewTLS(tlsConfig)
	}

	statsHandler := otelgrpc.NewServerHandler(
		otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
		otelgrpc.WithMeterProvider(otel.GetMeterProvider()),
	)

	return []grpc.ServerOption{
		grpc.Creds(creds),
		grpc.StatsHandler(statsHandler),
		interceptors.UnaryInterceptor(),
		interceptors.StreamInterceptor(),
	}, nil
}
