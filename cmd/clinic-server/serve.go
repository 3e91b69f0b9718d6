package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"clinic/backend/internal/config"
	"clinic/backend/internal/service/appointments"
	"clinic/backend/internal/service/doctors"
	"clinic/backend/internal/service/patients"
	grpcTransport "clinic/backend/internal/transport/grpc"
	"clinic/backend/internal/transport/rest"
)

func serveCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (and the optional gRPC admin listener)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configFile)
		},
	}
}

func runServer(parent context.Context, configFile string) error {
	if parent == nil {
		parent = context.Background()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := newLogger(os.Stdout, cfg.LogLevel)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr()),
		slog.String("store_backend", cfg.StoreBackend),
		slog.String("timezone", cfg.Location.String()),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler := rest.NewRouter(rest.Config{
		Patients:       patients.NewService(st),
		Doctors:        doctors.NewService(st),
		Appointments:   appointments.NewService(st, appointments.WithLocation(cfg.Location)),
		Store:          st,
		Logger:         log,
		Registerer:     reg,
		Gatherer:       reg,
		Backend:        cfg.StoreBackend,
		Development:    cfg.Development(),
		RequestTimeout: cfg.HTTPRequestTimeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCEnabled {
		reporter := grpcTransport.NewHealthReporter(st, cfg.HealthInterval, log)
		go reporter.Run(ctx)

		lis, err := net.Listen("tcp", cfg.GRPCAddr())
		if err != nil {
			log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
			shutdownHTTP(log, httpServer, cfg.ShutdownTimeout)
			return err
		}
		grpcServer = grpcTransport.NewServer(cfg.GRPCRequestTimeout, reporter)
		go func() {
			log.Info("grpc server started", slog.String("grpc_addr", cfg.GRPCAddr()))
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case runErr = <-errCh:
		log.Error("server stopped with error", slog.Any("err", runErr))
	}

	shutdownHTTP(log, httpServer, cfg.ShutdownTimeout)
	if grpcServer != nil {
		grpcTransport.Stop(log, grpcServer, cfg.ShutdownTimeout)
	}
	return runErr
}

func shutdownHTTP(log *slog.Logger, s *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}
