package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall "".
const ServiceName = "clinic.Scheduling"

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter publishes SERVING while the store answers pings.
type HealthReporter struct {
	srv      *health.Server
	store    pinger
	interval time.Duration
	log      *slog.Logger
}

func NewHealthReporter(store pinger, interval time.Duration, log *slog.Logger) *HealthReporter {
	if log == nil {
		log = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := &HealthReporter{
		srv:      health.NewServer(),
		store:    store,
		interval: interval,
		log:      log.With(slog.String("component", "grpc.health")),
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthReporter) Server() *health.Server {
	return h.srv
}

// Probe pings the store once and publishes the result.
func (h *HealthReporter) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, h.interval)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("store ping failed", slog.Any("err", err))
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
}

// Run probes every interval until ctx is done, then reports NOT_SERVING for
// good.
func (h *HealthReporter) Run(ctx context.Context) {
	h.Probe(ctx)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-ticker.C:
			h.Probe(ctx)
		}
	}
}

func (h *HealthReporter) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}
