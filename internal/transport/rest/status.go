package rest

import (
	"log/slog"
	"net/http"
	"time"
)

type statusInfo struct {
	Name      string            `json:"name"`
	Status    string            `json:"status"`
	Backend   string            `json:"backend"`
	Time      time.Time         `json:"time"`
	Uptime    string            `json:"uptime"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, statusInfo{
		Name:    "clinic-server",
		Status:  "ok",
		Backend: s.backend,
		Time:    time.Now().UTC(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Endpoints: map[string]string{
			"patients":     "/api/patients",
			"doctors":      "/api/doctors",
			"appointments": "/api/appointments",
		},
	}, "")
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.log.Warn("health check failed", slog.Any("err", err))
			writeFailure(w, http.StatusServiceUnavailable, "store unavailable", internalErrorText)
			return
		}
	}
	writeData(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}
