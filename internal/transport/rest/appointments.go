package rest

import (
	"log/slog"
	"net/http"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service/appointments"
)

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	rows, err := s.appointments.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	writeList(w, rows)
}

func (s *Server) listFullAppointments(w http.ResponseWriter, r *http.Request) {
	rows, err := s.appointments.ListFull(r.Context())
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	writeList(w, rows)
}

func (s *Server) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not get appointment")
		return
	}
	a, err := s.appointments.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "could not get appointment")
		return
	}
	writeData(w, http.StatusOK, a, "")
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var in domain.AppointmentPatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, "could not create appointment")
		return
	}
	a, err := s.appointments.Create(r.Context(), in)
	s.scheduling.ObserveOutcome("create", bookingOutcome(err))
	if err != nil {
		s.writeError(w, r, err, "could not create appointment")
		return
	}
	s.log.Info("appointment booked",
		slog.Int("appointment_id", a.ID),
		slog.Int("doctor_id", a.DoctorID),
		slog.String("date", a.Date),
	)
	writeData(w, http.StatusCreated, a, "appointment created")
}

func (s *Server) updateAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not update appointment")
		return
	}
	var patch domain.AppointmentPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, "could not update appointment")
		return
	}
	a, err := s.appointments.Update(r.Context(), id, patch)
	s.scheduling.ObserveOutcome("update", bookingOutcome(err))
	if err != nil {
		s.writeError(w, r, err, "could not update appointment")
		return
	}
	writeData(w, http.StatusOK, a, "appointment updated")
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not delete appointment")
		return
	}
	if err := s.appointments.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "could not delete appointment")
		return
	}
	writeData(w, http.StatusOK, nil, "appointment deleted")
}

func (s *Server) appointmentsByPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	rows, err := s.appointments.ListByPatient(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	writeList(w, rows)
}

func (s *Server) appointmentsByDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	rows, err := s.appointments.ListByDoctor(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	writeList(w, rows)
}

func (s *Server) appointmentsByDate(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	rows, err := s.appointments.ListByDate(r.Context(), date)
	if err != nil {
		s.writeError(w, r, err, "could not list appointments")
		return
	}
	writeList(w, rows)
}

type conflictResult struct {
	Conflict bool `json:"conflict"`
}

func (s *Server) checkConflict(w http.ResponseWriter, r *http.Request) {
	var q appointments.ConflictQuery
	if err := decodeJSON(w, r, &q); err != nil {
		s.writeError(w, r, err, "could not check conflict")
		return
	}
	conflict, err := s.appointments.CheckConflict(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err, "could not check conflict")
		return
	}
	msg := "slot is free"
	if conflict {
		msg = "doctor already has an appointment in that time slot"
	}
	writeData(w, http.StatusOK, conflictResult{Conflict: conflict}, msg)
}

type seriesRequest struct {
	domain.AppointmentPatch
	Weeks    int `json:"weeks"`
	Interval int `json:"interval"`
}

func (s *Server) createSeries(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err, "could not create appointment series")
		return
	}
	rows, err := s.appointments.CreateSeries(r.Context(), req.AppointmentPatch, req.Weeks, req.Interval)
	s.scheduling.ObserveOutcome("series", bookingOutcome(err))
	if err != nil {
		s.writeError(w, r, err, "could not create appointment series")
		return
	}
	n := len(rows)
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: rows, Count: &n, Message: "appointment series created"})
}
