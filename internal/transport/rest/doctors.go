package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
)

func (s *Server) listDoctors(w http.ResponseWriter, r *http.Request) {
	rows, err := s.doctors.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "could not list doctors")
		return
	}
	writeList(w, rows)
}

func (s *Server) getDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not get doctor")
		return
	}
	d, err := s.doctors.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "could not get doctor")
		return
	}
	writeData(w, http.StatusOK, d, "")
}

func (s *Server) createDoctor(w http.ResponseWriter, r *http.Request) {
	var in domain.DoctorPatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, "could not create doctor")
		return
	}
	d, err := s.doctors.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "could not create doctor")
		return
	}
	writeData(w, http.StatusCreated, d, "doctor created")
}

func (s *Server) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not update doctor")
		return
	}
	var patch domain.DoctorPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, "could not update doctor")
		return
	}
	d, err := s.doctors.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, "could not update doctor")
		return
	}
	writeData(w, http.StatusOK, d, "doctor updated")
}

func (s *Server) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not delete doctor")
		return
	}
	if err := s.doctors.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "could not delete doctor")
		return
	}
	writeData(w, http.StatusOK, nil, "doctor deleted")
}

func (s *Server) doctorByNationalID(w http.ResponseWriter, r *http.Request) {
	d, err := s.doctors.GetByNationalID(r.Context(), chi.URLParam(r, "nationalID"))
	if err != nil {
		s.writeError(w, r, err, "could not find doctor")
		return
	}
	writeData(w, http.StatusOK, d, "")
}

func (s *Server) doctorsBySpecialty(w http.ResponseWriter, r *http.Request) {
	rows, err := s.doctors.SearchBySpecialty(r.Context(), chi.URLParam(r, "specialty"))
	if err != nil {
		s.writeError(w, r, err, "could not search doctors")
		return
	}
	writeList(w, rows)
}

func (s *Server) specialties(w http.ResponseWriter, r *http.Request) {
	rows, err := s.doctors.Specialties(r.Context())
	if err != nil {
		s.writeError(w, r, err, "could not list specialties")
		return
	}
	writeList(w, rows)
}
