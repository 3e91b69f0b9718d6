package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clinic/backend/internal/domain"
)

func (s *Server) listPatients(w http.ResponseWriter, r *http.Request) {
	rows, err := s.patients.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "could not list patients")
		return
	}
	writeList(w, rows)
}

func (s *Server) getPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not get patient")
		return
	}
	p, err := s.patients.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "could not get patient")
		return
	}
	writeData(w, http.StatusOK, p, "")
}

func (s *Server) createPatient(w http.ResponseWriter, r *http.Request) {
	var in domain.PatientPatch
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, "could not create patient")
		return
	}
	p, err := s.patients.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "could not create patient")
		return
	}
	writeData(w, http.StatusCreated, p, "patient created")
}

func (s *Server) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not update patient")
		return
	}
	var patch domain.PatientPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err, "could not update patient")
		return
	}
	p, err := s.patients.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err, "could not update patient")
		return
	}
	writeData(w, http.StatusOK, p, "patient updated")
}

func (s *Server) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err, "could not delete patient")
		return
	}
	if err := s.patients.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err, "could not delete patient")
		return
	}
	writeData(w, http.StatusOK, nil, "patient deleted")
}

func (s *Server) patientByNationalID(w http.ResponseWriter, r *http.Request) {
	p, err := s.patients.GetByNationalID(r.Context(), chi.URLParam(r, "nationalID"))
	if err != nil {
		s.writeError(w, r, err, "could not find patient")
		return
	}
	writeData(w, http.StatusOK, p, "")
}

func (s *Server) patientsByInsurance(w http.ResponseWriter, r *http.Request) {
	rows, err := s.patients.SearchByInsuranceProvider(r.Context(), chi.URLParam(r, "provider"))
	if err != nil {
		s.writeError(w, r, err, "could not search patients")
		return
	}
	writeList(w, rows)
}
