package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/service/appointments"
	"clinic/backend/internal/store"
)

type fakePatients struct {
	listFn   func(ctx context.Context) ([]domain.Patient, error)
	getFn    func(ctx context.Context, id int) (domain.Patient, error)
	createFn func(ctx context.Context, in domain.PatientPatch) (domain.Patient, error)
	updateFn func(ctx context.Context, id int, patch domain.PatientPatch) (domain.Patient, error)
}

func (f *fakePatients) List(ctx context.Context) ([]domain.Patient, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakePatients) Get(ctx context.Context, id int) (domain.Patient, error) {
	if f.getFn == nil {
		panic("Get not configured")
	}
	return f.getFn(ctx, id)
}

func (f *fakePatients) Create(ctx context.Context, in domain.PatientPatch) (domain.Patient, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakePatients) Update(ctx context.Context, id int, patch domain.PatientPatch) (domain.Patient, error) {
	if f.updateFn == nil {
		panic("Update not configured")
	}
	return f.updateFn(ctx, id, patch)
}

func (f *fakePatients) Delete(ctx context.Context, id int) error {
	panic("Delete not configured")
}

func (f *fakePatients) GetByNationalID(ctx context.Context, nationalID string) (domain.Patient, error) {
	panic("GetByNationalID not configured")
}

func (f *fakePatients) SearchByInsuranceProvider(ctx context.Context, provider string) ([]domain.Patient, error) {
	panic("SearchByInsuranceProvider not configured")
}

type fakeAppointments struct {
	appointmentsService
	createFn        func(ctx context.Context, in domain.AppointmentPatch) (domain.Appointment, error)
	checkConflictFn func(ctx context.Context, q appointments.ConflictQuery) (bool, error)
}

func (f *fakeAppointments) Create(ctx context.Context, in domain.AppointmentPatch) (domain.Appointment, error) {
	if f.createFn == nil {
		panic("Create not configured")
	}
	return f.createFn(ctx, in)
}

func (f *fakeAppointments) CheckConflict(ctx context.Context, q appointments.ConflictQuery) (bool, error) {
	if f.checkConflictFn == nil {
		panic("CheckConflict not configured")
	}
	return f.checkConflictFn(ctx, q)
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error { return f.err }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRouter(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	return NewRouter(cfg)
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   *int            `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec.Code, out
}

func TestListPatients_Envelope(t *testing.T) {
	h := newTestRouter(t, Config{Patients: &fakePatients{
		listFn: func(ctx context.Context) ([]domain.Patient, error) {
			return []domain.Patient{{ID: 1, Name: "Ana"}}, nil
		},
	}})

	code, out := do(t, h, http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusOK, code)
	require.True(t, out.Success)
	require.NotNil(t, out.Count)
	require.Equal(t, 1, *out.Count)
	require.Contains(t, string(out.Data), `"idPatient":1`)
}

func TestListPatients_EmptyIsArray(t *testing.T) {
	h := newTestRouter(t, Config{Patients: &fakePatients{
		listFn: func(ctx context.Context) ([]domain.Patient, error) { return nil, nil },
	}})

	code, out := do(t, h, http.MethodGet, "/api/patients/", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "[]", string(out.Data))
	require.Equal(t, 0, *out.Count)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		dev        bool
		wantStatus int
		wantError  string
	}{
		{name: "not found", err: store.NotFound(store.Patients, 7), wantStatus: http.StatusNotFound, wantError: "patient 7: not found"},
		{name: "validation", err: &domain.ValidationError{Problems: []domain.Problem{{Field: "age", Message: "age must be between 0 and 120"}}}, wantStatus: http.StatusBadRequest, wantError: "invalid data: age must be between 0 and 120"},
		{name: "duplicate", err: store.DuplicateNationalID(store.Patients, "1234567"), wantStatus: http.StatusBadRequest},
		{name: "storage hidden", err: errors.New("disk full"), wantStatus: http.StatusInternalServerError, wantError: internalErrorText},
		{name: "storage in development", err: errors.New("disk full"), dev: true, wantStatus: http.StatusInternalServerError, wantError: "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, Config{Development: tt.dev, Patients: &fakePatients{
				getFn: func(ctx context.Context, id int) (domain.Patient, error) { return domain.Patient{}, tt.err },
			}})
			code, out := do(t, h, http.MethodGet, "/api/patients/7", "")
			require.Equal(t, tt.wantStatus, code)
			require.False(t, out.Success)
			require.NotEmpty(t, out.Message)
			if tt.wantError != "" {
				require.Equal(t, tt.wantError, out.Error)
			}
		})
	}
}

func TestBadInput(t *testing.T) {
	h := newTestRouter(t, Config{Patients: &fakePatients{}})

	code, out := do(t, h, http.MethodGet, "/api/patients/abc", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, out.Error, "positive integer")

	code, _ = do(t, h, http.MethodPost, "/api/patients", "{not json")
	require.Equal(t, http.StatusBadRequest, code)

	code, out = do(t, h, http.MethodPost, "/api/patients", "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "request body is required", out.Error)
}

func TestCreatePatient(t *testing.T) {
	var got domain.PatientPatch
	h := newTestRouter(t, Config{Patients: &fakePatients{
		createFn: func(ctx context.Context, in domain.PatientPatch) (domain.Patient, error) {
			got = in
			return domain.Patient{ID: 3, Name: *in.Name}, nil
		},
	}})

	code, out := do(t, h, http.MethodPost, "/api/patients", `{"name":"Ana","age":0}`)
	require.Equal(t, http.StatusCreated, code)
	require.True(t, out.Success)
	require.NotNil(t, got.Age)
	require.Equal(t, 0, *got.Age)
	require.Nil(t, got.Surname)
}

func TestUpdatePatient_PassesPatch(t *testing.T) {
	h := newTestRouter(t, Config{Patients: &fakePatients{
		updateFn: func(ctx context.Context, id int, patch domain.PatientPatch) (domain.Patient, error) {
			require.Equal(t, 4, id)
			require.Nil(t, patch.Name)
			return domain.Patient{ID: id, Age: *patch.Age}, nil
		},
	}})

	code, out := do(t, h, http.MethodPut, "/api/patients/4", `{"age":41}`)
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(out.Data), `"age":41`)
}

func TestCreateAppointment_ConflictIs400AndCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestRouter(t, Config{
		Registerer: reg,
		Gatherer:   reg,
		Appointments: &fakeAppointments{
			createFn: func(ctx context.Context, in domain.AppointmentPatch) (domain.Appointment, error) {
				return domain.Appointment{}, domain.ErrSchedulingConflict
			},
		},
	})

	code, out := do(t, h, http.MethodPost, "/api/appointments", `{"date":"2099-01-01"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, domain.ErrSchedulingConflict.Error(), out.Error)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `clinic_scheduling_booking_attempts_total{operation="create",outcome="conflict"} 1`)
}

func TestCheckConflict(t *testing.T) {
	h := newTestRouter(t, Config{Appointments: &fakeAppointments{
		checkConflictFn: func(ctx context.Context, q appointments.ConflictQuery) (bool, error) {
			require.Equal(t, 5, q.ExcludeID)
			return true, nil
		},
	}})

	code, out := do(t, h, http.MethodPost, "/api/appointments/conflicts",
		`{"date":"2099-01-01","startTime":"10:15","endTime":"10:45","doctorId":1,"excludeId":5}`)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"conflict":true}`, string(out.Data))
}

func TestUnknownRouteAndPanic(t *testing.T) {
	h := newTestRouter(t, Config{Patients: &fakePatients{
		listFn: func(ctx context.Context) ([]domain.Patient, error) { panic("boom") },
	}})

	code, out := do(t, h, http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, code)
	require.False(t, out.Success)

	code, out = do(t, h, http.MethodGet, "/api/patients", "")
	require.Equal(t, http.StatusInternalServerError, code)
	require.Equal(t, internalErrorText, out.Error)
}

func TestHealthzAndStatus(t *testing.T) {
	h := newTestRouter(t, Config{Store: fakePinger{}, Backend: "file"})
	code, _ := do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, code)

	code, out := do(t, h, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(out.Data), `"backend":"file"`)

	h = newTestRouter(t, Config{Store: fakePinger{err: errors.New("down")}})
	code, _ = do(t, h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestRouter(t, Config{Store: fakePinger{}})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Len(t, rec.Header().Get(requestIDHeader), 36)
}
