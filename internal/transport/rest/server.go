package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clinic/backend/internal/domain"
	"clinic/backend/internal/observability/metrics"
	"clinic/backend/internal/service/appointments"
)

type patientsService interface {
	List(ctx context.Context) ([]domain.Patient, error)
	Get(ctx context.Context, id int) (domain.Patient, error)
	Create(ctx context.Context, in domain.PatientPatch) (domain.Patient, error)
	Update(ctx context.Context, id int, patch domain.PatientPatch) (domain.Patient, error)
	Delete(ctx context.Context, id int) error
	GetByNationalID(ctx context.Context, nationalID string) (domain.Patient, error)
	SearchByInsuranceProvider(ctx context.Context, provider string) ([]domain.Patient, error)
}

type doctorsService interface {
	List(ctx context.Context) ([]domain.Doctor, error)
	Get(ctx context.Context, id int) (domain.Doctor, error)
	Create(ctx context.Context, in domain.DoctorPatch) (domain.Doctor, error)
	Update(ctx context.Context, id int, patch domain.DoctorPatch) (domain.Doctor, error)
	Delete(ctx context.Context, id int) error
	GetByNationalID(ctx context.Context, nationalID string) (domain.Doctor, error)
	SearchBySpecialty(ctx context.Context, specialty string) ([]domain.Doctor, error)
	Specialties(ctx context.Context) ([]string, error)
}

type appointmentsService interface {
	List(ctx context.Context) ([]domain.Appointment, error)
	Get(ctx context.Context, id int) (domain.Appointment, error)
	Create(ctx context.Context, in domain.AppointmentPatch) (domain.Appointment, error)
	Update(ctx context.Context, id int, patch domain.AppointmentPatch) (domain.Appointment, error)
	Delete(ctx context.Context, id int) error
	ListByPatient(ctx context.Context, patientID int) ([]domain.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int) ([]domain.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]domain.Appointment, error)
	ListFull(ctx context.Context) ([]domain.FullAppointment, error)
	CheckConflict(ctx context.Context, q appointments.ConflictQuery) (bool, error)
	CreateSeries(ctx context.Context, in domain.AppointmentPatch, weeks, interval int) ([]domain.Appointment, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type Config struct {
	Patients     patientsService
	Doctors      doctorsService
	Appointments appointmentsService
	Store        pinger

	Logger *slog.Logger
	// Registerer receives the HTTP and scheduling collectors; Gatherer backs
	// /metrics. Both may be nil to disable metrics.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Backend        string
	Development    bool
	RequestTimeout time.Duration
}

type Server struct {
	patients     patientsService
	doctors      doctorsService
	appointments appointmentsService
	store        pinger

	log        *slog.Logger
	http       *metrics.HTTPMetrics
	scheduling *metrics.SchedulingMetrics

	backend     string
	development bool
	started     time.Time
}

func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		patients:     cfg.Patients,
		doctors:      cfg.Doctors,
		appointments: cfg.Appointments,
		store:        cfg.Store,
		log:          log.With(slog.String("component", "http")),
		backend:      cfg.Backend,
		development:  cfg.Development,
		started:      time.Now(),
	}
	if cfg.Registerer != nil {
		s.http = metrics.NewHTTPMetrics(cfg.Registerer)
		s.scheduling = metrics.NewSchedulingMetrics(cfg.Registerer)
	}
	return s
}

// Routes builds the HTTP handler. gatherer may be nil.
func (s *Server) Routes(timeout time.Duration, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.StripSlashes)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(requestTimeout(timeout))

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.healthz)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", s.listPatients)
			r.Post("/", s.createPatient)
			r.Get("/national-id/{nationalID}", s.patientByNationalID)
			r.Get("/insurance/{provider}", s.patientsByInsurance)
			r.Get("/{id}", s.getPatient)
			r.Put("/{id}", s.updatePatient)
			r.Delete("/{id}", s.deletePatient)
		})

		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", s.listDoctors)
			r.Post("/", s.createDoctor)
			r.Get("/specialties", s.specialties)
			r.Get("/national-id/{nationalID}", s.doctorByNationalID)
			r.Get("/specialty/{specialty}", s.doctorsBySpecialty)
			r.Get("/{id}", s.getDoctor)
			r.Put("/{id}", s.updateDoctor)
			r.Delete("/{id}", s.deleteDoctor)
		})

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", s.listAppointments)
			r.Post("/", s.createAppointment)
			r.Get("/full", s.listFullAppointments)
			r.Post("/conflicts", s.checkConflict)
			r.Post("/series", s.createSeries)
			r.Get("/patient/{id}", s.appointmentsByPatient)
			r.Get("/doctor/{id}", s.appointmentsByDoctor)
			r.Get("/date/{date}", s.appointmentsByDate)
			r.Get("/{id}", s.getAppointment)
			r.Put("/{id}", s.updateAppointment)
			r.Delete("/{id}", s.deleteAppointment)
		})
	})

	return r
}

// NewRouter wires a Server from cfg and returns its routes.
func NewRouter(cfg Config) http.Handler {
	return NewServer(cfg).Routes(cfg.RequestTimeout, cfg.Gatherer)
}
