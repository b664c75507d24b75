package dashboard

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
	"github.com/jwalitptl/health-portal/internal/service/appointment"
	"github.com/jwalitptl/health-portal/internal/service/audit"
	"github.com/jwalitptl/health-portal/internal/service/medical"
	"github.com/jwalitptl/health-portal/pkg/errors"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
)

// Config controls summary caching and list lengths.
// CacheDuration determines how long a summary stays cached.
// CleanupInterval determines how often expired summaries are dropped.
// UpcomingLimit caps the patient's upcoming list, RecentLimit the admin's.
type Config struct {
	CacheDuration   time.Duration
	CleanupInterval time.Duration
	UpcomingLimit   int
	RecentLimit     int
}

func DefaultConfig() Config {
	return Config{
		CacheDuration:   5 * time.Minute,
		CleanupInterval: 10 * time.Minute,
		UpcomingLimit:   3,
		RecentLimit:     5,
	}
}

// PatientSummary backs the patient dashboard.
type PatientSummary struct {
	UpcomingCount     int                 `json:"upcoming_count"`
	Upcoming          []model.Appointment `json:"upcoming"`
	RecordCount       int                 `json:"record_count"`
	TotalAppointments int                 `json:"total_appointments"`
}

// DoctorSummary backs the doctor dashboard.
type DoctorSummary struct {
	Today             []model.Appointment `json:"today"`
	PatientCount      int                 `json:"patient_count"`
	RecordCount       int                 `json:"record_count"`
	TotalAppointments int                 `json:"total_appointments"`
}

// AdminSummary backs the admin panel. Appointments holds the first
// RecentLimit appointments in booking order.
type AdminSummary struct {
	TotalUsers        int                 `json:"total_users"`
	Patients          int                 `json:"patients"`
	Doctors           int                 `json:"doctors"`
	Admins            int                 `json:"admins"`
	TotalAppointments int                 `json:"total_appointments"`
	TotalRecords      int                 `json:"total_records"`
	Scheduled         int                 `json:"scheduled"`
	Completed         int                 `json:"completed"`
	Today             int                 `json:"today"`
	Appointments      []model.Appointment `json:"appointments"`
}

// Service computes dashboard summaries. Summaries are cached per user,
// day and store revision, so any insert makes the next read recompute.
type Service struct {
	store   repository.DomainStore
	apts    *appointment.Service
	records *medical.Service
	auditor *audit.Service
	cfg     Config
	cache   *cache.Cache
	log     *logger.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithAuditor(a *audit.Service) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store repository.DomainStore, apts *appointment.Service, records *medical.Service,
	cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.CacheDuration <= 0 {
		cfg.CacheDuration = def.CacheDuration
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = def.UpcomingLimit
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = def.RecentLimit
	}

	s := &Service{
		store:   store,
		apts:    apts,
		records: records,
		cfg:     cfg,
		cache:   cache.New(cfg.CacheDuration, cfg.CleanupInterval),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Patient summarizes the patient's own appointments and records.
func (s *Service) Patient(user model.User) PatientSummary {
	key := s.key("patient", user.ID)
	if v, ok := s.lookup(key); ok {
		sum := v.(PatientSummary)
		sum.Upcoming = clone(sum.Upcoming)
		return sum
	}

	upcoming := s.apts.Upcoming(user)
	sum := PatientSummary{
		UpcomingCount:     len(upcoming),
		Upcoming:          head(upcoming, s.cfg.UpcomingLimit),
		RecordCount:       len(s.records.ListForViewer(user, "")),
		TotalAppointments: len(s.apts.ListForUser(user)),
	}
	s.cache.Set(key, sum, cache.DefaultExpiration)
	sum.Upcoming = clone(sum.Upcoming)
	return sum
}

// Doctor summarizes today's schedule and the doctor's workload.
func (s *Service) Doctor(user model.User) DoctorSummary {
	key := s.key("doctor", user.ID)
	if v, ok := s.lookup(key); ok {
		sum := v.(DoctorSummary)
		sum.Today = clone(sum.Today)
		return sum
	}

	sum := DoctorSummary{
		Today:             s.apts.TodayForDoctor(user.ID),
		PatientCount:      len(s.users(model.UserFilters{Role: model.RolePatient})),
		RecordCount:       len(s.records.ListForViewer(user, "")),
		TotalAppointments: len(s.apts.ListForUser(user)),
	}
	s.cache.Set(key, sum, cache.DefaultExpiration)
	sum.Today = clone(sum.Today)
	return sum
}

// Admin summarizes the whole portal.
func (s *Service) Admin() AdminSummary {
	key := s.key("admin", "")
	if v, ok := s.lookup(key); ok {
		sum := v.(AdminSummary)
		sum.Appointments = clone(sum.Appointments)
		return sum
	}

	var sum AdminSummary
	users := s.store.ListUsers()
	sum.TotalUsers = len(users)
	for _, u := range users {
		switch u.Role {
		case model.RolePatient:
			sum.Patients++
		case model.RoleDoctor:
			sum.Doctors++
		case model.RoleAdmin:
			sum.Admins++
		}
	}

	today := s.apts.Today()
	apts := s.store.ListAppointments(nil)
	sum.TotalAppointments = len(apts)
	for _, a := range apts {
		switch a.Status {
		case model.AppointmentStatusScheduled:
			sum.Scheduled++
		case model.AppointmentStatusCompleted:
			sum.Completed++
		}
		if a.Date == today {
			sum.Today++
		}
	}
	sum.Appointments = head(apts, s.cfg.RecentLimit)
	sum.TotalRecords = len(s.store.ListMedicalRecords(nil))

	s.cache.Set(key, sum, cache.DefaultExpiration)
	sum.Appointments = clone(sum.Appointments)
	return sum
}

// SearchUsers is the user search box. Admins search everyone by name, email
// or role; doctors search patients by name or email.
func (s *Service) SearchUsers(viewer model.User, term string) ([]model.User, error) {
	switch viewer.Role {
	case model.RoleAdmin:
		return s.users(model.UserFilters{SearchTerm: term, SearchRole: true}), nil
	case model.RoleDoctor:
		return s.users(model.UserFilters{Role: model.RolePatient, SearchTerm: term}), nil
	default:
		return nil, errors.Forbidden("user search is not available for this role")
	}
}

// RecentActivity returns the newest n audit entries. Admins only.
func (s *Service) RecentActivity(viewer model.User, n int) ([]audit.Entry, error) {
	if !viewer.IsAdmin() {
		return nil, errors.Forbidden("activity is only visible to admins")
	}
	if s.auditor == nil {
		return []audit.Entry{}, nil
	}
	return s.auditor.Recent(n), nil
}

func (s *Service) users(f model.UserFilters) []model.User {
	out := make([]model.User, 0)
	for _, u := range s.store.ListUsers() {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) key(kind, userID string) string {
	return fmt.Sprintf("%s:%s:%s:%d", kind, userID, s.apts.Today(), s.store.Revision())
}

func (s *Service) lookup(key string) (interface{}, bool) {
	v, ok := s.cache.Get(key)
	s.metrics.ObserveCache(ok)
	if ok {
		s.log.Debug("dashboard cache hit", "key", key)
	}
	return v, ok
}

func head(apts []model.Appointment, n int) []model.Appointment {
	if len(apts) > n {
		apts = apts[:n]
	}
	return apts
}

func clone(apts []model.Appointment) []model.Appointment {
	out := make([]model.Appointment, len(apts))
	copy(out, apts)
	return out
}
