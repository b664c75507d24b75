package appointment

import (
	stderrors "errors"
	"strings"
	"time"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
	"github.com/jwalitptl/health-portal/internal/service/audit"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/errors"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
	"github.com/jwalitptl/health-portal/pkg/validator"
)

// FormBooking names the booking form in rejection metrics.
const FormBooking = "booking"

// Messages shown next to the booking form.
const (
	MsgSignInRequired  = "Please sign in to book an appointment"
	MsgPatientsOnly    = "Only patients can book appointments"
	MsgMissingFields   = "Please fill in all required fields"
	MsgPastDate        = "Appointments cannot be booked in the past"
	MsgWeekend         = "Appointments are not available on weekends"
	MsgUnavailableSlot = "Please choose an available time slot"
)

// DefaultTimeSlots are the bookable times: every half hour from 09:00 to
// 11:30 and from 14:00 to 17:00.
var DefaultTimeSlots = []string{
	"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
}

// Config holds the booking rules.
type Config struct {
	TimeSlots      []string
	AllowWeekends  bool
	AllowPastDates bool
}

// BookingForm is the booking form as submitted by a patient.
type BookingForm struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Date     string `json:"date" validate:"required,isodate"`
	Time     string `json:"time" validate:"required,clock"`
	Notes    string `json:"notes"`
}

// Service books appointments for the signed-in patient and answers the
// role-scoped listings the dashboards need.
type Service struct {
	store     repository.DomainStore
	session   *session.Session
	cfg       Config
	slots     map[string]struct{}
	validator validator.Validator
	auditor   *audit.Service
	now       func() time.Time
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, which decides what "today" is.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithAuditor(a *audit.Service) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithValidator(v validator.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

func NewService(store repository.DomainStore, sess *session.Session, cfg Config, opts ...Option) *Service {
	if len(cfg.TimeSlots) == 0 {
		cfg.TimeSlots = DefaultTimeSlots
	}
	s := &Service{
		store:     store,
		session:   sess,
		cfg:       cfg,
		slots:     make(map[string]struct{}, len(cfg.TimeSlots)),
		validator: validator.New(),
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, slot := range cfg.TimeSlots {
		s.slots[slot] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current date in validator.DateLayout.
func (s *Service) Today() string {
	return s.now().Format(validator.DateLayout)
}

// TimeSlots lists the bookable times in display order.
func (s *Service) TimeSlots() []string {
	out := make([]string, len(s.cfg.TimeSlots))
	copy(out, s.cfg.TimeSlots)
	return out
}

// Doctors lists the users a patient can book with.
func (s *Service) Doctors() []model.User {
	out := make([]model.User, 0)
	for _, u := range s.store.ListUsers() {
		if u.IsDoctor() {
			out = append(out, u)
		}
	}
	return out
}

// DateAvailable reports whether date may be picked in the booking calendar.
func (s *Service) DateAvailable(date string) bool {
	return s.checkDate(date) == ""
}

// Book validates form and books it for the signed-in patient. Names are
// copied from the user records at this moment.
func (s *Service) Book(form BookingForm) (model.Appointment, error) {
	patient, ok := s.session.CurrentUser()
	if !ok {
		return model.Appointment{}, errors.Unauthorized(MsgSignInRequired)
	}
	if !patient.IsPatient() {
		return model.Appointment{}, errors.Forbidden(MsgPatientsOnly)
	}

	if err := s.validator.Validate(form); err != nil {
		var fields []string
		var fe validator.FieldErrors
		if stderrors.As(err, &fe) {
			fields = fe.Fields()
		}
		return model.Appointment{}, s.reject(errors.Invalid(MsgMissingFields, fields, err))
	}

	doctor, ok := s.store.FindUserByID(form.DoctorID)
	if !ok || !doctor.IsDoctor() {
		return model.Appointment{}, s.reject(errors.NotFound("doctor", nil))
	}
	if msg := s.checkDate(form.Date); msg != "" {
		return model.Appointment{}, s.reject(errors.Invalid(msg, []string{"date"}, nil))
	}
	if _, ok := s.slots[form.Time]; !ok {
		return model.Appointment{}, s.reject(errors.Invalid(MsgUnavailableSlot, []string{"time"}, nil))
	}

	apt := s.store.BookAppointment(model.AppointmentDraft{
		PatientID:   patient.ID,
		DoctorID:    doctor.ID,
		PatientName: patient.Name,
		DoctorName:  doctor.Name,
		Date:        form.Date,
		Time:        form.Time,
		Status:      model.AppointmentStatusScheduled,
		Notes:       strings.TrimSpace(form.Notes),
	})

	s.log.Info("appointment booked", "appointment_id", apt.ID, "patient_id", apt.PatientID, "doctor_id", apt.DoctorID)
	if s.auditor != nil {
		s.auditor.Log(patient.ID, audit.ActionBook, audit.EntityAppointment, apt.ID, map[string]interface{}{
			"doctor_id": apt.DoctorID,
			"date":      apt.Date,
			"time":      apt.Time,
		})
	}
	return apt, nil
}

// ListForUser returns the appointments user may see: their own as patient
// or doctor, every appointment as admin.
func (s *Service) ListForUser(user model.User) []model.Appointment {
	return s.list(user, model.AppointmentFilters{})
}

// Upcoming returns user's scheduled appointments.
func (s *Service) Upcoming(user model.User) []model.Appointment {
	return s.list(user, model.AppointmentFilters{Status: model.AppointmentStatusScheduled})
}

// TodayForDoctor returns the doctor's scheduled appointments for today.
func (s *Service) TodayForDoctor(doctorID string) []model.Appointment {
	return s.store.ListAppointments(model.AppointmentFilters{
		DoctorID: doctorID,
		Status:   model.AppointmentStatusScheduled,
		Date:     s.Today(),
	}.Match)
}

// TodayAll returns every appointment dated today, whatever its status.
func (s *Service) TodayAll() []model.Appointment {
	return s.store.ListAppointments(model.AppointmentFilters{Date: s.Today()}.Match)
}

func (s *Service) list(user model.User, f model.AppointmentFilters) []model.Appointment {
	switch user.Role {
	case model.RolePatient:
		f.PatientID = user.ID
	case model.RoleDoctor:
		f.DoctorID = user.ID
	case model.RoleAdmin:
	default:
		return []model.Appointment{}
	}
	return s.store.ListAppointments(f.Match)
}

func (s *Service) checkDate(date string) string {
	day, err := time.Parse(validator.DateLayout, date)
	if err != nil {
		return MsgMissingFields
	}
	if !s.cfg.AllowPastDates && date < s.Today() {
		return MsgPastDate
	}
	if !s.cfg.AllowWeekends && (day.Weekday() == time.Saturday || day.Weekday() == time.Sunday) {
		return MsgWeekend
	}
	return ""
}

func (s *Service) reject(err *errors.AppError) error {
	s.metrics.ObserveRejection(FormBooking)
	s.log.Debug("form rejected", "form", FormBooking, "reason", err.Message)
	return err
}
