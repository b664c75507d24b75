package medical

import (
	stderrors "errors"
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

// FormRecord names the add-record form in rejection metrics.
const FormRecord = "medical_record"

const (
	MsgSignInRequired = "Please sign in to manage medical records"
	MsgDoctorsOnly    = "Only doctors can add medical records"
	MsgMissingFields  = "Please fill in all required fields"

	UnknownPatient = "Unknown Patient"
	UnknownDoctor  = "Unknown Doctor"
)

// RecordForm is the add-record form as submitted by a doctor. An empty
// date means today.
type RecordForm struct {
	PatientID    string `json:"patient_id" validate:"required"`
	Date         string `json:"date" validate:"omitempty,isodate"`
	Diagnosis    string `json:"diagnosis" validate:"required"`
	Prescription string `json:"prescription" validate:"required"`
	Notes        string `json:"notes"`
}

// Service adds medical records on behalf of the signed-in doctor and lists
// the records each role may read.
type Service struct {
	store     repository.DomainStore
	session   *session.Session
	validator validator.Validator
	auditor   *audit.Service
	now       func() time.Time
	log       *logger.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

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

func NewService(store repository.DomainStore, sess *session.Session, opts ...Option) *Service {
	s := &Service{
		store:     store,
		session:   sess,
		validator: validator.New(),
		now:       time.Now,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRecord stores form as a record written by the signed-in doctor.
func (s *Service) AddRecord(form RecordForm) (model.MedicalRecord, error) {
	doctor, ok := s.session.CurrentUser()
	if !ok {
		return model.MedicalRecord{}, errors.Unauthorized(MsgSignInRequired)
	}
	if !doctor.IsDoctor() {
		return model.MedicalRecord{}, errors.Forbidden(MsgDoctorsOnly)
	}

	if err := s.validator.Validate(form); err != nil {
		var fields []string
		var fe validator.FieldErrors
		if stderrors.As(err, &fe) {
			fields = fe.Fields()
		}
		return model.MedicalRecord{}, s.reject(errors.Invalid(MsgMissingFields, fields, err))
	}

	patient, ok := s.store.FindUserByID(form.PatientID)
	if !ok || !patient.IsPatient() {
		return model.MedicalRecord{}, s.reject(errors.NotFound("patient", nil))
	}

	date := form.Date
	if date == "" {
		date = s.now().Format(validator.DateLayout)
	}

	rec := s.store.AddMedicalRecord(model.MedicalRecordDraft{
		PatientID:    patient.ID,
		DoctorID:     doctor.ID,
		Date:         date,
		Diagnosis:    form.Diagnosis,
		Prescription: form.Prescription,
		Notes:        form.Notes,
	})

	s.log.Info("medical record added", "record_id", rec.ID, "patient_id", rec.PatientID, "doctor_id", rec.DoctorID)
	if s.auditor != nil {
		s.auditor.Log(doctor.ID, audit.ActionCreate, audit.EntityMedicalRecord, rec.ID, map[string]interface{}{
			"patient_id": rec.PatientID,
		})
	}
	return rec, nil
}

// ListForViewer returns the records viewer may read, narrowed by a
// case-insensitive search over diagnosis, prescription and notes. Patients
// see their own records, doctors the ones they wrote, admins all of them.
func (s *Service) ListForViewer(viewer model.User, search string) []model.MedicalRecord {
	f := model.RecordFilters{SearchTerm: search}
	switch viewer.Role {
	case model.RolePatient:
		f.PatientID = viewer.ID
	case model.RoleDoctor:
		f.DoctorID = viewer.ID
	case model.RoleAdmin:
	default:
		return []model.MedicalRecord{}
	}
	return s.store.ListMedicalRecords(f.Match)
}

// Patients lists the users a doctor can write records for.
func (s *Service) Patients() []model.User {
	return s.usersWithRole(model.RolePatient)
}

// PatientName resolves id for display.
func (s *Service) PatientName(id string) string {
	return s.nameOf(id, UnknownPatient)
}

// DoctorName resolves id for display.
func (s *Service) DoctorName(id string) string {
	return s.nameOf(id, UnknownDoctor)
}

func (s *Service) nameOf(id, fallback string) string {
	u, ok := s.store.FindUserByID(id)
	if !ok || u.Name == "" {
		return fallback
	}
	return u.Name
}

func (s *Service) usersWithRole(role model.Role) []model.User {
	out := make([]model.User, 0)
	for _, u := range s.store.ListUsers() {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}

func (s *Service) reject(err *errors.AppError) error {
	s.metrics.ObserveRejection(FormRecord)
	s.log.Debug("form rejected", "form", FormRecord, "reason", err.Message)
	return err
}
