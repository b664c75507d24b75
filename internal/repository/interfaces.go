package repository

import (
	"github.com/jwalitptl/health-portal/internal/model"
)

// Match predicates select entries from a listing. A nil predicate selects
// every entry.
type (
	AppointmentMatch   func(model.Appointment) bool
	MedicalRecordMatch func(model.MedicalRecord) bool
)

// All repository interfaces in one file. Every operation is total: lookups
// signal absence with a false flag, listings with an empty slice, and
// inserts always succeed.
type (
	// UserRepository handles user operations
	UserRepository interface {
		ListUsers() []model.User
		FindUserByEmail(email string) (model.User, bool)
		FindUserByID(id string) (model.User, bool)
		AddUser(draft model.UserDraft) model.User
	}

	AppointmentRepository interface {
		ListAppointments(match AppointmentMatch) []model.Appointment
		BookAppointment(draft model.AppointmentDraft) model.Appointment
	}

	MedicalRecordRepository interface {
		ListMedicalRecords(match MedicalRecordMatch) []model.MedicalRecord
		AddMedicalRecord(draft model.MedicalRecordDraft) model.MedicalRecord
	}

	// DomainStore is the single source of truth for users, appointments and
	// medical records. Revision increases by one on every insert.
	DomainStore interface {
		UserRepository
		AppointmentRepository
		MedicalRecordRepository
		Revision() uint64
	}
)
