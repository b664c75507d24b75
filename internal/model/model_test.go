package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Doctor ")
	assert.True(t, ok)
	assert.Equal(t, RoleDoctor, r)

	_, ok = ParseRole("nurse")
	assert.False(t, ok)
}

func TestUserDraft_NewProfileGatesFieldsByRole(t *testing.T) {
	draft := UserDraft{
		Role:           RolePatient,
		DateOfBirth:    "1990-01-01",
		MedicalHistory: "asthma",
		Specialization: "Cardiology",
	}
	assert.Equal(t, PatientProfile{DateOfBirth: "1990-01-01", MedicalHistory: "asthma"}, draft.NewProfile())

	draft.Role = RoleDoctor
	assert.Equal(t, DoctorProfile{Specialization: "Cardiology"}, draft.NewProfile())

	draft.Role = RoleAdmin
	assert.Equal(t, AdminProfile{}, draft.NewProfile())

	draft.Role = "nurse"
	assert.Nil(t, draft.NewProfile())
}

func TestUser_ProfileAccessors(t *testing.T) {
	u := User{Role: RoleDoctor, Profile: DoctorProfile{Specialization: "Neurology"}}

	doc, ok := u.Doctor()
	assert.True(t, ok)
	assert.Equal(t, "Neurology", doc.Specialization)

	_, ok = u.Patient()
	assert.False(t, ok)
	assert.True(t, u.IsDoctor())
	assert.False(t, u.IsAdmin())
}

func TestUserFilters_Match(t *testing.T) {
	u := User{Name: "Dr. Sarah Wilson", Email: "doctor@demo.com", Role: RoleDoctor}

	assert.True(t, UserFilters{}.Match(u))
	assert.True(t, UserFilters{SearchTerm: "sarah"}.Match(u))
	assert.True(t, UserFilters{SearchTerm: "DEMO.COM"}.Match(u))
	assert.False(t, UserFilters{Role: RolePatient}.Match(u))
	assert.False(t, UserFilters{SearchTerm: "doctor"}.Match(User{Name: "Ann", Email: "a@x.io", Role: RoleDoctor}))
	assert.True(t, UserFilters{SearchTerm: "doctor", SearchRole: true}.Match(User{Name: "Ann", Email: "a@x.io", Role: RoleDoctor}))
}

func TestAppointmentFilters_Match(t *testing.T) {
	a := Appointment{PatientID: "1", DoctorID: "2", Date: "2025-08-28", Status: AppointmentStatusScheduled}

	assert.True(t, AppointmentFilters{}.Match(a))
	assert.True(t, AppointmentFilters{PatientID: "1", DoctorID: "2"}.Match(a))
	assert.False(t, AppointmentFilters{PatientID: "9"}.Match(a))
	assert.False(t, AppointmentFilters{Status: AppointmentStatusCompleted}.Match(a))
	assert.False(t, AppointmentFilters{Date: "2025-08-29"}.Match(a))
}

func TestRecordFilters_Match(t *testing.T) {
	r := MedicalRecord{PatientID: "1", DoctorID: "2", Diagnosis: "Hypertension", Prescription: "Lisinopril", Notes: "Recheck in 3 months"}

	assert.True(t, RecordFilters{SearchTerm: "hyper"}.Match(r))
	assert.True(t, RecordFilters{SearchTerm: "LISIN"}.Match(r))
	assert.True(t, RecordFilters{SearchTerm: "recheck"}.Match(r))
	assert.False(t, RecordFilters{SearchTerm: "flu"}.Match(r))
	assert.False(t, RecordFilters{DoctorID: "3"}.Match(r))
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, ScreenPatientDashboard, DashboardFor(RolePatient))
	assert.Equal(t, ScreenDoctorDashboard, DashboardFor(RoleDoctor))
	assert.Equal(t, ScreenAdminPanel, DashboardFor(RoleAdmin))
}

func TestAppointmentStatus_Valid(t *testing.T) {
	assert.True(t, AppointmentStatusCancelled.Valid())
	assert.False(t, AppointmentStatus("confirmed").Valid())
}
