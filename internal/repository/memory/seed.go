package memory

import (
	"github.com/jwalitptl/health-portal/internal/model"
)

// Demo account emails.
const (
	DemoPatientEmail = "patient@demo.com"
	DemoDoctorEmail  = "doctor@demo.com"
	DemoAdminEmail   = "admin@demo.com"
)

// SeedData is preloaded into a store as-is. Entries without an id, or with
// an id already taken, get a fresh one.
type SeedData struct {
	Users          []model.User
	Appointments   []model.Appointment
	MedicalRecords []model.MedicalRecord
}

// DemoSeed returns the three demo accounts. passwordHash is copied onto
// each of them and may be empty.
func DemoSeed(passwordHash string) SeedData {
	return SeedData{
		Users: []model.User{
			{
				ID:           "1",
				Name:         "John Patient",
				Email:        DemoPatientEmail,
				Role:         model.RolePatient,
				Phone:        "+1 (555) 123-4567",
				Profile:      model.PatientProfile{DateOfBirth: "1985-06-15", MedicalHistory: "No known allergies"},
				PasswordHash: passwordHash,
			},
			{
				ID:           "2",
				Name:         "Dr. Sarah Wilson",
				Email:        DemoDoctorEmail,
				Role:         model.RoleDoctor,
				Phone:        "+1 (555) 987-6543",
				Profile:      model.DoctorProfile{Specialization: "General Medicine"},
				PasswordHash: passwordHash,
			},
			{
				ID:           "3",
				Name:         "Admin User",
				Email:        DemoAdminEmail,
				Role:         model.RoleAdmin,
				Profile:      model.AdminProfile{},
				PasswordHash: passwordHash,
			},
		},
	}
}

func (s *Store) seed(data SeedData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range data.Users {
		u.ID = s.seedID(CollectionUsers, u.ID)
		if u.Profile == nil {
			u.Profile = model.UserDraft{Role: u.Role}.NewProfile()
		}
		s.users = append(s.users, u)
		s.inserted(CollectionUsers, u.ID, len(s.users))
	}
	for _, a := range data.Appointments {
		a.ID = s.seedID(CollectionAppointments, a.ID)
		if a.Status == "" {
			a.Status = model.AppointmentStatusScheduled
		}
		s.apts = append(s.apts, a)
		s.inserted(CollectionAppointments, a.ID, len(s.apts))
	}
	for _, r := range data.MedicalRecords {
		r.ID = s.seedID(CollectionMedicalRecords, r.ID)
		s.records = append(s.records, r)
		s.inserted(CollectionMedicalRecords, r.ID, len(s.records))
	}
}
