package model

import "strings"

// Role determines which dashboard and profile fields apply to a user.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// ParseRole normalizes s, returning false for unknown roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Profile holds the fields that only exist for one role. Exactly one of
// PatientProfile, DoctorProfile or AdminProfile backs a user.
type Profile interface {
	Role() Role
	isProfile()
}

// PatientProfile carries patient-only fields.
type PatientProfile struct {
	DateOfBirth    string `json:"date_of_birth,omitempty"`
	MedicalHistory string `json:"medical_history,omitempty"`
}

// DoctorProfile carries doctor-only fields.
type DoctorProfile struct {
	Specialization string `json:"specialization,omitempty"`
}

// AdminProfile has no role-specific fields.
type AdminProfile struct{}

func (PatientProfile) Role() Role { return RolePatient }
func (DoctorProfile) Role() Role  { return RoleDoctor }
func (AdminProfile) Role() Role   { return RoleAdmin }

func (PatientProfile) isProfile() {}
func (DoctorProfile) isProfile()  {}
func (AdminProfile) isProfile()   {}

// User represents a portal account. Users are immutable once stored.
type User struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         Role    `json:"role"`
	Phone        string  `json:"phone,omitempty"`
	Profile      Profile `json:"profile,omitempty"`
	PasswordHash string  `json:"-"`
}

// Patient returns the patient profile when the user is a patient.
func (u User) Patient() (PatientProfile, bool) {
	p, ok := u.Profile.(PatientProfile)
	return p, ok
}

// Doctor returns the doctor profile when the user is a doctor.
func (u User) Doctor() (DoctorProfile, bool) {
	p, ok := u.Profile.(DoctorProfile)
	return p, ok
}

func (u User) IsPatient() bool { return u.Role == RolePatient }
func (u User) IsDoctor() bool  { return u.Role == RoleDoctor }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

// UserDraft is the partial set of fields a new user is built from. Fields
// that do not belong to Role are dropped when the user is created.
type UserDraft struct {
	Name           string
	Email          string
	Role           Role
	Phone          string
	DateOfBirth    string
	MedicalHistory string
	Specialization string
	PasswordHash   string
}

// NewProfile builds the profile variant for d.Role, or nil when the role
// is unknown.
func (d UserDraft) NewProfile() Profile {
	switch d.Role {
	case RolePatient:
		return PatientProfile{DateOfBirth: d.DateOfBirth, MedicalHistory: d.MedicalHistory}
	case RoleDoctor:
		return DoctorProfile{Specialization: d.Specialization}
	case RoleAdmin:
		return AdminProfile{}
	}
	return nil
}

// UserFilters narrows user listings. Zero values match everything.
type UserFilters struct {
	Role       Role
	SearchTerm string
	// SearchRole extends the search term to the role name.
	SearchRole bool
}

// Match reports whether u satisfies every set filter. SearchTerm is a
// case-insensitive substring match on name and email.
func (f UserFilters) Match(u User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.SearchTerm == "" {
		return true
	}
	term := strings.ToLower(f.SearchTerm)
	if strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term) {
		return true
	}
	return f.SearchRole && strings.Contains(string(u.Role), term)
}
