package model

import "strings"

// MedicalRecord is an entry written by a doctor for a patient. Records
// are immutable once stored.
type MedicalRecord struct {
	ID           string `json:"id"`
	PatientID    string `json:"patient_id"`
	DoctorID     string `json:"doctor_id"`
	Date         string `json:"date"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// MedicalRecordDraft is a record without an id.
type MedicalRecordDraft struct {
	PatientID    string
	DoctorID     string
	Date         string
	Diagnosis    string
	Prescription string
	Notes        string
}

// RecordFilters narrows record listings. Zero values match everything.
type RecordFilters struct {
	PatientID  string
	DoctorID   string
	SearchTerm string
}

// Match reports whether r satisfies every set filter. SearchTerm is a
// case-insensitive substring match on diagnosis, prescription and notes.
func (f RecordFilters) Match(r MedicalRecord) bool {
	if f.PatientID != "" && r.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && r.DoctorID != f.DoctorID {
		return false
	}
	if f.SearchTerm == "" {
		return true
	}
	term := strings.ToLower(f.SearchTerm)
	return strings.Contains(strings.ToLower(r.Diagnosis), term) ||
		strings.Contains(strings.ToLower(r.Prescription), term) ||
		strings.Contains(strings.ToLower(r.Notes), term)
}
