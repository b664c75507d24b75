package model

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a booked visit. PatientName and DoctorName are snapshots
// taken at booking time and are not kept in sync with the user records.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	DoctorID    string            `json:"doctor_id"`
	PatientName string            `json:"patient_name"`
	DoctorName  string            `json:"doctor_name"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
}

// AppointmentDraft is an appointment without an id.
type AppointmentDraft struct {
	PatientID   string
	DoctorID    string
	PatientName string
	DoctorName  string
	Date        string
	Time        string
	Status      AppointmentStatus
	Notes       string
}

// AppointmentFilters narrows appointment listings. Zero values match
// everything.
type AppointmentFilters struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
	Date      string
}

func (f AppointmentFilters) Match(a Appointment) bool {
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	return true
}
