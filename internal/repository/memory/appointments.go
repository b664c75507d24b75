package memory

import (
	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
)

// ListAppointments returns the appointments selected by match, in booking
// order. A nil match selects all of them.
func (s *Store) ListAppointments(match repository.AppointmentMatch) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Appointment, 0, len(s.apts))
	for _, a := range s.apts {
		if match == nil || match(a) {
			out = append(out, a)
		}
	}
	return out
}

// BookAppointment appends an appointment with a fresh id. Status defaults to
// scheduled. Conflicts, past dates and foreign keys are not checked here.
func (s *Store) BookAppointment(draft model.AppointmentDraft) model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := draft.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}

	a := model.Appointment{
		ID:          s.newID(),
		PatientID:   draft.PatientID,
		DoctorID:    draft.DoctorID,
		PatientName: draft.PatientName,
		DoctorName:  draft.DoctorName,
		Date:        draft.Date,
		Time:        draft.Time,
		Status:      status,
		Notes:       draft.Notes,
	}
	s.apts = append(s.apts, a)
	s.inserted(CollectionAppointments, a.ID, len(s.apts))
	return a
}
