package memory

import (
	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
)

// ListMedicalRecords returns the records selected by match, in insertion
// order. A nil match selects all of them.
func (s *Store) ListMedicalRecords(match repository.MedicalRecordMatch) []model.MedicalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.MedicalRecord, 0, len(s.records))
	for _, r := range s.records {
		if match == nil || match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) AddMedicalRecord(draft model.MedicalRecordDraft) model.MedicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.MedicalRecord{
		ID:           s.newID(),
		PatientID:    draft.PatientID,
		DoctorID:     draft.DoctorID,
		Date:         draft.Date,
		Diagnosis:    draft.Diagnosis,
		Prescription: draft.Prescription,
		Notes:        draft.Notes,
	}
	s.records = append(s.records, r)
	s.inserted(CollectionMedicalRecords, r.ID, len(s.records))
	return r
}
