package dashboard

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository/memory"
	"github.com/jwalitptl/health-portal/internal/service/appointment"
	"github.com/jwalitptl/health-portal/internal/service/audit"
	"github.com/jwalitptl/health-portal/internal/service/medical"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/errors"
	"github.com/jwalitptl/health-portal/pkg/metrics"
)

const today = "2025-08-27"

type fixture struct {
	svc     *Service
	store   *memory.Store
	trail   *audit.Service
	metrics *metrics.Metrics

	patient, doctor, admin model.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	clock := func() time.Time { return time.Date(2025, 8, 27, 8, 0, 0, 0, time.UTC) }

	store := memory.NewStore(memory.WithSeed(memory.DemoSeed("")))
	sess := session.New(store)
	trail := audit.NewService(nil, nil)
	m := metrics.NewMetrics(prometheus.NewRegistry(), "portal", "")

	apts := appointment.NewService(store, sess, appointment.Config{}, appointment.WithClock(clock))
	records := medical.NewService(store, sess, medical.WithClock(clock))
	svc := NewService(store, apts, records, Config{UpcomingLimit: 2, RecentLimit: 3},
		WithAuditor(trail), WithMetrics(m))

	f := fixture{svc: svc, store: store, trail: trail, metrics: m}
	f.patient, _ = store.FindUserByID("1")
	f.doctor, _ = store.FindUserByID("2")
	f.admin, _ = store.FindUserByID("3")
	return f
}

func (f fixture) book(date string, status model.AppointmentStatus) model.Appointment {
	return f.store.BookAppointment(model.AppointmentDraft{
		PatientID: "1", DoctorID: "2", Date: date, Time: "09:00", Status: status,
	})
}

func TestPatientSummary(t *testing.T) {
	f := newFixture(t)
	first := f.book("2025-08-28", "")
	f.book("2025-08-29", "")
	f.book("2025-09-01", "")
	f.book("2025-08-20", model.AppointmentStatusCompleted)
	f.store.AddMedicalRecord(model.MedicalRecordDraft{PatientID: "1", DoctorID: "2", Diagnosis: "d", Prescription: "p"})

	sum := f.svc.Patient(f.patient)

	assert.Equal(t, 3, sum.UpcomingCount)
	require.Len(t, sum.Upcoming, 2)
	assert.Equal(t, first, sum.Upcoming[0])
	assert.Equal(t, 1, sum.RecordCount)
	assert.Equal(t, 4, sum.TotalAppointments)
}

func TestDoctorSummary(t *testing.T) {
	f := newFixture(t)
	f.store.AddUser(model.UserDraft{Name: "Second Patient", Email: "p2@demo.com", Role: model.RolePatient})
	f.book(today, "")
	f.book(today, model.AppointmentStatusCancelled)
	f.book("2025-08-28", "")

	sum := f.svc.Doctor(f.doctor)

	require.Len(t, sum.Today, 1)
	assert.Equal(t, model.AppointmentStatusScheduled, sum.Today[0].Status)
	assert.Equal(t, 2, sum.PatientCount)
	assert.Equal(t, 0, sum.RecordCount)
	assert.Equal(t, 3, sum.TotalAppointments)
}

func TestAdminSummary(t *testing.T) {
	f := newFixture(t)
	f.book(today, "")
	f.book(today, model.AppointmentStatusCompleted)
	f.book("2025-08-28", model.AppointmentStatusCancelled)
	f.book("2025-08-29", "")
	f.store.AddMedicalRecord(model.MedicalRecordDraft{PatientID: "1", DoctorID: "2"})

	sum := f.svc.Admin()

	assert.Equal(t, 3, sum.TotalUsers)
	assert.Equal(t, 1, sum.Patients)
	assert.Equal(t, 1, sum.Doctors)
	assert.Equal(t, 1, sum.Admins)
	assert.Equal(t, 4, sum.TotalAppointments)
	assert.Equal(t, 1, sum.TotalRecords)
	assert.Equal(t, 2, sum.Scheduled)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 2, sum.Today)
	require.Len(t, sum.Appointments, 3)
	assert.Equal(t, today, sum.Appointments[0].Date)
}

func TestSummaryCache(t *testing.T) {
	f := newFixture(t)
	f.book("2025-08-28", "")

	first := f.svc.Admin()
	second := f.svc.Admin()
	assert.Equal(t, first, second)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DashboardCache.WithLabelValues(metrics.CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DashboardCache.WithLabelValues(metrics.CacheHit)))

	// Mutating a returned summary must not leak into the cache.
	second.Appointments[0].Notes = "changed"
	assert.Empty(t, f.svc.Admin().Appointments[0].Notes)

	// Any insert invalidates the cached summary.
	f.book("2025-08-29", "")
	assert.Equal(t, 2, f.svc.Admin().TotalAppointments)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.DashboardCache.WithLabelValues(metrics.CacheMiss)))
}

func TestSearchUsers(t *testing.T) {
	f := newFixture(t)

	all, err := f.svc.SearchUsers(f.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byRole, err := f.svc.SearchUsers(f.admin, "DOCTOR")
	require.NoError(t, err)
	require.Len(t, byRole, 1)
	assert.Equal(t, "2", byRole[0].ID)

	// Doctors only ever see patients.
	patients, err := f.svc.SearchUsers(f.doctor, "demo.com")
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, "1", patients[0].ID)

	none, err := f.svc.SearchUsers(f.doctor, "doctor")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.SearchUsers(f.patient, "")
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))
}

func TestRecentActivity(t *testing.T) {
	f := newFixture(t)
	f.trail.Log("1", audit.ActionLogin, audit.EntityAuth, "1", nil)
	f.trail.Log("1", audit.ActionBook, audit.EntityAppointment, "a", nil)

	entries, err := f.svc.RecentActivity(f.admin, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionBook, entries[0].Action)

	_, err = f.svc.RecentActivity(f.doctor, 1)
	assert.True(t, errors.IsCode(err, errors.ErrForbidden))
}
