package main

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/jwalitptl/health-portal/config"
	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository/memory"
	"github.com/jwalitptl/health-portal/internal/service/appointment"
	"github.com/jwalitptl/health-portal/internal/service/audit"
	authService "github.com/jwalitptl/health-portal/internal/service/auth"
	"github.com/jwalitptl/health-portal/internal/service/dashboard"
	"github.com/jwalitptl/health-portal/internal/service/medical"
	"github.com/jwalitptl/health-portal/internal/service/profile"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
	"github.com/jwalitptl/health-portal/pkg/security"
	"github.com/jwalitptl/health-portal/pkg/validator"
)

type portal struct {
	session   *session.Session
	auth      *authService.Service
	apts      *appointment.Service
	records   *medical.Service
	dashboard *dashboard.Service
	profile   *profile.Service
	log       *logger.Logger
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger(nil).Fatal(err, "failed to load configuration")
	}

	log := logger.NewLogger(cfg.Log.ToLoggerConfig())
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg, cfg.Metrics.Namespace, "")

	p, err := build(cfg, log, m)
	if err != nil {
		log.Fatal(err, "failed to build portal")
	}

	if !cfg.Store.SeedDemoData {
		log.Info("demo data disabled, nothing to walk through")
		return
	}

	for _, email := range []string{memory.DemoPatientEmail, memory.DemoDoctorEmail, memory.DemoAdminEmail} {
		if err := p.walk(email, cfg.Auth.DemoPassword); err != nil {
			log.Error(err, "walkthrough failed", "email", email)
		}
	}

	if err := dumpMetrics(reg); err != nil {
		log.Error(err, "failed to write metrics")
	}
}

func build(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*portal, error) {
	idGen, err := memory.NewIDGenerator(cfg.Store.IDStrategy)
	if err != nil {
		return nil, err
	}

	var hasher security.PasswordHasher
	var demoHash string
	if cfg.Auth.VerifyPasswords {
		hasher = security.NewBcryptHasher(cfg.Auth.BcryptCost, cfg.Auth.MinPasswordLength)
		if demoHash, err = hasher.Hash(cfg.Auth.DemoPassword); err != nil {
			return nil, fmt.Errorf("failed to hash demo password: %w", err)
		}
	}

	// Initialize store
	storeOpts := []memory.Option{
		memory.WithIDGenerator(idGen),
		memory.WithLogger(log.With("component", "store")),
		memory.WithMetrics(m),
	}
	if cfg.Store.SeedDemoData {
		storeOpts = append(storeOpts, memory.WithSeed(memory.DemoSeed(demoHash)))
	}
	store := memory.NewStore(storeOpts...)

	// Initialize session
	trail := audit.NewService(log.With("component", "audit"), nil)
	sessOpts := []session.Option{
		session.WithAuditor(trail),
		session.WithLogger(log.With("component", "session")),
		session.WithMetrics(m),
	}
	if hasher != nil {
		sessOpts = append(sessOpts, session.WithVerifier(session.PasswordVerifier{Hasher: hasher}))
	}
	sess := session.New(store, sessOpts...)

	// Initialize services
	v := validator.New()
	apts := appointment.NewService(store, sess, cfg.Booking.ToAppointmentConfig(),
		appointment.WithAuditor(trail),
		appointment.WithLogger(log.With("component", "appointment")),
		appointment.WithMetrics(m),
		appointment.WithValidator(v),
	)
	records := medical.NewService(store, sess,
		medical.WithAuditor(trail),
		medical.WithLogger(log.With("component", "medical")),
		medical.WithMetrics(m),
	)

	return &portal{
		session: sess,
		auth: authService.NewService(sess, v, hasher, log.With("component", "auth"), m,
			authService.WithLoginLimit(cfg.Auth.LoginLimit(), cfg.Auth.LoginBurst),
		),
		apts:    apts,
		records: records,
		dashboard: dashboard.NewService(store, apts, records, cfg.Dashboard.ToDashboardConfig(),
			dashboard.WithAuditor(trail),
			dashboard.WithLogger(log.With("component", "dashboard")),
			dashboard.WithMetrics(m),
		),
		profile: profile.NewService(sess, v, log.With("component", "profile")),
		log:     log,
	}, nil
}

// walk signs in as email, does what that role does on its dashboard and
// signs out again.
func (p *portal) walk(email, password string) error {
	user, err := p.auth.Login(authService.LoginForm{Email: email, Password: password})
	if err != nil {
		return err
	}
	defer p.auth.Logout()

	view, err := p.profile.View()
	if err != nil {
		return err
	}
	log := p.log.With("user_id", user.ID, "role", string(user.Role), "initials", view.Initials)
	log.Info("signed in", "screen", string(p.session.ActiveScreen()))

	switch user.Role {
	case model.RolePatient:
		return p.walkPatient(log, user)
	case model.RoleDoctor:
		return p.walkDoctor(log, user)
	default:
		return p.walkAdmin(log, user)
	}
}

func (p *portal) walkPatient(log *logger.Logger, user model.User) error {
	doctors := p.apts.Doctors()
	if len(doctors) == 0 {
		log.Warn("no doctors to book with")
		return nil
	}

	date, ok := p.nextBookableDate()
	if !ok {
		log.Warn("no bookable date in the next two weeks")
		return nil
	}

	p.session.SetActiveScreen(model.ScreenAppointmentBooking)
	apt, err := p.apts.Book(appointment.BookingForm{
		DoctorID: doctors[0].ID,
		Date:     date,
		Time:     p.apts.TimeSlots()[0],
		Notes:    "Annual check-up",
	})
	if err != nil {
		return err
	}
	log.Info("booked", "appointment_id", apt.ID, "doctor", apt.DoctorName, "date", apt.Date, "slot", apt.Time)

	sum := p.dashboard.Patient(user)
	log.Info("patient dashboard",
		"upcoming", sum.UpcomingCount,
		"records", sum.RecordCount,
		"appointments", sum.TotalAppointments,
	)
	return nil
}

func (p *portal) walkDoctor(log *logger.Logger, user model.User) error {
	patients := p.records.Patients()
	if len(patients) > 0 {
		p.session.SetActiveScreen(model.ScreenMedicalRecords)
		rec, err := p.records.AddRecord(medical.RecordForm{
			PatientID:    patients[0].ID,
			Diagnosis:    "Routine examination",
			Prescription: "None",
			Notes:        "All vitals within normal range",
		})
		if err != nil {
			return err
		}
		log.Info("record added", "record_id", rec.ID, "patient", p.records.PatientName(rec.PatientID))
	}

	sum := p.dashboard.Doctor(user)
	log.Info("doctor dashboard",
		"today", len(sum.Today),
		"patients", sum.PatientCount,
		"records", sum.RecordCount,
		"appointments", sum.TotalAppointments,
	)
	return nil
}

func (p *portal) walkAdmin(log *logger.Logger, user model.User) error {
	sum := p.dashboard.Admin()
	log.Info("admin panel",
		"users", sum.TotalUsers,
		"appointments", sum.TotalAppointments,
		"records", sum.TotalRecords,
		"scheduled", sum.Scheduled,
		"today", sum.Today,
	)

	activity, err := p.dashboard.RecentActivity(user, 5)
	if err != nil {
		return err
	}
	for _, e := range activity {
		log.Info("activity", "action", e.Action, "entity_type", e.EntityType, "entity_id", e.EntityID, "actor_id", e.ActorID)
	}
	return nil
}

func (p *portal) nextBookableDate() (string, bool) {
	day := time.Now()
	for i := 0; i < 14; i++ {
		date := day.AddDate(0, 0, i).Format(validator.DateLayout)
		if p.apts.DateAvailable(date) {
			return date, true
		}
	}
	return "", false
}

func dumpMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
			return err
		}
	}
	return nil
}
