package model

// Screen names a view the session can navigate to. Any string is a valid
// Screen; the constants below are the ones the portal ships with.
type Screen string

const (
	ScreenHome               Screen = "home"
	ScreenLogin              Screen = "login"
	ScreenPatientDashboard   Screen = "patient-dashboard"
	ScreenDoctorDashboard    Screen = "doctor-dashboard"
	ScreenAdminPanel         Screen = "admin-panel"
	ScreenAppointmentBooking Screen = "appointment-booking"
	ScreenMedicalRecords     Screen = "medical-records"
	ScreenProfile            Screen = "profile"
)

// DashboardFor returns the landing screen for role. Unknown roles land on
// the admin panel, which is what the profile back button does too.
func DashboardFor(role Role) Screen {
	switch role {
	case RolePatient:
		return ScreenPatientDashboard
	case RoleDoctor:
		return ScreenDoctorDashboard
	default:
		return ScreenAdminPanel
	}
}
