package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository/memory"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/errors"
)

func newService(t *testing.T) (*Service, *session.Session, *memory.Store) {
	t.Helper()
	store := memory.NewStore(memory.WithSeed(memory.DemoSeed("")))
	sess := session.New(store)
	return NewService(sess, nil, nil), sess, store
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"John Patient":     "JP",
		"Dr. Sarah Wilson": "DSW",
		"admin":            "A",
		"  double  space ": "DS",
		"élodie roux":      "ÉR",
		"":                 "U",
		"   ":              "U",
	}
	for name, want := range tests {
		assert.Equal(t, want, Initials(name), "name %q", name)
	}
}

func TestView(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.View()
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	require.True(t, sess.Login(memory.DemoDoctorEmail, ""))
	v, err := svc.View()
	require.NoError(t, err)
	assert.Equal(t, "DSW", v.Initials)
	assert.Equal(t, model.ScreenDoctorDashboard, v.BackScreen)
	assert.Equal(t, "2", v.User.ID)
}

func TestSave_IsDisplayOnly(t *testing.T) {
	svc, sess, store := newService(t)
	require.True(t, sess.Login(memory.DemoPatientEmail, ""))
	revision := store.Revision()

	res, err := svc.Save(EditForm{
		Name:           "Johnny Patient",
		DateOfBirth:    "1986-01-01",
		Specialization: "ignored for patients",
	})
	require.NoError(t, err)

	assert.Equal(t, MsgSaved, res.Message)
	assert.Equal(t, "Johnny Patient", res.View.User.Name)
	p, ok := res.View.User.Patient()
	require.True(t, ok)
	assert.Equal(t, "1986-01-01", p.DateOfBirth)
	assert.Equal(t, "No known allergies", p.MedicalHistory)

	stored, _ := store.FindUserByID("1")
	assert.Equal(t, "John Patient", stored.Name)
	current, _ := sess.CurrentUser()
	assert.Equal(t, "John Patient", current.Name)
	assert.Equal(t, revision, store.Revision())
}

func TestSave_Rejections(t *testing.T) {
	svc, sess, _ := newService(t)

	_, err := svc.Save(EditForm{Name: "x"})
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))

	require.True(t, sess.Login(memory.DemoPatientEmail, ""))
	_, err = svc.Save(EditForm{DateOfBirth: "15/06/1985"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrBadRequest))
	assert.Equal(t, []string{"date_of_birth"}, err.(*errors.AppError).Fields)
}

func TestBack(t *testing.T) {
	svc, sess, _ := newService(t)
	require.True(t, sess.Login(memory.DemoAdminEmail, ""))
	sess.SetActiveScreen(model.ScreenProfile)

	assert.Equal(t, model.ScreenAdminPanel, svc.Back())
	assert.Equal(t, model.ScreenAdminPanel, sess.ActiveScreen())
}
