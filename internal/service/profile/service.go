package profile

import (
	stderrors "errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/errors"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/validator"
)

const (
	MsgNoUser       = "No user found"
	MsgInvalidField = "Please check the highlighted fields"
	MsgSaved        = "Profile updated"
)

// View is what the profile screen renders.
type View struct {
	User       model.User   `json:"user"`
	Initials   string       `json:"initials"`
	BackScreen model.Screen `json:"back_screen"`
}

// EditForm holds the editable profile fields. Fields that do not belong to
// the user's role are ignored.
type EditForm struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	DateOfBirth    string `json:"date_of_birth" validate:"omitempty,isodate"`
	MedicalHistory string `json:"medical_history"`
	Specialization string `json:"specialization"`
}

// SaveResult is the edited profile as shown after saving.
type SaveResult struct {
	View    View   `json:"view"`
	Message string `json:"message"`
}

// Service backs the profile screen. Saving is display-only: users are
// immutable, so edits are echoed back and never written to the store.
type Service struct {
	session   *session.Session
	validator validator.Validator
	log       *logger.Logger
}

func NewService(sess *session.Session, v validator.Validator, log *logger.Logger) *Service {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{session: sess, validator: v, log: log}
}

// View returns the signed-in user's profile.
func (s *Service) View() (View, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return View{}, errors.Unauthorized(MsgNoUser)
	}
	return viewOf(user), nil
}

// Save applies form to a copy of the signed-in user and returns it. The
// store and the session keep the stored user.
func (s *Service) Save(form EditForm) (SaveResult, error) {
	user, ok := s.session.CurrentUser()
	if !ok {
		return SaveResult{}, errors.Unauthorized(MsgNoUser)
	}
	if err := s.validator.Validate(form); err != nil {
		var fields []string
		var fe validator.FieldErrors
		if stderrors.As(err, &fe) {
			fields = fe.Fields()
		}
		return SaveResult{}, errors.Invalid(MsgInvalidField, fields, err)
	}

	edited := user
	if form.Name != "" {
		edited.Name = form.Name
	}
	if form.Email != "" {
		edited.Email = form.Email
	}
	if form.Phone != "" {
		edited.Phone = form.Phone
	}
	switch p := user.Profile.(type) {
	case model.PatientProfile:
		if form.DateOfBirth != "" {
			p.DateOfBirth = form.DateOfBirth
		}
		if form.MedicalHistory != "" {
			p.MedicalHistory = form.MedicalHistory
		}
		edited.Profile = p
	case model.DoctorProfile:
		if form.Specialization != "" {
			p.Specialization = form.Specialization
		}
		edited.Profile = p
	}

	s.log.Info("profile save requested", "user_id", user.ID)
	return SaveResult{View: viewOf(edited), Message: MsgSaved}, nil
}

// Back navigates to the signed-in user's dashboard.
func (s *Service) Back() model.Screen {
	user, _ := s.session.CurrentUser()
	screen := model.DashboardFor(user.Role)
	s.session.SetActiveScreen(screen)
	return screen
}

func viewOf(user model.User) View {
	return View{
		User:       user,
		Initials:   Initials(user.Name),
		BackScreen: model.DashboardFor(user.Role),
	}
}

// Initials takes the first letter of each space-separated word in name,
// upper-cased. An empty result becomes "U".
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}
