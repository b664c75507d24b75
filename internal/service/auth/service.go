package auth

import (
	stderrors "errors"
	"strings"

	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/session"
	"github.com/jwalitptl/health-portal/pkg/errors"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
	"github.com/jwalitptl/health-portal/pkg/security"
	"github.com/jwalitptl/health-portal/pkg/validator"
)

// Messages shown next to the login and registration forms.
const (
	MsgMissingLoginFields = "Please fill in all fields"
	MsgMissingFields      = "Please fill in all required fields"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidRole        = "Please choose a valid role"
	MsgPasswordTooShort   = "Password is too short"
	MsgPasswordTooLong    = "Password is too long"
	MsgTooManyAttempts    = "Too many sign-in attempts, please try again later"
)

// Form names used for rejection metrics.
const (
	FormLogin    = "login"
	FormRegister = "register"
)

// LoginForm is the sign-in form as submitted.
type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterForm is the sign-up form as submitted. Role defaults to patient.
// Fields that do not belong to the chosen role are discarded.
type RegisterForm struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"eqfield=Password"`
	Role            string `json:"role"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"date_of_birth"`
	MedicalHistory  string `json:"medical_history"`
	Specialization  string `json:"specialization"`
}

// Service checks the login and registration forms before handing them to
// the session. With a hasher set, registration stores a bcrypt hash of
// the password.
type Service struct {
	session   *session.Session
	validator validator.Validator
	hasher    security.PasswordHasher
	log       *logger.Logger
	metrics   *metrics.Metrics
	throttle  *loginThrottle
}

type Option func(*Service)

// WithLoginLimit allows burst sign-in attempts per email, refilled at
// limit per second. A zero limit leaves sign-in unthrottled.
func WithLoginLimit(limit rate.Limit, burst int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.throttle = newLoginThrottle(limit, burst)
		}
	}
}

// NewService wires the form handling. A nil hasher keeps passwords out of
// the store entirely.
func NewService(sess *session.Session, v validator.Validator, hasher security.PasswordHasher,
	log *logger.Logger, m *metrics.Metrics, opts ...Option) *Service {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	s := &Service{
		session:   sess,
		validator: v,
		hasher:    hasher,
		log:       log,
		metrics:   m,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login requires both fields before consulting the store, then signs in.
func (s *Service) Login(form LoginForm) (model.User, error) {
	if err := s.validator.Validate(form); err != nil {
		return model.User{}, s.reject(FormLogin, MsgMissingLoginFields, err)
	}

	if s.throttle != nil && !s.throttle.allow(form.Email) {
		s.metrics.ObserveRejection(FormLogin)
		s.log.Warn("login throttled", "email", form.Email)
		return model.User{}, errors.TooManyRequests(MsgTooManyAttempts)
	}

	if !s.session.Login(form.Email, form.Password) {
		return model.User{}, errors.Unauthorized(MsgInvalidCredentials)
	}

	user, _ := s.session.CurrentUser()
	return user, nil
}

// Register validates the form, adds the user and signs in as them.
func (s *Service) Register(form RegisterForm) (model.User, error) {
	role := model.RolePatient
	if strings.TrimSpace(form.Role) != "" {
		r, ok := model.ParseRole(form.Role)
		if !ok {
			return model.User{}, s.reject(FormRegister, MsgInvalidRole, nil, "role")
		}
		role = r
	}

	if err := s.validator.Validate(form); err != nil {
		var fe validator.FieldErrors
		if stderrors.As(err, &fe) && len(fe) == 1 && fe.Has("confirm_password", "eqfield") {
			return model.User{}, s.reject(FormRegister, MsgPasswordMismatch, err)
		}
		return model.User{}, s.reject(FormRegister, MsgMissingFields, err)
	}

	draft := model.UserDraft{
		Name:  form.Name,
		Email: form.Email,
		Role:  role,
		Phone: form.Phone,
	}
	switch role {
	case model.RolePatient:
		draft.DateOfBirth = form.DateOfBirth
		draft.MedicalHistory = form.MedicalHistory
	case model.RoleDoctor:
		draft.Specialization = form.Specialization
	}

	if s.hasher != nil {
		hash, err := s.hasher.Hash(form.Password)
		if stderrors.Is(err, security.ErrPasswordTooShort) {
			return model.User{}, s.reject(FormRegister, MsgPasswordTooShort, err, "password")
		}
		if stderrors.Is(err, security.ErrPasswordTooLong) {
			return model.User{}, s.reject(FormRegister, MsgPasswordTooLong, err, "password")
		}
		if err != nil {
			s.log.Error(err, "hash password")
			return model.User{}, errors.Internal(err)
		}
		draft.PasswordHash = hash
	}

	return s.session.Register(draft), nil
}

// Logout ends the current session.
func (s *Service) Logout() {
	s.session.Logout()
}

func (s *Service) reject(form, message string, err error, fields ...string) error {
	var fe validator.FieldErrors
	if len(fields) == 0 && stderrors.As(err, &fe) {
		fields = fe.Fields()
	}
	s.metrics.ObserveRejection(form)
	s.log.Debug("form rejected", "form", form, "reason", message, "fields", strings.Join(fields, ","))
	return errors.Invalid(message, fields, err)
}
