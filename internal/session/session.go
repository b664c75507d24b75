// Package session tracks who is signed in to the portal and which screen
// is showing.
package session

import (
	"sync"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
	"github.com/jwalitptl/health-portal/internal/service/audit"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
)

// State is either Anonymous or Authenticated.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Auditor receives one entry per login, logout and registration.
type Auditor interface {
	Log(actorID, action, entityType, entityID string, metadata map[string]interface{})
}

// Session holds the active user and active screen. It derives everything
// from the user repository and never keeps its own copy of other users.
type Session struct {
	mu     sync.RWMutex
	user   *model.User
	screen model.Screen

	users    repository.UserRepository
	verifier CredentialVerifier
	auditor  Auditor
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithVerifier replaces the default AcceptAny verifier.
func WithVerifier(v CredentialVerifier) Option {
	return func(s *Session) {
		if v != nil {
			s.verifier = v
		}
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Session) {
		s.auditor = a
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// New starts an anonymous session on the home screen.
func New(users repository.UserRepository, opts ...Option) *Session {
	s := &Session{
		screen:   model.ScreenHome,
		users:    users,
		verifier: AcceptAny{},
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Login looks email up and, when found and the verifier accepts the
// credential, authenticates as that user and moves to the role's dashboard.
// A failed login leaves the session untouched.
func (s *Session) Login(email, credential string) bool {
	user, ok := s.users.FindUserByEmail(email)
	if ok && !s.verifier.Verify(user, credential) {
		ok = false
	}

	s.metrics.ObserveLogin(ok)
	if !ok {
		s.log.Warn("login rejected", "email", email)
		s.audit("", audit.ActionLoginFailed, audit.EntityAuth, "", map[string]interface{}{"email": email})
		return false
	}

	s.authenticate(user)
	s.log.Info("login", "user_id", user.ID, "role", string(user.Role))
	s.audit(user.ID, audit.ActionLogin, audit.EntityAuth, user.ID, nil)
	return true
}

// Register adds a user built from draft and signs in as them. It always
// succeeds; presence, password and role checks belong to the caller. A
// role other than patient or doctor lands on the admin panel.
func (s *Session) Register(draft model.UserDraft) model.User {
	user := s.users.AddUser(draft)

	s.metrics.ObserveRegistration(string(user.Role))
	s.authenticate(user)
	s.log.Info("registered", "user_id", user.ID, "role", string(user.Role))
	s.audit(user.ID, audit.ActionRegister, audit.EntityUser, user.ID, map[string]interface{}{"role": string(user.Role)})
	return user
}

// Logout returns to the anonymous state on the home screen.
func (s *Session) Logout() {
	s.mu.Lock()
	prev := s.user
	s.user = nil
	s.screen = model.ScreenHome
	s.mu.Unlock()

	if prev == nil {
		return
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	s.log.Info("logout", "user_id", prev.ID)
	s.audit(prev.ID, audit.ActionLogout, audit.EntityAuth, prev.ID, nil)
}

// SetActiveScreen navigates to name. Any name is accepted in any state;
// screens decide for themselves whether an anonymous visitor may see them.
func (s *Session) SetActiveScreen(name model.Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen = name
}

func (s *Session) ActiveScreen() model.Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.screen
}

// CurrentUser returns the authenticated user, if any.
func (s *Session) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Anonymous
	}
	return Authenticated
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) authenticate(user model.User) {
	s.mu.Lock()
	wasAnonymous := s.user == nil
	s.user = &user
	s.screen = model.DashboardFor(user.Role)
	s.mu.Unlock()

	if wasAnonymous && s.metrics != nil {
		s.metrics.ActiveSessions.Inc()
	}
}

func (s *Session) audit(actorID, action, entityType, entityID string, metadata map[string]interface{}) {
	if s.auditor == nil {
		return
	}
	s.auditor.Log(actorID, action, entityType, entityID, metadata)
}
