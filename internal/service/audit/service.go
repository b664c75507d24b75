package audit

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/health-portal/pkg/logger"
)

// Actions recorded in the trail.
const (
	ActionLogin       = "login"
	ActionLoginFailed = "login_failed"
	ActionLogout      = "logout"
	ActionRegister    = "register"
	ActionBook        = "book"
	ActionCreate      = "create"
)

// Entity types recorded in the trail.
const (
	EntityAuth          = "auth"
	EntityUser          = "user"
	EntityAppointment   = "appointment"
	EntityMedicalRecord = "medical_record"
)

// Entry is one line of the activity trail.
type Entry struct {
	ID         string                 `json:"id"`
	ActorID    string                 `json:"actor_id,omitempty"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	ActorID    string
	Action     string
	EntityType string
}

func (f Filter) match(e Entry) bool {
	return (f.ActorID == "" || e.ActorID == f.ActorID) &&
		(f.Action == "" || e.Action == f.Action) &&
		(f.EntityType == "" || e.EntityType == f.EntityType)
}

// Service keeps an append-only, in-memory activity trail.
type Service struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
	log     *logger.Logger
}

func NewService(log *logger.Logger, now func() time.Time) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		entries: make([]Entry, 0),
		now:     now,
		log:     log,
	}
}

// Log appends an entry to the trail
func (s *Service) Log(actorID, action, entityType, entityID string, metadata map[string]interface{}) {
	entry := Entry{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  s.now(),
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	s.log.Debug("audit", "action", action, "entity_type", entityType, "entity_id", entityID, "actor_id", actorID)
}

// List returns matching entries oldest first.
func (s *Service) List(filter Filter) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.match(e) {
			out = append(out, e)
		}
	}
	return out
}

// Recent returns up to n entries, newest first.
func (s *Service) Recent(n int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
