// Package memory holds the in-memory domain store: three append-only
// collections guarded by a single writer lock.
package memory

import (
	"sync"

	"github.com/jwalitptl/health-portal/internal/model"
	"github.com/jwalitptl/health-portal/internal/repository"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/metrics"
)

var _ repository.DomainStore = (*Store)(nil)

// Collection names used in logs and metrics.
const (
	CollectionUsers          = "users"
	CollectionAppointments   = "appointments"
	CollectionMedicalRecords = "medical_records"
)

// Store owns users, appointments and medical records. Reads return copies
// in insertion order; writes only ever append. A write is visible to every
// read that starts after it returns.
type Store struct {
	mu       sync.RWMutex
	users    []model.User
	apts     []model.Appointment
	records  []model.MedicalRecord
	ids      map[string]struct{}
	revision uint64

	idGen   IDGenerator
	log     *logger.Logger
	metrics *metrics.Metrics
	pending []SeedData
}

// Option configures a Store.
type Option func(*Store)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.idGen = gen
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithSeed preloads the store. Seed entries keep their ids and are applied
// after every other option.
func WithSeed(data SeedData) Option {
	return func(s *Store) {
		s.pending = append(s.pending, data)
	}
}

// NewStore creates an empty store with uuid ids unless configured otherwise.
func NewStore(opts ...Option) *Store {
	s := &Store{
		users:   make([]model.User, 0),
		apts:    make([]model.Appointment, 0),
		records: make([]model.MedicalRecord, 0),
		ids:     make(map[string]struct{}),
		idGen:   UUIDGenerator{},
		log:     logger.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	for _, data := range s.pending {
		s.seed(data)
	}
	s.pending = nil
	return s
}

// Revision increases by one on every insert, seed entries included.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// newID draws ids until one is unused. Caller holds the write lock.
func (s *Store) newID() string {
	for {
		id := s.idGen.NewID()
		if _, taken := s.ids[id]; !taken && id != "" {
			s.ids[id] = struct{}{}
			return id
		}
	}
}

// seedID keeps a seeded id unless it is empty or already taken, in which
// case a fresh one is drawn. Caller holds the write lock.
func (s *Store) seedID(collection, id string) string {
	if id == "" {
		return s.newID()
	}
	if _, taken := s.ids[id]; taken {
		fresh := s.newID()
		s.log.Warn("duplicate seed id replaced", "collection", collection, "id", id, "new_id", fresh)
		return fresh
	}
	s.ids[id] = struct{}{}
	return id
}

// inserted bumps the revision and reports the insert. Caller holds the
// write lock.
func (s *Store) inserted(collection, id string, size int) {
	s.revision++
	s.metrics.ObserveInsert(collection, size)
	s.log.Debug("record appended", "collection", collection, "id", id, "size", size)
}
