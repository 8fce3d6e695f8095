package users

import (
	"sync"

	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/tidwall/btree"
	"go.uber.org/zap"
)

// DefaultSeed returns the records every fresh process starts with
func DefaultSeed() []User {
	return []User{
		{ID: 1, Name: "John", Email: "john@example.com"},
		{ID: 2, Name: "Jane", Email: "jane@example.com"},
	}
}

// Store holds user records in memory, ordered by insertion. Records are
// keyed by an insertion sequence; seqByID resolves an id to its slot.
type Store struct {
	mu      sync.RWMutex
	records *btree.Map[uint64, User]
	seqByID map[int64]uint64
	nextSeq uint64
	lastID  int64
	logger  *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithSeed replaces the default seed records
func WithSeed(seed ...User) Option {
	return func(s *Store) {
		s.records = btree.NewMap[uint64, User](32)
		s.seqByID = make(map[int64]uint64, len(seed))
		s.nextSeq, s.lastID = 0, 0
		for _, u := range seed {
			s.put(u.Clone())
		}
	}
}

// NewStore creates a store seeded with DefaultSeed unless overridden
func NewStore(logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{logger: logger.Named("store")}
	WithSeed(DefaultSeed()...)(s)
	for _, opt := range opts {
		opt(s)
	}
	metrics.UsersStored.Set(float64(s.records.Len()))
	return s
}

// Len returns the number of stored records
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.Len()
}

// List returns a snapshot of every record in insertion order
func (s *Store) List() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, s.records.Len())
	s.records.Scan(func(_ uint64, u User) bool {
		out = append(out, u.Clone())
		return true
	})
	return out
}

// Get returns the record with the given id
func (s *Store) Get(id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.lookup(id)
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u.Clone(), nil
}

// Create validates u, assigns the next id and appends it. The id is the
// store length plus one when that id is free, otherwise one past the
// highest id ever assigned.
func (s *Store) Create(u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u = u.Clone()
	u.ID = s.nextID()
	s.put(u)
	s.mutated("create")

	s.logger.Debug("user created", zap.Int64("id", u.ID))
	return u.Clone(), nil
}

// Replace swaps every field of the record except its id
func (s *Store) Replace(id int64, u User) (User, error) {
	if err := u.Validate(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.seqByID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	u = u.Clone()
	u.ID = id
	s.records.Set(seq, u)
	s.mutated("replace")

	s.logger.Debug("user replaced", zap.Int64("id", id))
	return u.Clone(), nil
}

// Merge shallow-merges fields onto the record. A submitted id is ignored.
func (s *Store) Merge(id int64, fields Fields) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.seqByID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	cur, _ := s.records.Get(seq)
	merged := cur.Clone()
	if err := fields.apply(&merged); err != nil {
		return User{}, err
	}
	s.records.Set(seq, merged)
	s.mutated("merge")

	s.logger.Debug("user merged", zap.Int64("id", id), zap.Int("fields", len(fields)))
	return merged.Clone(), nil
}

// Delete removes the record with the given id
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, ok := s.seqByID[id]
	if !ok {
		return ErrUserNotFound
	}
	s.records.Delete(seq)
	delete(s.seqByID, id)
	s.mutated("delete")

	s.logger.Debug("user deleted", zap.Int64("id", id))
	return nil
}

// nextID must be called with mu held
func (s *Store) nextID() int64 {
	id := int64(s.records.Len()) + 1
	if _, taken := s.seqByID[id]; taken {
		return s.lastID + 1
	}
	return id
}

// put appends u at the end of the insertion order; mu must be held
func (s *Store) put(u User) {
	s.nextSeq++
	s.records.Set(s.nextSeq, u)
	s.seqByID[u.ID] = s.nextSeq
	if u.ID > s.lastID {
		s.lastID = u.ID
	}
}

func (s *Store) lookup(id int64) (User, bool) {
	seq, ok := s.seqByID[id]
	if !ok {
		return User{}, false
	}
	return s.records.Get(seq)
}

// mutated must be called with mu held
func (s *Store) mutated(op string) {
	metrics.UserMutations.WithLabelValues(op).Inc()
	metrics.UsersStored.Set(float64(s.records.Len()))
}
