package job

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for operations on unknown job ids.
var ErrNotFound = errors.New("job not found")

// Store is the explicit registry of job records. The pipeline controller is
// the only writer; transports read snapshots.
type Store interface {
	Create(filename string) Job
	Get(id string) (Job, error)
	List() []Job
	Transition(id string, to Status) error
	SetProgress(id string, segments, completed int) error
	SetError(id string, msg string) error
	Evict(id string) bool
}

type memStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
	now  func() time.Time
}

// NewStore returns an in-memory Store.
func NewStore() Store {
	return &memStore{
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

func (s *memStore) Create(filename string) Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		ID:        NewID(),
		Status:    StatusQueued,
		Filename:  filename,
		CreatedAt: s.now().UTC(),
	}
	s.jobs[j.ID] = j
	return *j
}

func (s *memStore) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

func (s *memStore) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, *j)
	}
	return out
}

func (s *memStore) Transition(id string, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status == to {
		return nil
	}
	if !validTransition(j.Status, to) {
		return errInvalidTransition(j.Status, to)
	}
	j.Status = to
	if to.Terminal() {
		j.DoneAt = s.now().UTC()
	}
	return nil
}

func (s *memStore) SetProgress(id string, segments, completed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Segments = segments
	j.Completed = completed
	return nil
}

func (s *memStore) SetError(id string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	j.Error = msg
	return nil
}

func (s *memStore) Evict(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	return true
}
