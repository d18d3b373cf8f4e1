package transcript

import "sync"

// Store keeps the canonical transcript per job id until it is evicted.
type Store struct {
	mu sync.RWMutex
	m  map[string]*Transcript
}

func NewStore() *Store {
	return &Store{m: make(map[string]*Transcript)}
}

// Create registers an empty transcript for the job and returns it.
// Calling Create twice for the same id returns the existing transcript.
func (s *Store) Create(jobID string) *Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.m[jobID]; ok {
		return t
	}
	t := &Transcript{}
	s.m[jobID] = t
	return t
}

// Get returns the transcript for the job, if present.
func (s *Store) Get(jobID string) (*Transcript, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.m[jobID]
	return t, ok
}

// Evict removes the transcript for the job. Idempotent.
func (s *Store) Evict(jobID string) {
	s.mu.Lock()
	delete(s.m, jobID)
	s.mu.Unlock()
}

// Len returns the number of stored transcripts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
