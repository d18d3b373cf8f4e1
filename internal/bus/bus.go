package bus

import (
	"sync"
)

// DefaultSubscriberBuffer is the per-cursor queue depth before events are
// dropped for that cursor.
const DefaultSubscriberBuffer = 256

// Subscriber is one independent cursor over a job's event sequence. Events()
// yields every event in publish order; the channel is closed after the job's
// finish event has been delivered or the cursor is unsubscribed.
type Subscriber struct {
	ch     chan Event
	once   sync.Once
	lagged bool
}

// Events returns the cursor's ordered event channel.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}

type jobLog struct {
	nextSeq  int64
	history  []Event
	finished bool
	subs     map[*Subscriber]struct{}
}

// Bus fans events out per job. Publish never blocks on subscriber
// consumption: a cursor whose queue is full has events dropped and receives
// a single warning error event once it drains.
type Bus struct {
	mu     sync.Mutex
	buffer int
	jobs   map[string]*jobLog
}

func New(subscriberBuffer int) *Bus {
	if subscriberBuffer <= 0 {
		subscriberBuffer = DefaultSubscriberBuffer
	}
	return &Bus{
		buffer: subscriberBuffer,
		jobs:   make(map[string]*jobLog),
	}
}

func (b *Bus) log(jobID string) *jobLog {
	l, ok := b.jobs[jobID]
	if !ok {
		l = &jobLog{subs: make(map[*Subscriber]struct{})}
		b.jobs[jobID] = l
	}
	return l
}

// Publish appends the event to the job's ordered log, assigns its sequence
// number, and notifies all current subscribers. Events published after the
// job's finish event are discarded.
func (b *Bus) Publish(jobID string, e Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	l := b.log(jobID)
	if l.finished {
		return e
	}

	l.nextSeq++
	e.Seq = l.nextSeq
	l.history = append(l.history, e)

	for s := range l.subs {
		deliver(s, e)
	}

	if e.Type == KindFinish {
		l.finished = true
		for s := range l.subs {
			s.close()
		}
		l.subs = make(map[*Subscriber]struct{})
	}
	return e
}

// deliver enqueues without blocking. A lagged cursor first gets a warning
// event describing the gap; until there is room for it, everything is
// dropped for that cursor.
func deliver(s *Subscriber, e Event) {
	if s.lagged {
		warn := Event{Seq: e.Seq, Type: KindError, Message: "event stream lagging: events were dropped for this subscriber"}
		select {
		case s.ch <- warn:
			s.lagged = false
		default:
			return
		}
	}
	select {
	case s.ch <- e:
	default:
		s.lagged = true
	}
}

// Subscribe returns a cursor that replays the job's buffered events from job
// start and then follows new publishes. Subscribing to a finished job yields
// the full history and a closed channel.
func (b *Bus) Subscribe(jobID string) *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()

	l := b.log(jobID)
	s := &Subscriber{ch: make(chan Event, b.buffer+len(l.history))}
	for _, e := range l.history {
		s.ch <- e
	}
	if l.finished {
		s.close()
		return s
	}
	l.subs[s] = struct{}{}
	return s
}

// Unsubscribe detaches the cursor and closes its channel. Idempotent.
func (b *Bus) Unsubscribe(jobID string, s *Subscriber) {
	if s == nil {
		return
	}
	b.mu.Lock()
	if l, ok := b.jobs[jobID]; ok {
		delete(l.subs, s)
	}
	b.mu.Unlock()
	s.close()
}

// Evict drops the job's event log and detaches any remaining subscribers.
// Used once a terminal job leaves the retention window.
func (b *Bus) Evict(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.jobs[jobID]
	if !ok {
		return
	}
	for s := range l.subs {
		s.close()
	}
	delete(b.jobs, jobID)
}
