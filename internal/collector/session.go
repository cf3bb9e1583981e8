package collector

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/tracepipe/internal/logger"
	"github.com/samcharles93/tracepipe/pkg/tracefile"
)

// Mode selects how events reach a session's trace writer.
type Mode string

const (
	// ModeDrain queues submitted events and writes them from a single
	// dedicated goroutine. The writer runs without locking.
	ModeDrain Mode = "drain"

	// ModeDirect writes events on the submitting goroutine. Any number
	// of goroutines may submit concurrently; the writer locks around
	// block flushes.
	ModeDirect Mode = "direct"
)

// Session is one live trace recording bound to one output file. A session
// is created by a Manager and closed exactly once.
type Session struct {
	ID     uuid.UUID
	Name   string
	Path   string
	Mode   Mode
	Opened time.Time

	file   *os.File
	writer *tracefile.Writer
	log    logger.Logger

	typesMu sync.RWMutex
	types   map[typeKey]*tracefile.EventTypeDescriptor

	// stateMu orders Submit against close: submits hold the read lock,
	// close holds the write lock while marking the session closed.
	stateMu sync.RWMutex
	closed  bool

	queue    chan *tracefile.EventInstance
	drained  chan struct{}
	drainErr error

	events  atomic.Uint64
	dropped atomic.Uint64
}

type typeKey struct {
	provider string
	eventID  uint32
	version  uint32
}

// Summary reports what a finished session wrote.
type Summary struct {
	ID       uuid.UUID
	Name     string
	Path     string
	Events   uint64
	Dropped  uint64
	Duration time.Duration
}

// RegisterType makes an event type submittable by its (provider, event id,
// version) triple. Re-registering a triple replaces the descriptor.
func (s *Session) RegisterType(d *tracefile.EventTypeDescriptor) {
	s.typesMu.Lock()
	defer s.typesMu.Unlock()
	s.types[typeKey{d.Provider, d.EventID, d.Version}] = d
}

// LookupType resolves a registered event type.
func (s *Session) LookupType(provider string, eventID, version uint32) (*tracefile.EventTypeDescriptor, bool) {
	s.typesMu.RLock()
	defer s.typesMu.RUnlock()
	d, ok := s.types[typeKey{provider, eventID, version}]
	return d, ok
}

// Submit hands one event instance to the session. In drain mode the event
// is queued and written asynchronously; a full queue drops the event and
// counts it. In direct mode the event is written on the calling goroutine.
func (s *Session) Submit(inst *tracefile.EventInstance) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.closed {
		return ErrSessionClosed
	}

	if s.Mode == ModeDrain {
		select {
		case s.queue <- inst:
			s.events.Add(1)
			return nil
		default:
			s.dropped.Add(1)
			return ErrQueueFull
		}
	}

	if err := s.writer.WriteEvent(inst); err != nil {
		return err
	}
	s.events.Add(1)
	return nil
}

// drain is the single writer goroutine for ModeDrain sessions.
func (s *Session) drain() {
	defer close(s.drained)
	for inst := range s.queue {
		if err := s.writer.WriteEvent(inst); err != nil {
			if s.drainErr == nil {
				s.drainErr = err
			}
			s.log.Error("drain write failed", "session", s.ID, "error", err)
		}
	}
}

// close finalizes the trace file. Safe to call once; the Manager enforces
// that.
func (s *Session) close() (Summary, error) {
	s.stateMu.Lock()
	if s.closed {
		s.stateMu.Unlock()
		return Summary{}, ErrSessionClosed
	}
	s.closed = true
	s.stateMu.Unlock()

	if s.Mode == ModeDrain {
		close(s.queue)
		<-s.drained
	}

	summary := Summary{
		ID:       s.ID,
		Name:     s.Name,
		Path:     s.Path,
		Events:   s.events.Load(),
		Dropped:  s.dropped.Load(),
		Duration: time.Since(s.Opened),
	}

	err := s.drainErr
	if werr := s.writer.Close(); werr != nil && err == nil {
		err = werr
	}
	if cerr := s.file.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return summary, fmt.Errorf("collector: finalize session %s: %w", s.ID, err)
	}
	return summary, nil
}
