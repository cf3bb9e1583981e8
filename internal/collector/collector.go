// Package collector manages live trace sessions: it opens trace files,
// routes submitted events to the right writer, and finalizes files when
// sessions close.
package collector

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samcharles93/tracepipe/internal/logger"
	"github.com/samcharles93/tracepipe/internal/sysinfo"
	"github.com/samcharles93/tracepipe/pkg/tracefile"
)

var (
	ErrSessionClosed   = errors.New("collector: session closed")
	ErrSessionNotFound = errors.New("collector: session not found")
	ErrQueueFull       = errors.New("collector: event queue full")
)

const defaultQueueSize = 4096

// Config configures a Manager. The zero value writes to the current
// directory with default capacity and queue depth.
type Config struct {
	// Dir is the directory trace files are written to.
	Dir string

	// BlockCapacity is the event block size in bytes; 0 uses the
	// tracefile default.
	BlockCapacity int

	// QueueSize is the drain queue depth for ModeDrain sessions.
	QueueSize int

	// SamplingRateNs is recorded in every trace header.
	SamplingRateNs uint32
}

// Manager owns all live sessions.
type Manager struct {
	cfg Config
	log logger.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func NewManager(cfg Config, log logger.Logger) *Manager {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		cfg:      cfg,
		log:      log,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates a trace file and starts a new session over it. The file
// name derives from the session name and id, so concurrent sessions never
// collide.
func (m *Manager) Open(name string, mode Mode) (*Session, error) {
	switch mode {
	case ModeDrain, ModeDirect:
	case "":
		mode = ModeDrain
	default:
		return nil, fmt.Errorf("collector: unknown session mode %q", mode)
	}

	id := uuid.New()
	path := filepath.Join(m.cfg.Dir, traceFileName(name, id))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("collector: create trace file: %w", err)
	}

	env := sysinfo.Collect(m.cfg.SamplingRateNs)
	writerMode := tracefile.SingleWriter
	if mode == ModeDirect {
		writerMode = tracefile.MultiWriter
	}
	w, err := tracefile.NewWriter(f, tracefile.WriterConfig{
		BlockCapacity: m.cfg.BlockCapacity,
		Mode:          writerMode,
		Env:           &env,
	})
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}

	s := &Session{
		ID:     id,
		Name:   name,
		Path:   path,
		Mode:   mode,
		Opened: time.Now(),
		file:   f,
		writer: w,
		log:    m.log,
		types:  make(map[typeKey]*tracefile.EventTypeDescriptor),
	}
	if mode == ModeDrain {
		s.queue = make(chan *tracefile.EventInstance, m.cfg.QueueSize)
		s.drained = make(chan struct{})
		go s.drain()
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.log.Info("session opened", "session", id, "name", name, "mode", string(mode), "path", path)
	return s, nil
}

// Get returns a live session by id.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// List returns the live sessions in unspecified order.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// Close finalizes a session and removes it from the manager.
func (m *Manager) Close(id uuid.UUID) (Summary, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return Summary{}, ErrSessionNotFound
	}

	summary, err := s.close()
	if err != nil {
		return summary, err
	}
	m.log.Info("session closed",
		"session", id, "events", summary.Events, "dropped", summary.Dropped,
		"duration", summary.Duration.String())
	return summary, nil
}

// Shutdown closes every live session, returning the first error seen.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var first error
	for _, id := range ids {
		if _, err := m.Close(id); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// traceFileName builds "<name>-<id>.nettrace" with the name reduced to
// filesystem-safe characters.
func traceFileName(name string, id uuid.UUID) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if cleaned == "" {
		cleaned = "trace"
	}
	return fmt.Sprintf("%s-%s.nettrace", cleaned, id.String()[:8])
}
