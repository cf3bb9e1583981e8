// Package api exposes the collector over HTTP: sessions are created and
// closed via REST calls and events are submitted as JSON batches.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tracepipe/internal/collector"
	"github.com/samcharles93/tracepipe/internal/logger"
	"github.com/samcharles93/tracepipe/internal/sysinfo"
	"github.com/samcharles93/tracepipe/pkg/tracefile"
)

type Server struct {
	manager *collector.Manager
	log     logger.Logger
}

func NewServer(manager *collector.Manager, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{manager: manager, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/sessions", s.handleListSessions)
	e.POST("/v1/sessions", s.handleCreateSession)
	e.POST("/v1/sessions/:id/types", s.handleRegisterType)
	e.POST("/v1/sessions/:id/events", s.handleSubmitEvents)
	e.DELETE("/v1/sessions/:id", s.handleCloseSession)
}

func (s *Server) handleCreateSession(c *echo.Context) error {
	req, err := decodeJSON[CreateSessionRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Name == "" {
		return writeBadRequest(c, "session name is required")
	}

	sess, err := s.manager.Open(req.Name, collector.Mode(req.Mode))
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusCreated, sessionResponse(sess))
}

func (s *Server) handleListSessions(c *echo.Context) error {
	live := s.manager.List()
	out := SessionListResponse{Sessions: make([]SessionResponse, 0, len(live))}
	for _, sess := range live {
		out.Sessions = append(out.Sessions, sessionResponse(sess))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleRegisterType(c *echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	req, err := decodeJSON[RegisterTypeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Provider == "" || req.Name == "" {
		return writeBadRequest(c, "provider and name are required")
	}

	desc := &tracefile.EventTypeDescriptor{
		Provider: req.Provider,
		EventID:  req.EventID,
		Version:  req.Version,
		Name:     req.Name,
		Level:    req.Level,
		Keywords: req.Keywords,
	}
	for _, f := range req.Fields {
		desc.Fields = append(desc.Fields, tracefile.FieldDescriptor{
			Type: tracefile.FieldType(f.Type),
			Name: f.Name,
		})
	}
	sess.RegisterType(desc)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSubmitEvents(c *echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	req, err := decodeJSON[SubmitEventsRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Events) == 0 {
		return writeBadRequest(c, "no events in batch")
	}

	resp := SubmitEventsResponse{}
	for i, ev := range req.Events {
		inst, err := s.instance(sess, ev)
		if err != nil {
			return writeBadRequest(c, fmt.Sprintf("event %d: %v", i, err))
		}
		switch err := sess.Submit(inst); {
		case err == nil:
			resp.Accepted++
		case errors.Is(err, collector.ErrQueueFull):
			resp.Dropped++
		case errors.Is(err, collector.ErrSessionClosed):
			return writeNotFound(c, "session closed")
		default:
			s.log.Error("event write failed", "session", sess.ID, "error", err)
			return writeError(c, http.StatusInternalServerError, "write_error", err.Error())
		}
	}
	return c.JSON(http.StatusAccepted, resp)
}

func (s *Server) handleCloseSession(c *echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	summary, err := s.manager.Close(sess.ID)
	if err != nil {
		if errors.Is(err, collector.ErrSessionNotFound) {
			return writeNotFound(c, "session not found")
		}
		return writeError(c, http.StatusInternalServerError, "close_error", err.Error())
	}
	return c.JSON(http.StatusOK, SummaryResponse{
		ID:         summary.ID.String(),
		Name:       summary.Name,
		Path:       summary.Path,
		Events:     summary.Events,
		Dropped:    summary.Dropped,
		DurationMs: summary.Duration.Milliseconds(),
	})
}

// session resolves the :id path parameter to a live session, writing the
// error response itself on failure.
func (s *Server) session(c *echo.Context) (*collector.Session, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, writeBadRequest(c, "malformed session id")
	}
	sess, ok := s.manager.Get(id)
	if !ok {
		return nil, writeNotFound(c, "session not found")
	}
	return sess, nil
}

// instance converts one submission into a writer event instance.
func (s *Server) instance(sess *collector.Session, ev EventSubmission) (*tracefile.EventInstance, error) {
	desc, ok := sess.LookupType(ev.Provider, ev.EventID, ev.Version)
	if !ok {
		return nil, fmt.Errorf("unregistered event type %s/%d v%d", ev.Provider, ev.EventID, ev.Version)
	}

	inst := &tracefile.EventInstance{
		Type:      desc,
		ThreadID:  ev.ThreadID,
		Timestamp: ev.Timestamp,
		Payload:   ev.Payload,
		Stack:     ev.Stack,
	}
	if inst.Timestamp == 0 {
		inst.Timestamp = sysinfo.Now()
	}
	if ev.ActivityID != "" {
		id, err := uuid.Parse(ev.ActivityID)
		if err != nil {
			return nil, fmt.Errorf("malformed activity id: %w", err)
		}
		inst.ActivityID = id
	}
	if ev.RelatedActivityID != "" {
		id, err := uuid.Parse(ev.RelatedActivityID)
		if err != nil {
			return nil, fmt.Errorf("malformed related activity id: %w", err)
		}
		inst.RelatedActivityID = id
	}
	return inst, nil
}

func sessionResponse(sess *collector.Session) SessionResponse {
	return SessionResponse{
		ID:     sess.ID.String(),
		Name:   sess.Name,
		Mode:   string(sess.Mode),
		Path:   sess.Path,
		Opened: sess.Opened.UTC().Format(time.RFC3339),
	}
}
