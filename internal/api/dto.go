package api

// CreateSessionRequest opens a new trace session.
type CreateSessionRequest struct {
	Name string `json:"name"`
	// Mode is "drain" (default) or "direct".
	Mode string `json:"mode,omitempty"`
}

// SessionResponse describes a live session.
type SessionResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mode   string `json:"mode"`
	Path   string `json:"path"`
	Opened string `json:"opened"`
}

// SessionListResponse wraps the live sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// RegisterTypeRequest declares an event type for a session. The
// (provider, event_id, version) triple identifies the type on submission.
type RegisterTypeRequest struct {
	Provider string       `json:"provider"`
	EventID  uint32       `json:"event_id"`
	Version  uint32       `json:"version"`
	Name     string       `json:"name"`
	Level    uint32       `json:"level,omitempty"`
	Keywords uint64       `json:"keywords,omitempty"`
	Fields   []EventField `json:"fields,omitempty"`
}

// EventField names one payload field of an event type.
type EventField struct {
	Name string `json:"name"`
	// Type is the numeric wire type code.
	Type uint32 `json:"type"`
}

// SubmitEventsRequest carries a batch of event occurrences.
type SubmitEventsRequest struct {
	Events []EventSubmission `json:"events"`
}

// EventSubmission is one event occurrence. Payload and Stack are base64 in
// transit. A zero timestamp is stamped with the collector clock on arrival.
type EventSubmission struct {
	Provider          string `json:"provider"`
	EventID           uint32 `json:"event_id"`
	Version           uint32 `json:"version"`
	ThreadID          uint32 `json:"thread_id,omitempty"`
	Timestamp         int64  `json:"timestamp,omitempty"`
	ActivityID        string `json:"activity_id,omitempty"`
	RelatedActivityID string `json:"related_activity_id,omitempty"`
	Payload           []byte `json:"payload,omitempty"`
	Stack             []byte `json:"stack,omitempty"`
}

// SubmitEventsResponse reports batch disposition.
type SubmitEventsResponse struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// SummaryResponse reports a finished session.
type SummaryResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Events     uint64 `json:"events"`
	Dropped    uint64 `json:"dropped"`
	DurationMs int64  `json:"duration_ms"`
}

// ErrorBody is the error payload for every non-2xx response.
type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
