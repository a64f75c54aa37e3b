// Package events defines the UI event stream (§6): the unified notification
// shape emitted by the PTY Manager, Injection Manager, and Session
// Controller for an observing front end, plus a small in-process fan-out bus
// to deliver them to subscribers.
//
// Adapted from agentium's internal/events.AgentEvent (the flat,
// JSON-tagged, type-discriminated event record used to normalize output
// from heterogeneous sources into one schema).
package events

import "time"

// Type identifies the category of a hive-manager event, per §6's UI event
// stream list.
type Type string

const (
	TypePTYOutput            Type = "pty-output"
	TypePTYStatus             Type = "pty-status"
	TypeSessionUpdate         Type = "session-update"
	TypeCoordinationMessage   Type = "coordination-message"
	TypeAgentStalled          Type = "agent-stalled"
	TypeAgentRecovered        Type = "agent-recovered"
	TypePlanUpdate            Type = "plan-update"
)

// Event is the unified record delivered to UI subscribers. Only the fields
// relevant to Type are populated; the rest carry their zero value.
type Event struct {
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`

	// pty-output
	AgentID string `json:"agent_id,omitempty"`
	Bytes   []byte `json:"bytes,omitempty"`

	// pty-status, agent-stalled, agent-recovered
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	// coordination-message
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Content string `json:"content,omitempty"`
	Kind    string `json:"kind,omitempty"`

	// session-update, plan-update: an opaque, already-JSON-marshalable
	// snapshot supplied by internal/session. Kept as `any` here (rather
	// than a concrete session type) so this package never imports
	// internal/session.
	Payload any `json:"payload,omitempty"`
}

// NewPTYOutput builds a pty-output event.
func NewPTYOutput(sessionID, agentID string, b []byte) Event {
	return Event{Type: TypePTYOutput, Timestamp: time.Now().UTC(), SessionID: sessionID, AgentID: agentID, Bytes: b}
}

// NewPTYStatus builds a pty-status event.
func NewPTYStatus(sessionID, agentID, status, message string) Event {
	return Event{Type: TypePTYStatus, Timestamp: time.Now().UTC(), SessionID: sessionID, AgentID: agentID, Status: status, Message: message}
}

// NewSessionUpdate builds a session-update event carrying an opaque
// snapshot payload (typically *session.Snapshot).
func NewSessionUpdate(sessionID string, payload any) Event {
	return Event{Type: TypeSessionUpdate, Timestamp: time.Now().UTC(), SessionID: sessionID, Payload: payload}
}

// NewPlanUpdate builds a plan-update event.
func NewPlanUpdate(sessionID string, payload any) Event {
	return Event{Type: TypePlanUpdate, Timestamp: time.Now().UTC(), SessionID: sessionID, Payload: payload}
}

// NewCoordinationMessage builds a coordination-message event.
func NewCoordinationMessage(sessionID, from, to, content, kind string) Event {
	return Event{Type: TypeCoordinationMessage, Timestamp: time.Now().UTC(), SessionID: sessionID, From: from, To: to, Content: content, Kind: kind}
}

// NewAgentStalled builds an agent-stalled event.
func NewAgentStalled(sessionID, agentID string) Event {
	return Event{Type: TypeAgentStalled, Timestamp: time.Now().UTC(), SessionID: sessionID, AgentID: agentID}
}

// NewAgentRecovered builds an agent-recovered event.
func NewAgentRecovered(sessionID, agentID string) Event {
	return Event{Type: TypeAgentRecovered, Timestamp: time.Now().UTC(), SessionID: sessionID, AgentID: agentID}
}
