package events

import (
	"github.com/rdfitted/hive-manager/internal/inject"
	"github.com/rdfitted/hive-manager/internal/ptymgr"
	"github.com/rdfitted/hive-manager/internal/sessionid"
)

// sessionOf recovers the owning session id from a structured agent id. Used
// because ptymgr's Sink interface is keyed by agent id alone (§4.A is
// process-wide, not session-aware) but the UI event stream is scoped per
// session.
func sessionOf(agentID string) string {
	parsed, err := sessionid.Parse(agentID)
	if err != nil {
		return agentID
	}
	return parsed.SessionID
}

// PTYSink adapts a Bus to ptymgr.Sink, translating OutputEvent/StatusEvent
// into the session-scoped pty-output/pty-status events of §6.
type PTYSink struct {
	bus *Bus
}

// NewPTYSink wraps bus as a ptymgr.Sink.
func NewPTYSink(bus *Bus) *PTYSink { return &PTYSink{bus: bus} }

func (s *PTYSink) EmitOutput(e ptymgr.OutputEvent) {
	s.bus.Publish(NewPTYOutput(sessionOf(e.ID), e.ID, e.Bytes))
}

func (s *PTYSink) EmitStatus(e ptymgr.StatusEvent) {
	s.bus.Publish(NewPTYStatus(sessionOf(e.ID), e.ID, string(e.Status), e.Message))
}

// CoordinationSink adapts a Bus to inject.EventSink.
type CoordinationSink struct {
	bus *Bus
}

// NewCoordinationSink wraps bus as an inject.EventSink.
func NewCoordinationSink(bus *Bus) *CoordinationSink { return &CoordinationSink{bus: bus} }

func (s *CoordinationSink) EmitCoordinationMessage(sessionID, from, to, content string, kind inject.Kind) {
	s.bus.Publish(NewCoordinationMessage(sessionID, from, to, content, string(kind)))
}
