package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	EventBufferSize int           `json:"event_buffer_size"`
	SourceType      string        `json:"source_type"`
	Collection      string        `json:"collection,omitempty"`
	Running         bool          `json:"running"`
	SourceReady     bool          `json:"source_registered"`
	Listener        ListenerStats `json:"listener"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sourceType := "unknown"
	if s.source != nil {
		sourceType = "source"
		if comp, ok := s.source.(introspection.Component); ok {
			sourceType = comp.ComponentType()
		}
	}

	return ServiceState{
		EventBufferSize: s.eventBufferSize,
		SourceType:      sourceType,
		Collection:      s.collection,
		Running:         s.running,
		SourceReady:     s.sourceReady,
		Listener:        s.listener.Stats(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
