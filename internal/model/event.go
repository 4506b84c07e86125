package model

// EventKind identifies a pipeline progress event.
type EventKind string

const (
	EventNormalizing    EventKind = "normalizing"
	EventClassified     EventKind = "classified"
	EventResolved       EventKind = "resolved"
	EventWebSearch      EventKind = "web_search"
	EventNeedsSelection EventKind = "needs_selection"
	EventSourceTrying   EventKind = "source_trying"
	EventSourceSuccess  EventKind = "source_success"
	EventSourceFailed   EventKind = "source_failed"
	EventSourceAntiBot  EventKind = "source_antibot"
	EventReady          EventKind = "ready"
	EventError          EventKind = "error"
)

// OutcomeStatus is the terminal state of an orchestrator command.
type OutcomeStatus string

const (
	OutcomeNeedsSelection OutcomeStatus = "NEEDS_USER_SELECTION"
	OutcomeReady          OutcomeStatus = "READY_TO_ADD"
	OutcomeError          OutcomeStatus = "ERROR_RECOVERABLE"
)

// Event is one entry in the progress stream of an orchestrator command.
type Event struct {
	Kind       EventKind          `json:"kind"`
	Progress   int                `json:"progress"`
	Message    string             `json:"message"`
	Source     string             `json:"source,omitempty"`
	URL        string             `json:"url,omitempty"`
	Count      int                `json:"count,omitempty"`
	Candidates []ResolveCandidate `json:"candidates,omitempty"`
	Record     *ComponentRecord   `json:"record,omitempty"`
	Status     OutcomeStatus      `json:"status,omitempty"`
}
