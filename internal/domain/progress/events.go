package progress

// EventType identifies a store state change.
type EventType string

const (
	EventProjectAdded  EventType = "project_added"
	EventStepCompleted EventType = "step_completed"
)

// Event describes a state change. Project is the snapshot taken right after it.
type Event struct {
	Type    EventType
	Project Project
	Step    int
	// Repeat is set when the step was already complete and only lastUpdated moved.
	Repeat bool
}

// Listener observes store events. Listeners are called outside the store lock
// in the order they were registered.
type Listener func(Event)
