package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectAdded  ActivityType = "project_added"
	TypeStepCompleted ActivityType = "step_completed"
	TypeStepRepeated  ActivityType = "step_repeated"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case TypeProjectAdded, TypeStepCompleted, TypeStepRepeated:
		return true
	default:
		return false
	}
}

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectTitle string       `json:"projectTitle"`
	ActivityType ActivityType `json:"type"`
	Step         *int         `json:"step,omitempty"`
	Progress     float64      `json:"progress"`
	Summary      string       `json:"summary"`
	CreatedAt    time.Time    `json:"createdAt"`
}
