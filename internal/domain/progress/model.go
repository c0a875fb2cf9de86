package progress

import "time"

// Project is a user-started DIY project tracked by title.
type Project struct {
	Title          string    `json:"title"`
	TotalSteps     int       `json:"totalSteps"`
	CompletedSteps []int     `json:"completedSteps"`
	Progress       float64   `json:"progress"`
	StartedAt      time.Time `json:"startedAt"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// IsComplete reports whether every step has been marked complete.
func (p Project) IsComplete() bool {
	return p.TotalSteps > 0 && len(p.CompletedSteps) == p.TotalSteps
}

// HasStep reports whether step n is in the completed set.
func (p Project) HasStep(n int) bool {
	for _, s := range p.CompletedSteps {
		if s == n {
			return true
		}
	}
	return false
}

// percent returns done/total as a percentage. A project without steps stays at 0.
func percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(done*100) / float64(total)
}
