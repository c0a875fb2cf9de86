package catalog

import "time"

// Guide is a generated DIY project tutorial returned by the analysis backend.
type Guide struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Materials    []string          `json:"materials"`
	Difficulty   string            `json:"difficulty,omitempty"`
	TimeRequired string            `json:"timeRequired,omitempty"`
	Steps        []string          `json:"steps"`
	Tips         []string          `json:"tips,omitempty"`
	Warnings     map[string]string `json:"warnings,omitempty"` // keyed by 1-based step number
	CreatedAt    time.Time         `json:"createdAt"`
}

// Step returns the text of 1-based step n.
func (g Guide) Step(n int) (string, bool) {
	if n < 1 || n > len(g.Steps) {
		return "", false
	}
	return g.Steps[n-1], true
}

// GuideSummary is a lightweight representation for listing
type GuideSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty,omitempty"`
	StepCount  int       `json:"stepCount"`
	CreatedAt  time.Time `json:"createdAt"`
}
