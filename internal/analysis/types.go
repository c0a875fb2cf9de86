package analysis

import "encoding/json"

// GeneratedProject is a full project description produced from a photo.
type GeneratedProject struct {
	Title        string            `json:"title"`
	Materials    []string          `json:"materials"`
	Difficulty   string            `json:"difficulty"`
	TimeRequired string            `json:"timeRequired"`
	Steps        []string          `json:"steps"`
	Tips         []string          `json:"tips"`
	Warnings     map[string]string `json:"warnings"`
}

// Suggestion is one entry of a suggestion list.
type Suggestion struct {
	Title     string   `json:"title"`
	Materials []string `json:"materials"`
	Steps     []string `json:"steps"`
}

// Result holds whichever shape the analysis endpoint returned: a single
// generated project or a list of suggestions.
type Result struct {
	Project     *GeneratedProject `json:"project,omitempty"`
	Suggestions []Suggestion      `json:"suggestions,omitempty"`
}

// Titles returns every project title contained in the result.
func (r *Result) Titles() []string {
	var titles []string
	if r.Project != nil {
		titles = append(titles, r.Project.Title)
	}
	for _, s := range r.Suggestions {
		titles = append(titles, s.Title)
	}
	return titles
}

type analyzeEnvelope struct {
	Status  string          `json:"status"`
	Message json.RawMessage `json:"message"`
	Detail  string          `json:"detail,omitempty"`
}

// ClarifyRequest asks for a detailed breakdown of one step.
type ClarifyRequest struct {
	ProjectTitle string `json:"projectTitle"`
	StepNumber   int    `json:"stepNumber"`
	StepContent  string `json:"stepContent"`
}

// Clarification is the supplementary detail for a step.
type Clarification struct {
	DetailedSteps  []string `json:"detailed_steps"`
	Tips           []string `json:"tips"`
	CommonMistakes []string `json:"common_mistakes"`
}

type clarifyEnvelope struct {
	Status        string         `json:"status"`
	Clarification *Clarification `json:"clarification"`
}

// LeaderboardEntry is one row of the leaderboard.
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Name         string `json:"name"`
	DIYCompleted int    `json:"diy_completed"`
	DaysActive   int    `json:"days_active"`
}

// Achievement is a badge shown on the dashboard.
type Achievement struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}
