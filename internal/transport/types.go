package transport

import (
	"github.com/rpggio/makerlog/internal/analysis"
	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

type addProjectRequest struct {
	Title      string `json:"title"`
	TotalSteps int    `json:"totalSteps"`
}

type startProjectRequest struct {
	Title string `json:"title"`
}

type completeStepRequest struct {
	Step int `json:"step"`
}

type projectResponse struct {
	Project *progress.Project `json:"project"`
	Added   bool              `json:"added"`
}

type stepResponse struct {
	Found   bool              `json:"found"`
	Project *progress.Project `json:"project,omitempty"`
}

type projectListResponse struct {
	Projects []progress.Project `json:"projects"`
}

type guideListResponse struct {
	Guides []catalog.GuideSummary `json:"guides"`
}

type activityResponse struct {
	Activity []activity.ActivityEntry `json:"activity"`
}

type leaderboardResponse struct {
	Leaderboard []analysis.LeaderboardEntry `json:"leaderboard"`
}

type achievementsResponse struct {
	Achievements []analysis.Achievement `json:"achievements"`
}
