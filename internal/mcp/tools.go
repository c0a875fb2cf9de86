package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/makerlog/internal/domain/activity"
	"github.com/rpggio/makerlog/internal/domain/catalog"
	"github.com/rpggio/makerlog/internal/domain/progress"
)

type addProjectInput struct {
	Title      string `json:"title" jsonschema:"Project title, unique across tracked projects"`
	TotalSteps int    `json:"total_steps" jsonschema:"Number of tutorial steps"`
}

type titleInput struct {
	Title string `json:"title" jsonschema:"Project title"`
}

type markStepInput struct {
	Title string `json:"title" jsonschema:"Project title"`
	Step  int    `json:"step" jsonschema:"1-based step number"`
}

type recentActivityInput struct {
	Title  string `json:"title,omitempty" jsonschema:"Only entries for this project"`
	Type   string `json:"type,omitempty" jsonschema:"project_added, step_completed or step_repeated"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Maximum entries (default 50)"`
	Offset int    `json:"offset,omitempty" jsonschema:"Entries to skip"`
}

type listGuidesInput struct {
	Query string `json:"query,omitempty" jsonschema:"Words that must all appear in a guide's title, materials or steps"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results when searching"`
}

type emptyInput struct{}

type projectOutput struct {
	Project progress.Project `json:"project"`
	Added   bool             `json:"added"`
}

type stepOutput struct {
	Found   bool              `json:"found"`
	Project *progress.Project `json:"project,omitempty"`
}

type projectListOutput struct {
	Projects []progress.Project `json:"projects"`
}

type guideListOutput struct {
	Guides []catalog.GuideSummary `json:"guides"`
}

type activityOutput struct {
	Activity []activity.ActivityEntry `json:"activity"`
}

func registerTools(server *sdkmcp.Server, svc Services) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "add_project",
		Description: "Start tracking a project by title and step count. A title that is already tracked is left unchanged.",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, in addProjectInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			return nil, projectOutput{}, fmt.Errorf("title is required")
		}
		proj, added := svc.Projects.AddProject(title, in.TotalSteps)
		return nil, projectOutput{Project: proj, Added: added}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "mark_step_complete",
		Description: "Mark a step of a tracked project as done. Repeating a step is harmless; unknown titles report found=false.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in markStepInput) (*sdkmcp.CallToolResult, stepOutput, error) {
		proj, found := svc.Discovery.CompleteStep(ctx, in.Title, in.Step)
		out := stepOutput{Found: found}
		if found {
			out.Project = &proj
		}
		return nil, out, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List every tracked project with its progress, oldest first.",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, _ emptyInput) (*sdkmcp.CallToolResult, projectListOutput, error) {
		return nil, projectListOutput{Projects: svc.Projects.ListProjects()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get one tracked project by title.",
	}, func(_ context.Context, _ *sdkmcp.CallToolRequest, in titleInput) (*sdkmcp.CallToolResult, progress.Project, error) {
		proj, ok := svc.Projects.GetProject(in.Title)
		if !ok {
			return nil, progress.Project{}, fmt.Errorf("project not tracked: %q", in.Title)
		}
		return nil, proj, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "start_project",
		Description: "Start tracking a cached guide; the step count comes from the guide.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in titleInput) (*sdkmcp.CallToolResult, projectOutput, error) {
		proj, added, err := svc.Discovery.Start(ctx, in.Title)
		if err != nil {
			return nil, projectOutput{}, err
		}
		return nil, projectOutput{Project: proj, Added: added}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_guides",
		Description: "List cached project guides produced by photo analysis, or search them with query.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in listGuidesInput) (*sdkmcp.CallToolResult, guideListOutput, error) {
		var (
			guides []catalog.GuideSummary
			err    error
		)
		if strings.TrimSpace(in.Query) != "" {
			guides, err = svc.Guides.Search(ctx, in.Query, in.Limit)
		} else {
			guides, err = svc.Guides.List(ctx)
		}
		if err != nil {
			return nil, guideListOutput{}, err
		}
		if guides == nil {
			guides = []catalog.GuideSummary{}
		}
		return nil, guideListOutput{Guides: guides}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "Read the progress journal, newest first.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in recentActivityInput) (*sdkmcp.CallToolResult, activityOutput, error) {
		opts := activity.ListActivityOptions{
			ProjectTitle: in.Title,
			Limit:        in.Limit,
			Offset:       in.Offset,
		}
		if in.Type != "" {
			t := activity.ActivityType(in.Type)
			opts.ActivityType = &t
		}
		entries, err := svc.Activity.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, activityOutput{}, err
		}
		if entries == nil {
			entries = []activity.ActivityEntry{}
		}
		return nil, activityOutput{Activity: entries}, nil
	})
}
