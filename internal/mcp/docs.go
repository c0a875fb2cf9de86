package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `makerlog tracks progress through DIY project tutorials.

- A project is keyed by its title. Adding a title that is already tracked changes nothing.
- Steps are numbered from 1. Marking a step twice is harmless; steps outside the project's range are ignored.
- Progress is the percentage of steps marked done.

Typical flow: list_guides, then start_project with a guide title, then mark_step_complete as the user works.
add_project tracks a project without a guide. recent_activity shows what changed.

Docs: makerlog://docs/progress
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "makerlog://docs/progress",
		Name:        "docs_progress",
		Title:       "makerlog progress rules",
		Description: "How projects, steps and progress behave.",
		Content: `# Progress rules

## Projects

- The title is the key. The first add wins; later adds with the same title return the existing project untouched.
- totalSteps is fixed when the project is added. Negative counts are stored as 0.
- startedAt never changes.

## Steps

- mark_step_complete on an unknown title returns found=false and creates nothing.
- A step already marked stays marked; lastUpdated still moves forward.
- A step outside 1..totalSteps is ignored entirely.

## Progress

progress = completed steps / totalSteps * 100. A project with no steps stays at 0.

## Guides

Guides come from photo analysis over HTTP (POST /analyze). start_project uses the guide's step count.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
