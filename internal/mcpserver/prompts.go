package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterPrompts adds the analysis prompt templates to the server.
func RegisterPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze-game",
		Description: "Get detailed analysis of a specific game",
		Arguments: []*mcp.PromptArgument{
			{Name: "game_id", Description: "Game ID to analyze", Required: true},
			{Name: "include_advanced_stats", Description: "Whether to include advanced statistics (true/false)"},
		},
	}, promptHandler)

	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze-team",
		Description: "Analyze a team's performance for a given season",
		Arguments: []*mcp.PromptArgument{
			{Name: "team", Description: "Team name (e.g. Alabama)", Required: true},
			{Name: "year", Description: "Season year", Required: true},
		},
	}, promptHandler)

	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze-trends",
		Description: "Analyze trends over a season",
		Arguments: []*mcp.PromptArgument{
			{Name: "year", Description: "Season year", Required: true},
			{Name: "metric", Description: "Metric to analyze (scoring, attendance, upsets)", Required: true},
		},
	}, promptHandler)

	server.AddPrompt(&mcp.Prompt{
		Name:        "compare-teams",
		Description: "Compare the performance of two teams",
		Arguments: []*mcp.PromptArgument{
			{Name: "team1", Description: "First team name", Required: true},
			{Name: "team2", Description: "Second team name", Required: true},
			{Name: "year", Description: "Season year", Required: true},
		},
	}, promptHandler)

	server.AddPrompt(&mcp.Prompt{
		Name:        "analyze-rivalry",
		Description: "Analyze historical rivalry matchups",
		Arguments: []*mcp.PromptArgument{
			{Name: "team1", Description: "First team name", Required: true},
			{Name: "team2", Description: "Second team name", Required: true},
			{Name: "start_year", Description: "Starting year for analysis"},
		},
	}, promptHandler)
}

// promptHandler renders a prompt template. Only analyze-team and
// compare-teams produce messages today; the remaining templates are
// listed for discovery but not yet rendered.
func promptHandler(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := req.Params.Arguments
	if len(args) == 0 {
		return nil, errors.New("arguments are required")
	}

	switch req.Params.Name {
	case "analyze-team":
		text := fmt.Sprintf(
			"I'll help analyze %s's performance for the %s season by checking the College Football Data API. "+
				"I'll review their record, key games, rankings and overall statistics.",
			args["team"], args["year"])
		return promptResult(text), nil

	case "compare-teams":
		text := fmt.Sprintf(
			"Let me check the College Football Data API to compare %s and %s in the %s season. "+
				"I'll look at their head-to-head matchup if they played, their records, common opponents, "+
				"and statistical performance.",
			args["team1"], args["team2"], args["year"])
		return promptResult(text), nil

	default:
		return nil, fmt.Errorf("unknown prompt: %s", req.Params.Name)
	}
}

func promptResult(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}
