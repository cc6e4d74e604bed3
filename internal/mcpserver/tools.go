// Package mcpserver registers the MCP tools, prompts and resources
// that expose the College Football Data API. It adapts the cfbd client
// to the MCP SDK's handler interfaces.
package mcpserver

import (
	"context"
	"net/url"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gridironlab/cfbd-mcp/internal/cfbd"
)

// baseDescription prefixes every tool description so clients attribute
// the data source in their responses.
const baseDescription = `Note: When using this tool, please explicitly mention that you are retrieving data from the College Football Data API. You must mention "College Football Data API" in every response.

`

// RegisterTools adds all API query tools to the given MCP server.
func RegisterTools(server *mcp.Server, client *cfbd.Client) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "get-games",
		Description: baseDescription + `Get college football game data.
Required: year
Optional: week, season_type, team, conference, category, game_id
Example valid queries:
- year=2023
- year=2023, team="Alabama"
- year=2023, week=1, conference="SEC"`,
	}, gamesHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-records",
		Description: baseDescription + `Get college football team record data.
Optional: year, team, conference
Example valid queries:
- year=2023
- team="Alabama"
- conference="SEC"
- year=2023, team="Alabama"`,
	}, recordsHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-games-teams",
		Description: baseDescription + `Get college football team game data.
Required: year plus at least one of: week, team or conference.
Example valid queries:
- year=2023, team="Alabama"
- year=2023, week=1
- year=2023, conference="SEC"`,
	}, gamesTeamsHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-plays",
		Description: baseDescription + `Get college football play-by-play data.
Required: year AND week
Optional: season_type, team, offense, defense, conference, offense_conference, defense_conference, play_type, classification
Example valid queries:
- year=2023, week=1
- year=2023, week=1, team="Alabama"
- year=2023, week=1, offense="Alabama", defense="Auburn"`,
	}, playsHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-drives",
		Description: baseDescription + `Get college football drive data.
Required: year
Optional: season_type, week, team, offense, defense, conference, offense_conference, defense_conference, classification
Example valid queries:
- year=2023
- year=2023, team="Alabama"
- year=2023, offense="Alabama", defense="Auburn"`,
	}, drivesHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-play-stats",
		Description: baseDescription + `Get college football play statistic data.
Optional: year, week, team, game_id, athlete_id, stat_type_id, season_type, conference
At least one parameter is required
Example valid queries:
- year=2023
- game_id=401403910
- team="Alabama", year=2023`,
	}, playStatsHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-rankings",
		Description: baseDescription + `Get college football rankings data.
Required: year
Optional: week, season_type
Example valid queries:
- year=2023
- year=2023, week=1
- year=2023, season_type="regular"`,
	}, rankingsHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-pregame-win-probability",
		Description: baseDescription + `Get college football pregame win probability data.
Optional: year, week, team, season_type
At least one parameter is required
Example valid queries:
- year=2023
- team="Alabama"
- year=2023, week=1`,
	}, pregameWinProbHandler(client))

	mcp.AddTool(server, &mcp.Tool{
		Name: "get-advanced-box-score",
		Description: baseDescription + `Get advanced box score data for college football games.
Required: gameId
Example valid queries:
- gameId=401403910`,
	}, advancedBoxScoreHandler(client))
}

// --- Input types ---
// The MCP SDK infers JSON schema from these struct types via jsonschema
// tags. Optional integers are pointers so an absent parameter is not
// sent upstream as zero.

// GamesInput holds parameters for get-games.
type GamesInput struct {
	Year       int    `json:"year" jsonschema:"required,season year"`
	Week       *int   `json:"week,omitempty" jsonschema:"week of the season"`
	SeasonType string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
	Team       string `json:"team,omitempty" jsonschema:"team name"`
	Conference string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
	Category   string `json:"category,omitempty" jsonschema:"stat category"`
	GameID     *int   `json:"game_id,omitempty" jsonschema:"specific game id"`
}

// RecordsInput holds parameters for get-records.
type RecordsInput struct {
	Year       *int   `json:"year,omitempty" jsonschema:"season year"`
	Team       string `json:"team,omitempty" jsonschema:"team name"`
	Conference string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
}

// GamesTeamsInput holds parameters for get-games-teams.
type GamesTeamsInput struct {
	Year           int    `json:"year" jsonschema:"required,season year"`
	Week           *int   `json:"week,omitempty" jsonschema:"week of the season"`
	SeasonType     string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
	Team           string `json:"team,omitempty" jsonschema:"team name"`
	Conference     string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
	GameID         *int   `json:"game_id,omitempty" jsonschema:"specific game id"`
	Classification string `json:"classification,omitempty" jsonschema:"division: fbs, fcs, ii or iii"`
}

// PlaysInput holds parameters for get-plays.
type PlaysInput struct {
	Year              int    `json:"year" jsonschema:"required,season year"`
	Week              int    `json:"week" jsonschema:"required,week of the season"`
	SeasonType        string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
	Team              string `json:"team,omitempty" jsonschema:"team name"`
	Offense           string `json:"offense,omitempty" jsonschema:"offensive team name"`
	Defense           string `json:"defense,omitempty" jsonschema:"defensive team name"`
	Conference        string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
	OffenseConference string `json:"offense_conference,omitempty" jsonschema:"offensive team conference"`
	DefenseConference string `json:"defense_conference,omitempty" jsonschema:"defensive team conference"`
	PlayType          *int   `json:"play_type,omitempty" jsonschema:"play type id"`
	Classification    string `json:"classification,omitempty" jsonschema:"division: fbs, fcs, ii or iii"`
}

// DrivesInput holds parameters for get-drives.
type DrivesInput struct {
	Year              int    `json:"year" jsonschema:"required,season year"`
	SeasonType        string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
	Week              *int   `json:"week,omitempty" jsonschema:"week of the season"`
	Team              string `json:"team,omitempty" jsonschema:"team name"`
	Offense           string `json:"offense,omitempty" jsonschema:"offensive team name"`
	Defense           string `json:"defense,omitempty" jsonschema:"defensive team name"`
	Conference        string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
	OffenseConference string `json:"offense_conference,omitempty" jsonschema:"offensive team conference"`
	DefenseConference string `json:"defense_conference,omitempty" jsonschema:"defensive team conference"`
	Classification    string `json:"classification,omitempty" jsonschema:"division: fbs, fcs, ii or iii"`
}

// PlayStatsInput holds parameters for get-play-stats.
type PlayStatsInput struct {
	Year       *int   `json:"year,omitempty" jsonschema:"season year"`
	Week       *int   `json:"week,omitempty" jsonschema:"week of the season"`
	Team       string `json:"team,omitempty" jsonschema:"team name"`
	GameID     *int   `json:"game_id,omitempty" jsonschema:"specific game id"`
	AthleteID  *int   `json:"athlete_id,omitempty" jsonschema:"athlete id"`
	StatTypeID *int   `json:"stat_type_id,omitempty" jsonschema:"stat type id"`
	SeasonType string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
	Conference string `json:"conference,omitempty" jsonschema:"conference abbreviation"`
}

// RankingsInput holds parameters for get-rankings.
type RankingsInput struct {
	Year       int    `json:"year" jsonschema:"required,season year"`
	Week       *int   `json:"week,omitempty" jsonschema:"week of the season"`
	SeasonType string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
}

// PregameWinProbInput holds parameters for get-pregame-win-probability.
type PregameWinProbInput struct {
	Year       *int   `json:"year,omitempty" jsonschema:"season year"`
	Week       *int   `json:"week,omitempty" jsonschema:"week of the season"`
	Team       string `json:"team,omitempty" jsonschema:"team name"`
	SeasonType string `json:"season_type,omitempty" jsonschema:"regular or postseason"`
}

// AdvancedBoxScoreInput holds parameters for get-advanced-box-score.
type AdvancedBoxScoreInput struct {
	GameID int `json:"gameId" jsonschema:"required,game id"`
}

// --- Handlers ---

func gamesHandler(client *cfbd.Client) mcp.ToolHandlerFor[GamesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GamesInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "year", input.Year)
		setIntPtr(params, "week", input.Week)
		setString(params, "season_type", input.SeasonType)
		setString(params, "team", input.Team)
		setString(params, "conference", input.Conference)
		setString(params, "category", input.Category)
		setIntPtr(params, "game_id", input.GameID)
		return call(ctx, client, "get-games", params)
	}
}

func recordsHandler(client *cfbd.Client) mcp.ToolHandlerFor[RecordsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RecordsInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setIntPtr(params, "year", input.Year)
		setString(params, "team", input.Team)
		setString(params, "conference", input.Conference)
		return call(ctx, client, "get-records", params)
	}
}

func gamesTeamsHandler(client *cfbd.Client) mcp.ToolHandlerFor[GamesTeamsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input GamesTeamsInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "year", input.Year)
		setIntPtr(params, "week", input.Week)
		setString(params, "season_type", input.SeasonType)
		setString(params, "team", input.Team)
		setString(params, "conference", input.Conference)
		setIntPtr(params, "game_id", input.GameID)
		setString(params, "classification", input.Classification)
		return call(ctx, client, "get-games-teams", params)
	}
}

func playsHandler(client *cfbd.Client) mcp.ToolHandlerFor[PlaysInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlaysInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "year", input.Year)
		setInt(params, "week", input.Week)
		setString(params, "season_type", input.SeasonType)
		setString(params, "team", input.Team)
		setString(params, "offense", input.Offense)
		setString(params, "defense", input.Defense)
		setString(params, "conference", input.Conference)
		setString(params, "offense_conference", input.OffenseConference)
		setString(params, "defense_conference", input.DefenseConference)
		setIntPtr(params, "play_type", input.PlayType)
		setString(params, "classification", input.Classification)
		return call(ctx, client, "get-plays", params)
	}
}

func drivesHandler(client *cfbd.Client) mcp.ToolHandlerFor[DrivesInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DrivesInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "year", input.Year)
		setString(params, "season_type", input.SeasonType)
		setIntPtr(params, "week", input.Week)
		setString(params, "team", input.Team)
		setString(params, "offense", input.Offense)
		setString(params, "defense", input.Defense)
		setString(params, "conference", input.Conference)
		setString(params, "offense_conference", input.OffenseConference)
		setString(params, "defense_conference", input.DefenseConference)
		setString(params, "classification", input.Classification)
		return call(ctx, client, "get-drives", params)
	}
}

func playStatsHandler(client *cfbd.Client) mcp.ToolHandlerFor[PlayStatsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PlayStatsInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setIntPtr(params, "year", input.Year)
		setIntPtr(params, "week", input.Week)
		setString(params, "team", input.Team)
		setIntPtr(params, "game_id", input.GameID)
		setIntPtr(params, "athlete_id", input.AthleteID)
		setIntPtr(params, "stat_type_id", input.StatTypeID)
		setString(params, "season_type", input.SeasonType)
		setString(params, "conference", input.Conference)
		return call(ctx, client, "get-play-stats", params)
	}
}

func rankingsHandler(client *cfbd.Client) mcp.ToolHandlerFor[RankingsInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RankingsInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "year", input.Year)
		setIntPtr(params, "week", input.Week)
		setString(params, "season_type", input.SeasonType)
		return call(ctx, client, "get-rankings", params)
	}
}

func pregameWinProbHandler(client *cfbd.Client) mcp.ToolHandlerFor[PregameWinProbInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PregameWinProbInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setIntPtr(params, "year", input.Year)
		setIntPtr(params, "week", input.Week)
		setString(params, "team", input.Team)
		setString(params, "season_type", input.SeasonType)
		return call(ctx, client, "get-pregame-win-probability", params)
	}
}

func advancedBoxScoreHandler(client *cfbd.Client) mcp.ToolHandlerFor[AdvancedBoxScoreInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AdvancedBoxScoreInput) (*mcp.CallToolResult, any, error) {
		params := url.Values{}
		setInt(params, "gameId", input.GameID)
		return call(ctx, client, "get-advanced-box-score", params)
	}
}

// call validates the parameters and fetches from the API through the
// cache. Validation and upstream failures are returned as text content
// rather than handler errors: tool callers expect a textual answer even
// on failure and pattern-match on the message.
func call(ctx context.Context, client *cfbd.Client, tool string, params url.Values) (*mcp.CallToolResult, any, error) {
	if err := cfbd.Validate(tool, params); err != nil {
		return textResult("Validation error: " + err.Error()), nil, nil
	}

	body, err := client.Fetch(ctx, cfbd.Endpoints[tool].Path, params)
	if err != nil {
		return textResult(err.Error()), nil, nil
	}

	return textResult(string(body)), nil, nil
}

func setInt(params url.Values, name string, value int) {
	params.Set(name, strconv.Itoa(value))
}

func setIntPtr(params url.Values, name string, value *int) {
	if value != nil {
		params.Set(name, strconv.Itoa(*value))
	}
}

func setString(params url.Values, name, value string) {
	if value != "" {
		params.Set(name, value)
	}
}

// textResult builds a CallToolResult with plain text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
