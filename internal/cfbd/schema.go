package cfbd

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Valid value ranges published by the upstream API.
const (
	MinSeason = 2001
	MaxSeason = 2023
	MinWeek   = 1
	MaxWeek   = 15
)

var (
	ValidSeasonTypes = []string{"regular", "postseason"}
	ValidDivisions   = []string{"fbs", "fcs", "ii", "iii"}
)

// Param describes a single query parameter an endpoint accepts.
type Param struct {
	Name string
	Type string // "integer" or "string", used for schema resources and validation
}

// Endpoint is the static description of one upstream API endpoint: its
// path, the parameters it accepts, and which of them are mandatory.
type Endpoint struct {
	Path        string
	Description string
	Required    []Param
	Optional    []Param

	// AtLeastOneOf, when non-empty, names parameters of which at least
	// one must be present in addition to Required.
	AtLeastOneOf []string

	// ResponseFields documents the upstream response shape for the
	// schema resources. Purely descriptive, never validated against.
	ResponseFields []Param
}

// Endpoints maps tool names to their endpoint descriptions. The table is
// static: tools, parameters and paths never change at runtime.
var Endpoints = map[string]Endpoint{
	"get-games": {
		Path:        "/games",
		Description: "Get game information for specified parameters",
		Required:    []Param{{"year", "integer"}},
		Optional: []Param{
			{"week", "integer"}, {"season_type", "string"}, {"team", "string"},
			{"conference", "string"}, {"category", "string"}, {"game_id", "integer"},
		},
		ResponseFields: []Param{
			{"id", "integer"}, {"season", "integer"}, {"week", "integer"},
			{"season_type", "string"}, {"start_date", "string"}, {"completed", "boolean"},
			{"neutral_site", "boolean"}, {"conference_game", "boolean"}, {"attendance", "integer"},
			{"venue", "string"}, {"home_team", "string"}, {"home_conference", "string"},
			{"home_points", "integer"}, {"home_line_scores", "array"},
			{"away_team", "string"}, {"away_conference", "string"}, {"away_points", "integer"},
			{"away_line_scores", "array"}, {"excitement_index", "number"},
		},
	},
	"get-records": {
		Path:        "/records",
		Description: "Get team records for specified parameters",
		Optional: []Param{
			{"year", "integer"}, {"team", "string"}, {"conference", "string"},
		},
		ResponseFields: []Param{
			{"year", "integer"}, {"team", "string"}, {"conference", "string"},
			{"division", "string"}, {"expectedWins", "number"}, {"total", "object"},
			{"conferenceGames", "object"}, {"homeGames", "object"}, {"awayGames", "object"},
		},
	},
	"get-games-teams": {
		Path:         "/games/teams",
		Description:  "Get team statistics by game for specified parameters",
		Required:     []Param{{"year", "integer"}},
		AtLeastOneOf: []string{"week", "team", "conference"},
		Optional: []Param{
			{"week", "integer"}, {"season_type", "string"}, {"team", "string"},
			{"conference", "string"}, {"game_id", "integer"}, {"classification", "string"},
		},
		ResponseFields: []Param{
			{"id", "integer"}, {"teams", "array"},
		},
	},
	"get-plays": {
		Path:        "/plays",
		Description: "Get play records for specified parameters",
		Required:    []Param{{"year", "integer"}, {"week", "integer"}},
		Optional: []Param{
			{"season_type", "string"}, {"team", "string"}, {"offense", "string"},
			{"defense", "string"}, {"conference", "string"}, {"offense_conference", "string"},
			{"defense_conference", "string"}, {"play_type", "integer"}, {"classification", "string"},
		},
		ResponseFields: []Param{
			{"id", "integer"}, {"drive_id", "integer"}, {"game_id", "integer"},
			{"offense", "string"}, {"defense", "string"}, {"period", "integer"},
			{"clock", "object"}, {"yard_line", "integer"}, {"down", "integer"},
			{"distance", "integer"}, {"yards_gained", "integer"}, {"scoring", "boolean"},
			{"play_type", "string"}, {"play_text", "string"}, {"ppa", "number"},
		},
	},
	"get-drives": {
		Path:        "/drives",
		Description: "Get drive records for specified parameters",
		Required:    []Param{{"year", "integer"}},
		Optional: []Param{
			{"season_type", "string"}, {"week", "integer"}, {"team", "string"},
			{"offense", "string"}, {"defense", "string"}, {"conference", "string"},
			{"offense_conference", "string"}, {"defense_conference", "string"},
			{"classification", "string"},
		},
		ResponseFields: []Param{
			{"id", "integer"}, {"game_id", "integer"}, {"offense", "string"},
			{"defense", "string"}, {"scoring", "boolean"}, {"start_period", "integer"},
			{"start_yardline", "integer"}, {"end_period", "integer"}, {"end_yardline", "integer"},
			{"plays", "integer"}, {"yards", "integer"}, {"drive_result", "string"},
		},
	},
	"get-play-stats": {
		Path:        "/play/stats",
		Description: "Get play by play records for specified parameters",
		AtLeastOneOf: []string{
			"year", "week", "team", "game_id", "athlete_id",
			"stat_type_id", "season_type", "conference",
		},
		Optional: []Param{
			{"year", "integer"}, {"week", "integer"}, {"team", "string"},
			{"game_id", "integer"}, {"athlete_id", "integer"}, {"stat_type_id", "integer"},
			{"season_type", "string"}, {"conference", "string"},
		},
		ResponseFields: []Param{
			{"gameId", "integer"}, {"season", "integer"}, {"week", "integer"},
			{"team", "string"}, {"opponent", "string"}, {"driveId", "integer"},
			{"playId", "integer"}, {"period", "integer"}, {"clock", "object"},
			{"athleteId", "integer"}, {"athleteName", "string"}, {"statType", "string"},
			{"stat", "integer"},
		},
	},
	"get-rankings": {
		Path:        "/rankings",
		Description: "Get rankings records for specified parameters",
		Required:    []Param{{"year", "integer"}},
		Optional: []Param{
			{"week", "integer"}, {"season_type", "string"},
		},
		ResponseFields: []Param{
			{"season", "integer"}, {"seasonType", "string"}, {"week", "integer"},
			{"polls", "array"},
		},
	},
	"get-pregame-win-probability": {
		Path:         "/metrics/wp/pregame",
		Description:  "Get pregame win probability records for specified parameters",
		AtLeastOneOf: []string{"year", "week", "team", "season_type"},
		Optional: []Param{
			{"year", "integer"}, {"week", "integer"}, {"team", "string"},
			{"season_type", "string"},
		},
		ResponseFields: []Param{
			{"season", "integer"}, {"seasonType", "string"}, {"week", "integer"},
			{"gameId", "integer"}, {"homeTeam", "string"}, {"awayTeam", "string"},
			{"spread", "number"}, {"homeWinProb", "number"},
		},
	},
	"get-advanced-box-score": {
		Path:        "/game/box/advanced",
		Description: "Get advanced box score data",
		Required:    []Param{{"gameId", "integer"}},
		ResponseFields: []Param{
			{"teams", "object"}, {"players", "object"},
		},
	},
}

// ToolNames returns the tool names in the endpoint table, sorted.
func ToolNames() []string {
	names := make([]string, 0, len(Endpoints))
	for name := range Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the query parameters for the named tool against the
// static endpoint table. It rejects unknown parameters, enforces
// required and at-least-one-of constraints, checks integer parameters
// parse, and validates enumerated values. Classification is lowercased
// in place before checking.
func Validate(tool string, params url.Values) error {
	ep, ok := Endpoints[tool]
	if !ok {
		return fmt.Errorf("unknown tool: %s", tool)
	}

	known := make(map[string]Param, len(ep.Required)+len(ep.Optional))
	for _, p := range ep.Required {
		known[p.Name] = p
	}
	for _, p := range ep.Optional {
		known[p.Name] = p
	}

	for name := range params {
		p, ok := known[name]
		if !ok {
			return fmt.Errorf("unexpected parameter: %s", name)
		}
		value := params.Get(name)
		if err := validateValue(p, value); err != nil {
			return err
		}
		if name == "classification" {
			params.Set(name, strings.ToLower(value))
		}
	}

	for _, p := range ep.Required {
		if !params.Has(p.Name) {
			return fmt.Errorf("missing required parameter: %s", p.Name)
		}
	}

	if len(ep.AtLeastOneOf) > 0 {
		found := false
		for _, name := range ep.AtLeastOneOf {
			if params.Has(name) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("at least one of %s is required", strings.Join(ep.AtLeastOneOf, ", "))
		}
	}

	return nil
}

func validateValue(p Param, value string) error {
	if p.Type == "integer" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parameter %s must be an integer", p.Name)
		}
		switch p.Name {
		case "year":
			if n < MinSeason || n > MaxSeason {
				return fmt.Errorf("year must be between %d and %d", MinSeason, MaxSeason)
			}
		case "week":
			if n < MinWeek || n > MaxWeek {
				return fmt.Errorf("week must be between %d and %d", MinWeek, MaxWeek)
			}
		}
		return nil
	}

	switch p.Name {
	case "season_type":
		if !contains(ValidSeasonTypes, value) {
			return fmt.Errorf("invalid season_type: must be one of: %s", strings.Join(ValidSeasonTypes, ", "))
		}
	case "classification":
		if !contains(ValidDivisions, strings.ToLower(value)) {
			return fmt.Errorf("invalid classification: must be one of: %s", strings.Join(ValidDivisions, ", "))
		}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Describe renders the endpoint's schema as readable text for the
// schema:// resources: endpoint path, parameters, response fields, and
// the valid value ranges shared by all endpoints.
func (ep Endpoint) Describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Endpoint: %s\n", ep.Path)
	fmt.Fprintf(&b, "Description: %s\n\n", ep.Description)

	b.WriteString("Input Parameters:\n")
	for _, p := range ep.Required {
		fmt.Fprintf(&b, "- %s: %s (required)\n", p.Name, p.Type)
	}
	for _, p := range ep.Optional {
		fmt.Fprintf(&b, "- %s: %s (optional)\n", p.Name, p.Type)
	}
	if len(ep.AtLeastOneOf) > 0 {
		fmt.Fprintf(&b, "At least one of: %s\n", strings.Join(ep.AtLeastOneOf, ", "))
	}

	b.WriteString("\nResponse Schema:\n")
	for _, p := range ep.ResponseFields {
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, p.Type)
	}

	fmt.Fprintf(&b, "\nValid Values:\n")
	fmt.Fprintf(&b, "- Seasons: %d to %d\n", MinSeason, MaxSeason)
	fmt.Fprintf(&b, "- Weeks: %d to %d\n", MinWeek, MaxWeek)
	fmt.Fprintf(&b, "- Season Types: %s\n", strings.Join(ValidSeasonTypes, ", "))
	fmt.Fprintf(&b, "- Divisions: %s\n", strings.Join(ValidDivisions, ", "))

	return b.String()
}
