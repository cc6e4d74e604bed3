package cfbd

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoints_AllToolsPresent(t *testing.T) {
	expected := map[string]string{
		"get-games":                   "/games",
		"get-records":                 "/records",
		"get-games-teams":             "/games/teams",
		"get-plays":                   "/plays",
		"get-drives":                  "/drives",
		"get-play-stats":              "/play/stats",
		"get-rankings":                "/rankings",
		"get-pregame-win-probability": "/metrics/wp/pregame",
		"get-advanced-box-score":      "/game/box/advanced",
	}

	require.Len(t, Endpoints, len(expected))
	for tool, path := range expected {
		ep, ok := Endpoints[tool]
		require.True(t, ok, "missing tool %s", tool)
		assert.Equal(t, path, ep.Path)
	}
}

func TestToolNames_Sorted(t *testing.T) {
	names := ToolNames()
	require.Len(t, names, len(Endpoints))
	assert.IsIncreasing(t, names)
}

func TestValidate_UnknownTool(t *testing.T) {
	err := Validate("get-weather", url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestValidate_RequiredPresent(t *testing.T) {
	params := url.Values{"year": {"2023"}}
	assert.NoError(t, Validate("get-games", params))
}

func TestValidate_MissingRequired(t *testing.T) {
	err := Validate("get-games", url.Values{"team": {"Alabama"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter: year")
}

func TestValidate_UnexpectedParameter(t *testing.T) {
	params := url.Values{"year": {"2023"}, "color": {"crimson"}}
	err := Validate("get-games", params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected parameter: color")
}

func TestValidate_YearRange(t *testing.T) {
	err := Validate("get-games", url.Values{"year": {"1999"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year must be between")

	err = Validate("get-games", url.Values{"year": {"2024"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "year must be between")
}

func TestValidate_WeekRange(t *testing.T) {
	err := Validate("get-games", url.Values{"year": {"2023"}, "week": {"16"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "week must be between")

	assert.NoError(t, Validate("get-games", url.Values{"year": {"2023"}, "week": {"15"}}))
}

func TestValidate_IntegerParse(t *testing.T) {
	err := Validate("get-games", url.Values{"year": {"twenty23"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an integer")
}

func TestValidate_SeasonType(t *testing.T) {
	assert.NoError(t, Validate("get-games", url.Values{"year": {"2023"}, "season_type": {"regular"}}))
	assert.NoError(t, Validate("get-games", url.Values{"year": {"2023"}, "season_type": {"postseason"}}))

	err := Validate("get-games", url.Values{"year": {"2023"}, "season_type": {"spring"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid season_type")
}

func TestValidate_ClassificationLowercased(t *testing.T) {
	params := url.Values{"year": {"2023"}, "classification": {"FBS"}}
	require.NoError(t, Validate("get-drives", params))
	assert.Equal(t, "fbs", params.Get("classification"))

	err := Validate("get-drives", url.Values{"year": {"2023"}, "classification": {"nfl"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid classification")
}

func TestValidate_AtLeastOneOf(t *testing.T) {
	// get-games-teams: year plus at least one of week, team, conference.
	err := Validate("get-games-teams", url.Values{"year": {"2023"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")

	assert.NoError(t, Validate("get-games-teams", url.Values{"year": {"2023"}, "team": {"Alabama"}}))
	assert.NoError(t, Validate("get-games-teams", url.Values{"year": {"2023"}, "week": {"1"}}))
}

func TestValidate_PlayStatsNeedsOneParam(t *testing.T) {
	err := Validate("get-play-stats", url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of")

	assert.NoError(t, Validate("get-play-stats", url.Values{"game_id": {"401403910"}}))
}

func TestValidate_PlaysRequiresYearAndWeek(t *testing.T) {
	err := Validate("get-plays", url.Values{"year": {"2023"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter: week")

	assert.NoError(t, Validate("get-plays", url.Values{"year": {"2023"}, "week": {"1"}}))
}

func TestValidate_AdvancedBoxScore(t *testing.T) {
	err := Validate("get-advanced-box-score", url.Values{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required parameter: gameId")

	assert.NoError(t, Validate("get-advanced-box-score", url.Values{"gameId": {"401403910"}}))
}

func TestDescribe(t *testing.T) {
	text := Endpoints["get-games"].Describe()

	assert.Contains(t, text, "Endpoint: /games")
	assert.Contains(t, text, "- year: integer (required)")
	assert.Contains(t, text, "- week: integer (optional)")
	assert.Contains(t, text, "Response Schema:")
	assert.Contains(t, text, "- Seasons: 2001 to 2023")
	assert.Contains(t, text, "- Season Types: regular, postseason")
	assert.Contains(t, text, "- Divisions: fbs, fcs, ii, iii")
}

func TestDescribe_AtLeastOneOfListed(t *testing.T) {
	text := Endpoints["get-games-teams"].Describe()
	assert.True(t, strings.Contains(text, "At least one of: week, team, conference"))
}
