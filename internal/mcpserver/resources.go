package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gridironlab/cfbd-mcp/internal/cfbd"
)

// schemaResources maps schema:// URIs to the tool whose endpoint table
// they document, plus display metadata.
var schemaResources = []struct {
	URI         string
	Name        string
	Description string
	Tool        string
}{
	{"schema://games", "Games endpoint schema", "Get game information with scores, teams and metadata", "get-games"},
	{"schema://records", "Team records endpoint schema", "Get team season records", "get-records"},
	{"schema://plays", "Plays endpoint", "Schema for the /plays endpoint", "get-plays"},
	{"schema://drives", "Drives endpoint", "Schema for the /drives endpoint", "get-drives"},
	{"schema://play/stats", "Play/stats endpoint", "Schema for the /play/stats endpoint", "get-play-stats"},
	{"schema://rankings", "Rankings endpoint", "Schema for the /rankings endpoint", "get-rankings"},
	{"schema://metrics/wp/pregame", "Metrics/wp/pregame endpoint", "Schema for the pregame win probability endpoint", "get-pregame-win-probability"},
	{"schema://game/box/advanced", "Advanced box score endpoint", "Schema for the advanced box score endpoint", "get-advanced-box-score"},
}

// RegisterResources adds the endpoint schema resources to the server.
// Each resource renders the static parameter table for one endpoint as
// plain text.
func RegisterResources(server *mcp.Server) {
	for _, res := range schemaResources {
		server.AddResource(&mcp.Resource{
			URI:         res.URI,
			Name:        res.Name,
			Description: res.Description,
			MIMEType:    "text/plain",
		}, resourceHandler)
	}
}

func resourceHandler(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	for _, res := range schemaResources {
		if res.URI != uri {
			continue
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "text/plain",
					Text:     cfbd.Endpoints[res.Tool].Describe(),
				},
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown schema URI: %s", uri)
}
