package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/ledger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const ledgerResourceURI = "ledger://current"

// LedgerResourcePayload is the JSON body of the ledger resource.
type LedgerResourcePayload struct {
	// ActiveBranch is null while the main timeline is active.
	ActiveBranch         *string         `json:"activeBranch"`
	Branches             []string        `json:"branches"`
	ThoughtHistoryLength int             `json:"thoughtHistoryLength"`
	Thoughts             []ThinkingInput `json:"thoughts"`
}

// LedgerResource defines the MCP resource for the active timeline.
func LedgerResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "ledger_current",
		Title:       "Current Thought Ledger",
		Description: "Readable snapshot of the active timeline, its branch pointer and all known branch names",
		MIMEType:    "application/json",
		URI:         ledgerResourceURI,
	}
}

// LedgerResourceHandler returns a readable ledger snapshot resource.
func LedgerResourceHandler(l *ledger.Ledger) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if l == nil {
			return nil, fmt.Errorf("thought ledger is not configured")
		}

		uri := ledgerResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != ledgerResourceURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", ledgerResourceURI, uri)
		}

		snapshot := l.Snapshot()
		payload := LedgerResourcePayload{
			ActiveBranch:         snapshot.ActiveBranch,
			Branches:             snapshot.Branches,
			ThoughtHistoryLength: len(snapshot.Timeline),
			Thoughts:             make([]ThinkingInput, 0, len(snapshot.Timeline)),
		}
		for _, thought := range snapshot.Timeline {
			payload.Thoughts = append(payload.Thoughts, thinkingInputFromThought(thought))
		}

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal ledger resource: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
