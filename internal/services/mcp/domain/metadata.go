package domain

import (
	"context"
	"strings"

	"github.com/louisbranch/deliberate.thinking/internal/platform/id"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// invocationIDMetaKey is the tool result _meta key carrying the invocation id.
const invocationIDMetaKey = "invocation_id"

// ToolCallMetadata carries correlation identifiers for MCP tool calls.
type ToolCallMetadata struct {
	InvocationID string
}

// ResourceUpdateNotifier notifies MCP clients about resource updates.
type ResourceUpdateNotifier func(ctx context.Context, uri string)

// Logf is the textual logging sink used for per-step lines.
type Logf func(format string, args ...any)

// NewInvocationID generates an invocation identifier for a tool call.
func NewInvocationID() (string, error) {
	return id.NewID()
}

// CallToolResultWithMetadata builds a tool result with correlation metadata.
func CallToolResultWithMetadata(meta ToolCallMetadata) *mcp.CallToolResult {
	result := &mcp.CallToolResult{
		Meta: map[string]any{},
	}
	if meta.InvocationID != "" {
		result.Meta[invocationIDMetaKey] = meta.InvocationID
	}
	return result
}

// NotifyResourceUpdates sends resource update notifications for each URI provided.
func NotifyResourceUpdates(ctx context.Context, notify ResourceUpdateNotifier, uris ...string) {
	if notify == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	for _, uri := range uris {
		if strings.TrimSpace(uri) == "" {
			continue
		}
		notify(ctx, uri)
	}
}
