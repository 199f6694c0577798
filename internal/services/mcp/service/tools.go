package service

import (
	"fmt"

	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerThinkingTools(registrar mcpRegistrationTarget, server *Server, notify domain.ResourceUpdateNotifier, logf domain.Logf) error {
	tool, err := domain.DeliberateThinkingTool()
	if err != nil {
		return err
	}
	return registerTool(registrar, tool, domain.DeliberateThinkingHandler(server.ledger, notify, logf))
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerLedgerResources registers the readable ledger snapshot.
func registerLedgerResources(registrar mcpRegistrationTarget, server *Server) {
	registrar.AddResource(domain.LedgerResource(), domain.LedgerResourceHandler(server.ledger))
}
