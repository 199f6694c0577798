package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/jsonschema-go/jsonschema"
	apperrors "github.com/louisbranch/deliberate.thinking/internal/platform/errors"
	"github.com/louisbranch/deliberate.thinking/internal/services/mcp/ledger"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DeliberateThinkingToolName is the advertised tool name.
const DeliberateThinkingToolName = "deliberatethinking"

const tracerName = "github.com/louisbranch/deliberate.thinking/internal/services/mcp/domain"

// marshalResult encodes the response wire object; swapped in tests.
var marshalResult = json.Marshal

const deliberateThinkingDescription = `A detailed tool for dynamic and reflective problem-solving through thoughts.
This tool helps analyze problems through a flexible thinking process that can adapt and evolve.
Each thought can build on, question, or revise previous insights as understanding deepens.

When to use this tool:
- Breaking down complex problems into steps
- Planning and design with room for revision
- Analysis that might need course correction
- Problems where the full scope might not be clear initially
- Problems that require a multi-step solution
- Tasks that need to maintain context over multiple steps
- Situations where irrelevant information needs to be filtered out

Key features:
- You can adjust totalThoughts up or down as you progress
- You can question or revise previous thoughts
- You can add more thoughts even after reaching what seemed like the end
- You can express uncertainty and explore alternative approaches
- Not every thought needs to build linearly - you can branch or backtrack
- Generates a solution hypothesis
- Verifies the hypothesis based on the Chain of Thought steps
- Repeats the process until satisfied
- Provides a correct answer`

// ThinkingInput represents the MCP tool input for one thinking step.
type ThinkingInput struct {
	Thought           string  `json:"thought" jsonschema:"Current thinking step"`
	NextThoughtNeeded bool    `json:"nextThoughtNeeded" jsonschema:"Whether another thought step is needed"`
	ThoughtNumber     int     `json:"thoughtNumber" jsonschema:"Current thought number (minimum 1)"`
	TotalThoughts     int     `json:"totalThoughts" jsonschema:"Estimated total thoughts needed (minimum 1)"`
	IsRevision        *bool   `json:"isRevision,omitempty" jsonschema:"Whether this revises previous thinking"`
	RevisesThought    *int    `json:"revisesThought,omitempty" jsonschema:"Which thought number is being reconsidered"`
	BranchFromThought *int    `json:"branchFromThought,omitempty" jsonschema:"Branching point thought number"`
	BranchID          *string `json:"branchId,omitempty" jsonschema:"Branch identifier"`
	NeedsMoreThoughts *bool   `json:"needsMoreThoughts,omitempty" jsonschema:"If more thoughts are needed"`
}

// ThinkingResult represents the MCP tool output for one thinking step.
type ThinkingResult struct {
	ThoughtNumber        int      `json:"thoughtNumber" jsonschema:"Echoed thought number"`
	TotalThoughts        int      `json:"totalThoughts" jsonschema:"Echoed total thoughts estimate"`
	NextThoughtNeeded    bool     `json:"nextThoughtNeeded" jsonschema:"Echoed continuation flag"`
	Branches             []string `json:"branches" jsonschema:"Known branch names"`
	ThoughtHistoryLength int      `json:"thoughtHistoryLength" jsonschema:"Length of the active timeline"`
}

func (in ThinkingInput) toThought() ledger.Thought {
	return ledger.Thought{
		Content:           in.Thought,
		Number:            in.ThoughtNumber,
		Total:             in.TotalThoughts,
		NextNeeded:        in.NextThoughtNeeded,
		IsRevision:        in.IsRevision,
		RevisesThought:    in.RevisesThought,
		BranchFromThought: in.BranchFromThought,
		BranchID:          in.BranchID,
		NeedsMoreThoughts: in.NeedsMoreThoughts,
	}
}

func thinkingInputFromThought(t ledger.Thought) ThinkingInput {
	return ThinkingInput{
		Thought:           t.Content,
		NextThoughtNeeded: t.NextNeeded,
		ThoughtNumber:     t.Number,
		TotalThoughts:     t.Total,
		IsRevision:        t.IsRevision,
		RevisesThought:    t.RevisesThought,
		BranchFromThought: t.BranchFromThought,
		BranchID:          t.BranchID,
		NeedsMoreThoughts: t.NeedsMoreThoughts,
	}
}

// DeliberateThinkingTool defines the MCP tool schema for thinking steps.
// The lower bound of the sequence fields is only described, not encoded as a
// schema minimum, so out-of-range values reach ledger.Validate and fail with
// its message.
func DeliberateThinkingTool() (*mcp.Tool, error) {
	schema, err := thinkingInputSchema()
	if err != nil {
		return nil, err
	}
	return &mcp.Tool{
		Name:        DeliberateThinkingToolName,
		Description: deliberateThinkingDescription,
		InputSchema: schema,
	}, nil
}

func thinkingInputSchema() (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[ThinkingInput](nil)
	if err != nil {
		return nil, fmt.Errorf("infer %s input schema: %w", DeliberateThinkingToolName, err)
	}
	return schema, nil
}

// DeliberateThinkingHandler records one thinking step in the ledger.
// Every failure is returned as a JSON-RPC error carrying the message verbatim,
// -32602 for invalid parameters and -32603 otherwise.
//
// Validation, dispatch, mutation and the response projection run as a single
// ledger critical section. Logging, metrics, notifications and encoding
// happen afterwards; an encoding failure is reported even though the ledger
// already advanced.
func DeliberateThinkingHandler(l *ledger.Ledger, notify ResourceUpdateNotifier, logf Logf) mcp.ToolHandlerFor[ThinkingInput, ThinkingResult] {
	if logf == nil {
		logf = log.Printf
	}
	tracer := otel.Tracer(tracerName)

	return func(ctx context.Context, _ *mcp.CallToolRequest, input ThinkingInput) (*mcp.CallToolResult, ThinkingResult, error) {
		if l == nil {
			return nil, ThinkingResult{}, toolError(fmt.Errorf("thought ledger is not configured"))
		}
		invocationID, err := NewInvocationID()
		if err != nil {
			return nil, ThinkingResult{}, toolError(fmt.Errorf("generate invocation id: %w", err))
		}

		ctx, span := tracer.Start(ctx, DeliberateThinkingToolName+".submit", trace.WithAttributes(
			attribute.String("invocation.id", invocationID),
			attribute.Int("thought.number", input.ThoughtNumber),
			attribute.Int("thought.total", input.TotalThoughts),
		))
		defer span.End()

		projection, err := l.Submit(input.toThought())
		if err != nil {
			recordRejection(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.Int("rpc.jsonrpc.error_code", apperrors.CodeOf(err).JSONRPCCode()))
			logf("%s rejected: invocation=%s %v", DeliberateThinkingToolName, invocationID, err)
			return nil, ThinkingResult{}, toolError(err)
		}

		recordSubmission(projection)
		span.SetAttributes(
			attribute.String("thought.kind", projection.Kind.String()),
			attribute.Int("thought.history_length", projection.HistoryLength),
		)
		if input.BranchID != nil {
			span.SetAttributes(attribute.String("thought.branch_id", *input.BranchID))
		}

		result := ThinkingResult{
			ThoughtNumber:        input.ThoughtNumber,
			TotalThoughts:        input.TotalThoughts,
			NextThoughtNeeded:    input.NextThoughtNeeded,
			Branches:             projection.Branches,
			ThoughtHistoryLength: projection.HistoryLength,
		}

		logThought(logf, input)

		// Subscribers see the mutation even if encoding below fails.
		NotifyResourceUpdates(ctx, notify, LedgerResource().URI)

		payload, err := marshalResult(result)
		if err != nil {
			serializationErr := apperrors.Wrap(
				apperrors.CodeSerializationFailed,
				fmt.Sprintf("Failed to serialize response: %v", err),
				err,
			)
			span.RecordError(serializationErr)
			span.SetStatus(codes.Error, serializationErr.Error())
			return nil, ThinkingResult{}, toolError(serializationErr)
		}

		toolResult := CallToolResultWithMetadata(ToolCallMetadata{InvocationID: invocationID})
		toolResult.Content = []mcp.Content{&mcp.TextContent{Text: string(payload)}}
		return toolResult, result, nil
	}
}

// logThought writes the informational line for one step plus branch and
// revision annotations.
func logThought(logf Logf, input ThinkingInput) {
	logf("Deliberate Thinking Step %d/%d: %s", input.ThoughtNumber, input.TotalThoughts, input.Thought)
	if input.BranchID != nil {
		logf("  Branch: %s", *input.BranchID)
	}
	if input.IsRevision != nil && *input.IsRevision && input.RevisesThought != nil {
		logf("  Revision of thought %d", *input.RevisesThought)
	}
}
