package domain

import (
	apperrors "github.com/louisbranch/deliberate.thinking/internal/platform/errors"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// toolError converts a handler failure into a JSON-RPC protocol error so the
// caller sees the domain code and message instead of an error tool result.
func toolError(err error) error {
	if err == nil {
		return nil
	}
	return &jsonrpc.Error{
		Code:    int64(apperrors.CodeOf(err).JSONRPCCode()),
		Message: err.Error(),
	}
}
