// Package errors provides structured errors shared by the MCP service.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidParameter marks a request field that violates its constraint.
	CodeInvalidParameter Code = "INVALID_PARAMETER"

	// CodeSerializationFailed marks a response that could not be encoded after
	// the ledger already advanced.
	CodeSerializationFailed Code = "SERIALIZATION_FAILED"
)

// JSON-RPC 2.0 error numbers, see https://www.jsonrpc.org/specification#error_object.
const (
	jsonRPCInvalidParams = -32602
	jsonRPCInternalError = -32603
)

// JSONRPCCode maps domain codes to JSON-RPC error numbers.
func (c Code) JSONRPCCode() int {
	switch c {
	case CodeInvalidParameter:
		return jsonRPCInvalidParams
	default:
		return jsonRPCInternalError
	}
}
