// Package domain translates MCP tool and resource calls into ledger
// operations.
//
// Each deliberatethinking call decodes its arguments into a ledger thought,
// submits it as one atomic ledger operation and echoes the projection back
// to the client. The per-step log line, metrics and trace spans live here
// too and never influence ledger behavior.
package domain
