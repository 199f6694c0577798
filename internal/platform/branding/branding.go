// Package branding holds the user-facing product identity.
package branding

// AppName is the implementation name reported to MCP clients.
const AppName = "deliberate-thinking"

// Version is the implementation version reported to MCP clients.
const Version = "0.1.0"
