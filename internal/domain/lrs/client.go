// internal/domain/lrs/client.go
package lrs

import (
	"context"

	"video_xapi_tracker/internal/domain/statement"
)

// Authentication methods accepted in configuration.
const (
	AuthBasic = "basic"
	AuthOAuth = "oauth" // accepted as a config value; no transport support yet
)

// Result is the structured outcome of one delivery attempt sequence.
// HTTPCode 0 means the failure happened before any HTTP status was
// received (serialization error, connection refused, timeout, TLS error).
type Result struct {
	Success  bool   `json:"success"`
	Err      string `json:"error,omitempty"`
	HTTPCode int    `json:"http_code"`
	Response string `json:"response,omitempty"`
}

// Client defines an interface for talking to a Learning Record Store.
// This decouples the delivery engine from the HTTP transport.
type Client interface {
	SendStatement(ctx context.Context, st *statement.Statement) Result
	SendStatements(ctx context.Context, sts []*statement.Statement) Result
	TestConnection(ctx context.Context) Result
}
