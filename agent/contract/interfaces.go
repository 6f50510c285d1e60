package contract

import "context"

// ChatEngine turns one user message into one assistant reply, tracking
// per-session progress internally.
type ChatEngine interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (string, error)
}

// ToolGateway executes a single tool request. Business-negative conditions
// come back inside ToolResult; a Go error means the turn cannot proceed.
type ToolGateway interface {
	Execute(ctx context.Context, req ToolRequest) (ToolResult, error)
}

type Notifier interface {
	SendConfirmation(ctx context.Context, conf Confirmation) error
}
