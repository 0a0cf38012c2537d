package contract

import "context"

// AssistantClient is the remote assistant service boundary: thread and
// run management for one provisioned assistant profile.
type AssistantClient interface {
	// CreateThread creates an empty conversation and returns its handle.
	CreateThread(ctx context.Context) (string, error)

	// AddUserMessage appends a user-role message to the thread.
	AddUserMessage(ctx context.Context, threadID, text string) error

	// CreateRun starts a run of the assistant over the thread.
	CreateRun(ctx context.Context, threadID string) (Run, error)

	// GetRun fetches the current state of a run.
	GetRun(ctx context.Context, threadID, runID string) (Run, error)

	// SubmitToolOutputs feeds tool results back into a paused run and
	// returns the run's state after submission.
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error)

	// LatestAssistantMessage returns the text of the newest
	// assistant-authored message in the thread.
	LatestAssistantMessage(ctx context.Context, threadID string) (string, error)
}

// Dispatcher executes one tool call. A returned error means the call
// could not be serviced and must be excluded from the submitted batch.
type Dispatcher interface {
	Dispatch(ctx context.Context, call ToolCall) (ToolOutput, error)
}
