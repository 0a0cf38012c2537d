package contract

// RunStatus is the local view of a remote run's lifecycle. Every
// in-flight remote status collapses into RunWorking; the polling loop
// only ever branches on the four values below.
type RunStatus string

const (
	RunWorking        RunStatus = "working"
	RunRequiresAction RunStatus = "requires_action"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
)

func (s RunStatus) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// RunStatusFromRemote maps a raw remote status string onto the local
// set. Unknown statuses count as still working so a new remote state
// never breaks the poll loop.
func RunStatusFromRemote(remote string) RunStatus {
	switch remote {
	case "requires_action":
		return RunRequiresAction
	case "completed":
		return RunCompleted
	case "failed", "cancelled", "expired", "incomplete":
		return RunFailed
	default:
		return RunWorking
	}
}

// Run is one execution of the assistant's reasoning over a thread.
type Run struct {
	ID        string
	ThreadID  string
	Status    RunStatus
	ToolCalls []ToolCall
}

// ToolCall is a request from a run for a local action. Arguments is
// the raw JSON object string emitted by the assistant.
type ToolCall struct {
	CallID    string
	Name      string
	Arguments string
}

// ToolOutput is the result fed back to the run for one tool call.
type ToolOutput struct {
	CallID string
	Output string
}
