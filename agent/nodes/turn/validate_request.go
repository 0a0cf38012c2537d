package turnnode

import (
	"context"
	"errors"
	"strings"
	"time"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

var (
	ErrInvalidUser    = errors.New("user id is empty")
	ErrInvalidMessage = errors.New("message is empty")
)

// FailureReply is the fixed user-facing text for any turn whose run
// did not complete. Raw remote errors never reach the caller.
const FailureReply = "There was an error completing your request. Please try again."

type GraphInput struct {
	UserID string
	Text   string
}

type GraphOutput struct {
	Reply string
}

type GraphState struct {
	UserID string
	Text   string
	Now    time.Time

	ThreadID  string
	RunFailed bool
	Reply     string
}

// ThreadResolver yields the conversation handle for a user,
// creating one on first contact.
type ThreadResolver interface {
	ResolveOrCreate(ctx context.Context, userID string) (string, error)
}

// RunAwaiter drives a run to a terminal state.
type RunAwaiter interface {
	Await(ctx context.Context, run contractx.Run) error
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return nil, ErrInvalidUser
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		UserID: userID,
		Text:   text,
		Now:    nowFn().UTC(),
	}, nil
}
