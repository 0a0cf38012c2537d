package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

func AppendMessage(ctx context.Context, in *GraphState, assistant contractx.AssistantClient) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if err := assistant.AddUserMessage(ctx, in.ThreadID, in.Text); err != nil {
		return nil, fmt.Errorf("append user message thread=%s: %w", in.ThreadID, err)
	}
	return in, nil
}
