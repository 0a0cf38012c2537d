package turnnode

import (
	"context"
	"fmt"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

func ResolveThread(ctx context.Context, in *GraphState, resolver ThreadResolver) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	threadID, err := resolver.ResolveOrCreate(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	in.ThreadID = threadID
	return in, nil
}
