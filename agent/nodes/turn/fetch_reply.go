package turnnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

func FetchReply(ctx context.Context, in *GraphState, assistant contractx.AssistantClient) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.RunFailed {
		in.Reply = FailureReply
		return in, nil
	}

	text, err := assistant.LatestAssistantMessage(ctx, in.ThreadID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Error().Err(err).Str("thread_id", in.ThreadID).Msg("fetch reply failed")
		in.Reply = FailureReply
		return in, nil
	}

	in.Reply = text
	return in, nil
}
