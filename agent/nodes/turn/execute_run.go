package turnnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

// ExecuteRun starts a run over the thread and drives it terminal. Run
// failures and timeouts are absorbed into RunFailed; only cancellation
// escapes as an error.
func ExecuteRun(ctx context.Context, in *GraphState, assistant contractx.AssistantClient, awaiter RunAwaiter) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	run, err := assistant.CreateRun(ctx, in.ThreadID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		log.Error().Err(err).Str("thread_id", in.ThreadID).Msg("create run failed")
		in.RunFailed = true
		return in, nil
	}

	switch err := awaiter.Await(ctx, run); {
	case err == nil:
	case errors.Is(err, context.Canceled):
		return nil, err
	case errors.Is(err, contractx.ErrRunFailed):
		log.Warn().Str("thread_id", in.ThreadID).Str("run_id", run.ID).Msg("run failed")
		in.RunFailed = true
	case errors.Is(err, contractx.ErrRunTimeout):
		log.Warn().Str("thread_id", in.ThreadID).Str("run_id", run.ID).Msg("run timed out")
		in.RunFailed = true
	default:
		log.Error().Err(err).Str("thread_id", in.ThreadID).Str("run_id", run.ID).Msg("run aborted")
		in.RunFailed = true
	}
	return in, nil
}
