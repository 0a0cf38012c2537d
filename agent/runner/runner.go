package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

const (
	// maxPollRetries bounds retries of a single status poll before the
	// error is treated as fatal for the turn.
	maxPollRetries       = 3
	retryInitialInterval = time.Second
	retryMaxInterval     = 15 * time.Second
)

type Config struct {
	PollInterval time.Duration `envconfig:"POLL_INTERVAL" split_words:"true" default:"500ms"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"2m"`
}

// Runner drives one run to a terminal state: poll on a fixed interval,
// service tool calls when the run pauses, and stop on completed,
// failed, or the wall-clock deadline.
type Runner struct {
	assistant contractx.AssistantClient
	tools     contractx.Dispatcher
	interval  time.Duration
	timeout   time.Duration
}

func New(assistant contractx.AssistantClient, tools contractx.Dispatcher, cfg Config) (*Runner, error) {
	if assistant == nil {
		return nil, errors.New("assistant client is required")
	}
	if tools == nil {
		return nil, errors.New("tool dispatcher is required")
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Runner{
		assistant: assistant,
		tools:     tools,
		interval:  interval,
		timeout:   timeout,
	}, nil
}

// Await blocks until the run reaches a terminal state. It returns nil
// on completion, ErrRunFailed when the remote service reports failure,
// and ErrRunTimeout when the deadline expires first.
func (r *Runner) Await(ctx context.Context, run contractx.Run) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// Call ids already dispatched this turn. A paused run keeps
	// reporting the same pending calls, so without this an action
	// whose result was excluded would re-execute on every poll.
	dispatched := make(map[string]bool)

	for {
		switch run.Status {
		case contractx.RunCompleted:
			return nil
		case contractx.RunFailed:
			return contractx.ErrRunFailed
		case contractx.RunRequiresAction:
			outputs := r.dispatchPending(ctx, run.ToolCalls, dispatched)
			if len(outputs) > 0 {
				next, err := r.assistant.SubmitToolOutputs(ctx, run.ThreadID, run.ID, outputs)
				if err != nil {
					return r.mapContextErr(ctx, fmt.Errorf("submit tool outputs: %w", err))
				}
				run = next
				continue
			}
			// Every pending action errored out. Nothing to submit;
			// keep polling and let the remote run resolve itself.
		}

		if err := r.sleep(ctx); err != nil {
			return err
		}

		next, err := r.poll(ctx, run)
		if err != nil {
			return r.mapContextErr(ctx, err)
		}
		run = next
	}
}

func (r *Runner) dispatchPending(ctx context.Context, calls []contractx.ToolCall, dispatched map[string]bool) []contractx.ToolOutput {
	var outputs []contractx.ToolOutput
	for _, call := range calls {
		if dispatched[call.CallID] {
			continue
		}
		dispatched[call.CallID] = true

		out, err := r.tools.Dispatch(ctx, call)
		if err != nil {
			// Excluded from the batch; the turn goes on without it.
			log.Warn().
				Err(err).
				Str("tool", call.Name).
				Str("call_id", call.CallID).
				Msg("tool call not serviced")
			continue
		}
		outputs = append(outputs, out)
	}
	return outputs
}

func (r *Runner) poll(ctx context.Context, run contractx.Run) (contractx.Run, error) {
	var next contractx.Run
	op := func() error {
		var err error
		next, err = r.assistant.GetRun(ctx, run.ThreadID, run.ID)
		return err
	}
	if err := backoff.Retry(op, newRetryBackoff(ctx)); err != nil {
		return contractx.Run{}, fmt.Errorf("poll run id=%s: %w", run.ID, err)
	}
	return next, nil
}

func (r *Runner) sleep(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return r.mapContextErr(ctx, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (r *Runner) mapContextErr(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return contractx.ErrRunTimeout
	}
	return err
}

// newRetryBackoff builds the retry policy for transient poll errors:
// exponential with jitter, capped attempts, context-aware.
func newRetryBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retryInitialInterval
	b.MaxInterval = retryMaxInterval
	b.RandomizationFactor = 0.5
	b.Multiplier = 2.0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, maxPollRetries), ctx)
}
