package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
	turnnode "github.com/chatdesk/support-assistant/agent/nodes/turn"
	ordersx "github.com/chatdesk/support-assistant/agent/orders"
)

var (
	ErrInvalidUser    = turnnode.ErrInvalidUser
	ErrInvalidMessage = turnnode.ErrInvalidMessage
)

// SessionResolver resolves conversation handles and supports the
// administrative bulk reset.
type SessionResolver interface {
	turnnode.ThreadResolver
	Reset(ctx context.Context) error
}

// Orchestrator turns one inbound (user, message) pair into a reply,
// servicing any tool calls the assistant's run requests on the way.
type Orchestrator struct {
	resolver  SessionResolver
	assistant contractx.AssistantClient
	awaiter   turnnode.RunAwaiter
	orders    ordersx.Store

	graphRunner compose.Runnable[turnnode.GraphInput, turnnode.GraphOutput]

	now func() time.Time
}

func New(
	resolver SessionResolver,
	assistant contractx.AssistantClient,
	awaiter turnnode.RunAwaiter,
	orderStore ordersx.Store,
) (*Orchestrator, error) {
	if resolver == nil {
		return nil, errors.New("session resolver is required")
	}
	if assistant == nil {
		return nil, errors.New("assistant client is required")
	}
	if awaiter == nil {
		return nil, errors.New("run awaiter is required")
	}
	if orderStore == nil {
		return nil, errors.New("order store is required")
	}

	o := &Orchestrator{
		resolver:  resolver,
		assistant: assistant,
		awaiter:   awaiter,
		orders:    orderStore,
		now:       time.Now,
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn runs one full user-message-to-reply cycle.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID string, text string) (string, error) {
	out, err := o.graphRunner.Invoke(ctx, turnnode.GraphInput{
		UserID: userID,
		Text:   text,
	})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Reset clears every user->thread mapping and logs a diagnostic dump
// of the order records. A dump failure does not fail the reset.
func (o *Orchestrator) Reset(ctx context.Context) error {
	if err := o.resolver.Reset(ctx); err != nil {
		return err
	}

	all, err := o.orders.Dump(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("order dump failed")
		return nil
	}
	for _, order := range all {
		log.Debug().Int64("order_id", order.ID).Str("status", order.Status).Msg("order record")
	}
	log.Info().Int("orders", len(all)).Msg("threads reset")
	return nil
}
