package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	contactx "github.com/chatdesk/support-assistant/agent/contact"
	contractx "github.com/chatdesk/support-assistant/agent/contract"
	ordersx "github.com/chatdesk/support-assistant/agent/orders"
)

// Tool names match the provisioned assistant's function schemas.
const (
	ToolOrderStatus  = "get_order_status"
	ToolHumanHandoff = "request_human_representative"
)

const (
	// OrderNotFoundOutput is a normal tool output, not an error: an
	// unknown order id is a representable outcome the assistant can
	// relay to the user.
	OrderNotFoundOutput = "Order ID not found"

	// HandoffConfirmation is returned after a contact record lands.
	HandoffConfirmation = "We saved your contact details and will contact you soon."
)

type handler func(ctx context.Context, args map[string]string) (string, error)

// Registry dispatches tool calls to local actions. Dispatch errors are
// typed so the caller can exclude the call from the submitted batch
// instead of failing the turn.
type Registry struct {
	handlers map[string]handler
}

func NewRegistry(orderStore ordersx.Store, contactLog contactx.Log) (*Registry, error) {
	if orderStore == nil {
		return nil, errors.New("order store is required")
	}
	if contactLog == nil {
		return nil, errors.New("contact log is required")
	}

	r := &Registry{handlers: make(map[string]handler, 2)}
	r.handlers[ToolOrderStatus] = orderStatusHandler(orderStore)
	r.handlers[ToolHumanHandoff] = humanHandoffHandler(contactLog)
	return r, nil
}

var _ contractx.Dispatcher = (*Registry)(nil)

func (r *Registry) Dispatch(ctx context.Context, call contractx.ToolCall) (contractx.ToolOutput, error) {
	h, ok := r.handlers[call.Name]
	if !ok {
		return contractx.ToolOutput{}, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, call.Name)
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return contractx.ToolOutput{}, err
	}

	output, err := h(ctx, args)
	if err != nil {
		return contractx.ToolOutput{}, err
	}
	return contractx.ToolOutput{CallID: call.CallID, Output: output}, nil
}

func parseArguments(raw string) (map[string]string, error) {
	args := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrBadArguments, err)
	}
	return args, nil
}

func requireArgs(args map[string]string, names ...string) error {
	for _, name := range names {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("%w: missing %q", contractx.ErrBadArguments, name)
		}
	}
	return nil
}
