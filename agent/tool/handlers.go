package tool

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	contactx "github.com/chatdesk/support-assistant/agent/contact"
	ordersx "github.com/chatdesk/support-assistant/agent/orders"
)

func orderStatusHandler(store ordersx.Store) handler {
	return func(ctx context.Context, args map[string]string) (string, error) {
		if err := requireArgs(args, "order_id"); err != nil {
			return "", err
		}

		orderID, err := strconv.ParseInt(strings.TrimSpace(args["order_id"]), 10, 64)
		if err != nil {
			// A garbled id is the same outcome as an unknown one.
			return OrderNotFoundOutput, nil
		}

		status, err := store.Status(ctx, orderID)
		if errors.Is(err, ordersx.ErrOrderNotFound) {
			return OrderNotFoundOutput, nil
		}
		if err != nil {
			return "", fmt.Errorf("order status lookup: %w", err)
		}
		return status, nil
	}
}

func humanHandoffHandler(log contactx.Log) handler {
	return func(ctx context.Context, args map[string]string) (string, error) {
		if err := requireArgs(args, "full_name", "email", "phone"); err != nil {
			return "", err
		}

		rec := contactx.Record{
			FullName: args["full_name"],
			Email:    args["email"],
			Phone:    args["phone"],
		}
		if err := log.Append(ctx, rec); err != nil {
			return "", fmt.Errorf("append contact record: %w", err)
		}
		return HandoffConfirmation, nil
	}
}
