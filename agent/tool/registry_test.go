package tool

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
	contactx "github.com/chatdesk/support-assistant/agent/contact"
	ordersx "github.com/chatdesk/support-assistant/agent/orders"
)

type fakeOrderStore struct {
	statuses map[int64]string
	err      error
}

func (f *fakeOrderStore) Status(ctx context.Context, orderID int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	status, ok := f.statuses[orderID]
	if !ok {
		return "", ordersx.ErrOrderNotFound
	}
	return status, nil
}

func (f *fakeOrderStore) Dump(ctx context.Context) ([]ordersx.Order, error) {
	return nil, nil
}

type fakeContactLog struct {
	records []contactx.Record
	err     error
}

func (f *fakeContactLog) Append(ctx context.Context, rec contactx.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func newTestRegistry(t *testing.T, store *fakeOrderStore, log *fakeContactLog) *Registry {
	t.Helper()
	r, err := NewRegistry(store, log)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func TestDispatchOrderStatusFound(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t,
		&fakeOrderStore{statuses: map[int64]string{150: "Shipped"}},
		&fakeContactLog{},
	)

	out, err := r.Dispatch(context.Background(), contractx.ToolCall{
		CallID:    "call_1",
		Name:      ToolOrderStatus,
		Arguments: `{"order_id":"150"}`,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.CallID != "call_1" {
		t.Fatalf("unexpected call id: %s", out.CallID)
	}
	if out.Output != "Shipped" {
		t.Fatalf("Dispatch() output = %q, want Shipped", out.Output)
	}
}

func TestDispatchOrderStatusNotFoundIsNotAnError(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, &fakeOrderStore{statuses: map[int64]string{}}, &fakeContactLog{})

	for _, raw := range []string{
		`{"order_id":"150"}`,
		`{"order_id":"999"}`,
		`{"order_id":"abc"}`,
	} {
		out, err := r.Dispatch(context.Background(), contractx.ToolCall{
			CallID:    "call_2",
			Name:      ToolOrderStatus,
			Arguments: raw,
		})
		if err != nil {
			t.Fatalf("Dispatch(%s) error = %v", raw, err)
		}
		if out.Output != OrderNotFoundOutput {
			t.Fatalf("Dispatch(%s) output = %q, want %q", raw, out.Output, OrderNotFoundOutput)
		}
	}
}

func TestDispatchOrderStatusMissingArgument(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, &fakeOrderStore{}, &fakeContactLog{})

	_, err := r.Dispatch(context.Background(), contractx.ToolCall{
		Name:      ToolOrderStatus,
		Arguments: `{}`,
	})
	if !errors.Is(err, contractx.ErrBadArguments) {
		t.Fatalf("Dispatch() error = %v, want ErrBadArguments", err)
	}
}

func TestDispatchHumanHandoffAppendsRecord(t *testing.T) {
	t.Parallel()

	log := &fakeContactLog{}
	r := newTestRegistry(t, &fakeOrderStore{}, log)

	out, err := r.Dispatch(context.Background(), contractx.ToolCall{
		CallID:    "call_3",
		Name:      ToolHumanHandoff,
		Arguments: `{"full_name":"Zion Ochayon","email":"test@gmail.com","phone":"0525650674"}`,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Output != HandoffConfirmation {
		t.Fatalf("Dispatch() output = %q, want confirmation", out.Output)
	}
	if len(log.records) != 1 {
		t.Fatalf("expected one record, got %d", len(log.records))
	}
	if log.records[0].FullName != "Zion Ochayon" {
		t.Fatalf("unexpected record: %+v", log.records[0])
	}
}

func TestDispatchHumanHandoffNoFormatValidation(t *testing.T) {
	t.Parallel()

	log := &fakeContactLog{}
	r := newTestRegistry(t, &fakeOrderStore{}, log)

	out, err := r.Dispatch(context.Background(), contractx.ToolCall{
		Name:      ToolHumanHandoff,
		Arguments: `{"full_name":"x","email":"not-an-email","phone":""}`,
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if out.Output != HandoffConfirmation {
		t.Fatalf("Dispatch() output = %q, want confirmation", out.Output)
	}
	if len(log.records) != 1 {
		t.Fatalf("expected one record, got %d", len(log.records))
	}
}

func TestDispatchHumanHandoffMissingField(t *testing.T) {
	t.Parallel()

	log := &fakeContactLog{}
	r := newTestRegistry(t, &fakeOrderStore{}, log)

	_, err := r.Dispatch(context.Background(), contractx.ToolCall{
		Name:      ToolHumanHandoff,
		Arguments: `{"full_name":"x","email":"y"}`,
	})
	if !errors.Is(err, contractx.ErrBadArguments) {
		t.Fatalf("Dispatch() error = %v, want ErrBadArguments", err)
	}
	if len(log.records) != 0 {
		t.Fatalf("no record must be written, got %d", len(log.records))
	}
}

func TestDispatchUnknownTool(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, &fakeOrderStore{}, &fakeContactLog{})

	_, err := r.Dispatch(context.Background(), contractx.ToolCall{
		Name:      "delete_everything",
		Arguments: `{}`,
	})
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownTool", err)
	}
}

func TestDispatchUnparseableArguments(t *testing.T) {
	t.Parallel()

	r := newTestRegistry(t, &fakeOrderStore{}, &fakeContactLog{})

	_, err := r.Dispatch(context.Background(), contractx.ToolCall{
		Name:      ToolOrderStatus,
		Arguments: `not json`,
	})
	if !errors.Is(err, contractx.ErrBadArguments) {
		t.Fatalf("Dispatch() error = %v, want ErrBadArguments", err)
	}
}
