package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

type fakeThreadStore struct {
	mu      sync.Mutex
	threads map[string]string
	getErr  error
	putErr  error
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{threads: make(map[string]string)}
}

func (f *fakeThreadStore) Get(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	threadID, ok := f.threads[userID]
	if !ok {
		return "", ErrThreadNotFound
	}
	return threadID, nil
}

func (f *fakeThreadStore) Put(ctx context.Context, userID, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.threads[userID] = threadID
	return nil
}

func (f *fakeThreadStore) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads = make(map[string]string)
	return nil
}

type fakeAssistant struct {
	created atomic.Int64
	err     error
}

func (f *fakeAssistant) CreateThread(ctx context.Context) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	n := f.created.Add(1)
	return fmt.Sprintf("thread_%d", n), nil
}

func (f *fakeAssistant) AddUserMessage(ctx context.Context, threadID, text string) error {
	return nil
}

func (f *fakeAssistant) CreateRun(ctx context.Context, threadID string) (contractx.Run, error) {
	return contractx.Run{}, nil
}

func (f *fakeAssistant) GetRun(ctx context.Context, threadID, runID string) (contractx.Run, error) {
	return contractx.Run{}, nil
}

func (f *fakeAssistant) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []contractx.ToolOutput) (contractx.Run, error) {
	return contractx.Run{}, nil
}

func (f *fakeAssistant) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	return "", nil
}

func TestResolverCreatesOnceAndReuses(t *testing.T) {
	t.Parallel()

	store := newFakeThreadStore()
	assistant := &fakeAssistant{}
	resolver, err := NewResolver(store, assistant)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	first, err := resolver.ResolveOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	second, err := resolver.ResolveOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if first != second {
		t.Fatalf("expected same thread, got %q and %q", first, second)
	}
	if got := assistant.created.Load(); got != 1 {
		t.Fatalf("expected one thread created, got %d", got)
	}
}

func TestResolverConcurrentFirstMessageSingleThread(t *testing.T) {
	t.Parallel()

	store := newFakeThreadStore()
	assistant := &fakeAssistant{}
	resolver, err := NewResolver(store, assistant)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	results := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			threadID, err := resolver.ResolveOrCreate(context.Background(), "racer")
			if err != nil {
				t.Errorf("ResolveOrCreate() error = %v", err)
				return
			}
			results[i] = threadID
		}(i)
	}
	wg.Wait()

	if got := assistant.created.Load(); got != 1 {
		t.Fatalf("expected exactly one thread created, got %d", got)
	}
	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatalf("thread ids diverge: %q vs %q", results[0], results[i])
		}
	}
}

func TestResolverResetForgetsUser(t *testing.T) {
	t.Parallel()

	store := newFakeThreadStore()
	assistant := &fakeAssistant{}
	resolver, err := NewResolver(store, assistant)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	before, err := resolver.ResolveOrCreate(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if err := resolver.Reset(context.Background()); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	after, err := resolver.ResolveOrCreate(context.Background(), "u2")
	if err != nil {
		t.Fatalf("ResolveOrCreate() error = %v", err)
	}
	if before == after {
		t.Fatalf("expected fresh thread after reset, got %q twice", before)
	}
}

func TestResolverStoreErrorPropagates(t *testing.T) {
	t.Parallel()

	store := newFakeThreadStore()
	store.getErr = errors.New("redis down")
	resolver, err := NewResolver(store, &fakeAssistant{})
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	_, err = resolver.ResolveOrCreate(context.Background(), "u3")
	if !errors.Is(err, store.getErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
