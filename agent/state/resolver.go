package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

// Resolver maps a user id to its conversation thread, creating the
// thread remotely on first contact. Check-then-create is serialized
// per user id so two concurrent first messages cannot race a second
// thread into existence.
type Resolver struct {
	store     ThreadStore
	assistant contractx.AssistantClient

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewResolver(store ThreadStore, assistant contractx.AssistantClient) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("thread store is required")
	}
	if assistant == nil {
		return nil, errors.New("assistant client is required")
	}
	return &Resolver{
		store:     store,
		assistant: assistant,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// ResolveOrCreate returns the existing thread handle for userID or
// creates, persists, and returns a new one.
func (r *Resolver) ResolveOrCreate(ctx context.Context, userID string) (string, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	threadID, err := r.store.Get(ctx, userID)
	if err == nil {
		return threadID, nil
	}
	if !errors.Is(err, ErrThreadNotFound) {
		return "", fmt.Errorf("load thread for user=%s: %w", userID, err)
	}

	threadID, err = r.assistant.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread for user=%s: %w", userID, err)
	}
	if err := r.store.Put(ctx, userID, threadID); err != nil {
		return "", fmt.Errorf("persist thread for user=%s: %w", userID, err)
	}
	return threadID, nil
}

// Reset clears every mapping. Threads created afterwards are fresh.
func (r *Resolver) Reset(ctx context.Context) error {
	return r.store.Reset(ctx)
}

func (r *Resolver) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}
