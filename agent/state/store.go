package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrThreadNotFound = errors.New("thread not found")
	ErrInvalidUserID  = errors.New("user id is empty")
)

const (
	defaultThreadHashKey = "assistant:threads"
	maxResponseSizeBytes = 2 << 20
)

// ThreadStore is the durable user id -> conversation handle mapping.
type ThreadStore interface {
	Get(ctx context.Context, userID string) (string, error)
	Put(ctx context.Context, userID, threadID string) error
	Reset(ctx context.Context) error
}

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithHashKey(key string) StoreOption {
	return func(s *UpstashRedisStore) {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			s.hashKey = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore keeps every mapping in a single Redis hash via the
// Upstash REST protocol. One hash keeps Reset a single DEL instead of
// a prefix scan.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	hashKey    string
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("upstash redis url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("upstash redis token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashRedisStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		hashKey: defaultThreadHashKey,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store, nil
}

func (s *UpstashRedisStore) Get(ctx context.Context, userID string) (string, error) {
	field, err := hashField(userID)
	if err != nil {
		return "", err
	}

	resp, err := s.exec(ctx, []any{"HGET", s.hashKey, field})
	if err != nil {
		return "", err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return "", ErrThreadNotFound
	}

	var threadID string
	if err := json.Unmarshal(result, &threadID); err != nil {
		return "", fmt.Errorf("decode thread id: %w", err)
	}
	if threadID == "" {
		return "", ErrThreadNotFound
	}
	return threadID, nil
}

func (s *UpstashRedisStore) Put(ctx context.Context, userID, threadID string) error {
	field, err := hashField(userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(threadID) == "" {
		return errors.New("thread id is empty")
	}

	_, err = s.exec(ctx, []any{"HSET", s.hashKey, field, threadID})
	return err
}

func (s *UpstashRedisStore) Reset(ctx context.Context) error {
	_, err := s.exec(ctx, []any{"DEL", s.hashKey})
	return err
}

func hashField(userID string) (string, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return "", ErrInvalidUserID
	}
	return trimmed, nil
}

func (s *UpstashRedisStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}
