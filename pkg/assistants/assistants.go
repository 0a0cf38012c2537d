package assistants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/chatdesk/support-assistant/agent/contract"
)

type Config struct {
	APIKey      string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	AssistantID string        `envconfig:"ASSISTANT_ID" split_words:"true" required:"true"`
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

// Client drives a provisioned assistant profile over the hosted
// threads/runs API. The profile itself (instructions, tool schemas,
// model) is created out-of-band.
type Client struct {
	api         openaisdk.Client
	assistantID string
}

var _ contractx.AssistantClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}
	assistantID := strings.TrimSpace(cfg.AssistantID)
	if assistantID == "" {
		return nil, errors.New("assistant id is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		api:         openaisdk.NewClient(opts...),
		assistantID: assistantID,
	}, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.Beta.Threads.New(ctx, openaisdk.BetaThreadNewParams{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

func (c *Client) AddUserMessage(ctx context.Context, threadID, text string) error {
	_, err := c.api.Beta.Threads.Messages.New(ctx, threadID, openaisdk.BetaThreadMessageNewParams{
		Role: openaisdk.BetaThreadMessageNewParamsRoleUser,
		Content: openaisdk.BetaThreadMessageNewParamsContentUnion{
			OfString: openaisdk.String(text),
		},
	})
	if err != nil {
		return fmt.Errorf("add user message: %w", err)
	}
	return nil
}

func (c *Client) CreateRun(ctx context.Context, threadID string) (contractx.Run, error) {
	run, err := c.api.Beta.Threads.Runs.New(ctx, threadID, openaisdk.BetaThreadRunNewParams{
		AssistantID: c.assistantID,
	})
	if err != nil {
		return contractx.Run{}, fmt.Errorf("create run: %w", err)
	}
	return toRun(threadID, run), nil
}

func (c *Client) GetRun(ctx context.Context, threadID, runID string) (contractx.Run, error) {
	run, err := c.api.Beta.Threads.Runs.Get(ctx, threadID, runID)
	if err != nil {
		return contractx.Run{}, fmt.Errorf("get run: %w", err)
	}
	return toRun(threadID, run), nil
}

func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []contractx.ToolOutput) (contractx.Run, error) {
	params := openaisdk.BetaThreadRunSubmitToolOutputsParams{
		ToolOutputs: make([]openaisdk.BetaThreadRunSubmitToolOutputsParamsToolOutput, 0, len(outputs)),
	}
	for _, out := range outputs {
		params.ToolOutputs = append(params.ToolOutputs, openaisdk.BetaThreadRunSubmitToolOutputsParamsToolOutput{
			ToolCallID: openaisdk.String(out.CallID),
			Output:     openaisdk.String(out.Output),
		})
	}

	run, err := c.api.Beta.Threads.Runs.SubmitToolOutputs(ctx, threadID, runID, params)
	if err != nil {
		return contractx.Run{}, fmt.Errorf("submit tool outputs: %w", err)
	}
	return toRun(threadID, run), nil
}

func (c *Client) LatestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	page, err := c.api.Beta.Threads.Messages.List(ctx, threadID, openaisdk.BetaThreadMessageListParams{
		Order: openaisdk.BetaThreadMessageListParamsOrderDesc,
	})
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range page.Data {
		if string(msg.Role) != "assistant" {
			continue
		}
		for _, part := range msg.Content {
			if value := part.Text.Value; value != "" {
				return value, nil
			}
		}
	}
	return "", errors.New("no assistant message in thread")
}

func toRun(threadID string, run *openaisdk.Run) contractx.Run {
	out := contractx.Run{
		ID:       run.ID,
		ThreadID: threadID,
		Status:   contractx.RunStatusFromRemote(string(run.Status)),
	}
	for _, call := range run.RequiredAction.SubmitToolOutputs.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, contractx.ToolCall{
			CallID:    call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out
}
