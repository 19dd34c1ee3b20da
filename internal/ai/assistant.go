package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Run statuses that mean the remote job has not finished yet.
const (
	runQueued     = "queued"
	runInProgress = "in_progress"
	runCompleted  = "completed"
)

// AssistantClient drives the asynchronous run protocol: create a run on a fresh
// thread, poll it until it leaves the queued/in_progress states, then read the
// newest message of the thread.
type AssistantClient struct {
	APIKey       string
	BaseURL      string
	AssistantID  string
	PollInterval time.Duration
	httpc        *http.Client
}

func NewAssistantClient(apiKey, baseURL, assistantID string, pollInterval time.Duration) *AssistantClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &AssistantClient{
		APIKey:       strings.TrimSpace(apiKey),
		BaseURL:      strings.TrimRight(baseURL, "/"),
		AssistantID:  strings.TrimSpace(assistantID),
		PollInterval: pollInterval,
		httpc:        newHTTPClient(),
	}
}

func (c *AssistantClient) WithHTTPClient(h *http.Client) *AssistantClient {
	if h != nil {
		c.httpc = h
	}
	return c
}

func (c *AssistantClient) Name() string { return "openai-assistant" }

type run struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Status   string `json:"status"`
}

type threadMessages struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

var assistantHeaders = map[string]string{"OpenAI-Beta": "assistants=v2"}

func (c *AssistantClient) Generate(ctx context.Context, in Request) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	if c.AssistantID == "" {
		return "", fmt.Errorf("openai assistant: assistant id is empty")
	}

	r, err := c.createRun(ctx, in)
	if err != nil {
		return "", err
	}
	r, err = c.waitRun(ctx, r)
	if err != nil {
		return "", err
	}
	if r.Status != runCompleted {
		return "", fmt.Errorf("openai assistant: run %s ended with status %s", r.ID, r.Status)
	}
	return c.firstMessage(ctx, r.ThreadID)
}

func (c *AssistantClient) createRun(ctx context.Context, in Request) (*run, error) {
	body := map[string]any{
		"assistant_id": c.AssistantID,
		"thread": map[string]any{
			"messages": []chatMessage{{Role: "user", Content: in.Instructions}},
		},
	}
	if in.RequireJSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	var out run
	if err := doJSON(ctx, c.httpc, http.MethodPost, c.BaseURL+"/threads/runs", c.APIKey, assistantHeaders, body, &out); err != nil {
		return nil, fmt.Errorf("openai assistant: create run: %w", err)
	}
	return &out, nil
}

func (c *AssistantClient) waitRun(ctx context.Context, r *run) (*run, error) {
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for r.Status == runQueued || r.Status == runInProgress {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("openai assistant: run %s: %w", r.ID, ctx.Err())
		case <-ticker.C:
		}

		endpoint := fmt.Sprintf("%s/threads/%s/runs/%s", c.BaseURL, url.PathEscape(r.ThreadID), url.PathEscape(r.ID))
		var next run
		if err := doJSON(ctx, c.httpc, http.MethodGet, endpoint, c.APIKey, assistantHeaders, nil, &next); err != nil {
			return nil, fmt.Errorf("openai assistant: poll run %s: %w", r.ID, err)
		}
		if next.ThreadID == "" {
			next.ThreadID = r.ThreadID
		}
		r = &next
	}
	return r, nil
}

func (c *AssistantClient) firstMessage(ctx context.Context, threadID string) (string, error) {
	endpoint := fmt.Sprintf("%s/threads/%s/messages?order=desc&limit=1", c.BaseURL, url.PathEscape(threadID))
	var out threadMessages
	if err := doJSON(ctx, c.httpc, http.MethodGet, endpoint, c.APIKey, assistantHeaders, nil, &out); err != nil {
		return "", fmt.Errorf("openai assistant: list messages: %w", err)
	}
	if len(out.Data) == 0 || len(out.Data[0].Content) == 0 {
		return "", ErrEmptyContent
	}
	text := out.Data[0].Content[0].Text.Value
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}
