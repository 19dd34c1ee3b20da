package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

func newHTTPClient() *http.Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	// No client timeout: callers bound each call with a context deadline.
	return &http.Client{Transport: tr}
}

// ChatClient calls the chat completions endpoint.
type ChatClient struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	httpc       *http.Client
}

func NewChatClient(apiKey, baseURL, model string, temperature float32) *ChatClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &ChatClient{
		APIKey:      strings.TrimSpace(apiKey),
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Model:       strings.TrimSpace(model),
		Temperature: temperature,
		httpc:       newHTTPClient(),
	}
}

// WithHTTPClient overrides the internal HTTP client.
func (c *ChatClient) WithHTTPClient(h *http.Client) *ChatClient {
	if h != nil {
		c.httpc = h
	}
	return c
}

func (c *ChatClient) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Temperature    float32           `json:"temperature"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatClient) Generate(ctx context.Context, in Request) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	body := chatCompletionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages:    []chatMessage{{Role: "user", Content: in.Instructions}},
	}
	if in.RequireJSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}

	var out chatCompletionResponse
	if err := doJSON(ctx, c.httpc, http.MethodPost, c.BaseURL+"/chat/completions", c.APIKey, nil, body, &out); err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyContent
	}
	return out.Choices[0].Message.Content, nil
}

// doJSON sends body (if any) as JSON and decodes a 2xx JSON reply into out.
func doJSON(ctx context.Context, httpc *http.Client, method, url, apiKey string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
