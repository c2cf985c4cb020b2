package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Status reports whether the oracle produced its full answer or ran out
// of output budget.
type Status string

const (
	StatusFinished  Status = "finished"
	StatusTruncated Status = "truncated"
)

// Response is one oracle completion.
type Response struct {
	Content string
	Status  Status
}

// Message is a prior turn supplied as context for a call.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Oracle is the text-completion dependency of the pipeline. Calls are
// stateless; the implementation retries transport failures internally.
type Oracle interface {
	Call(ctx context.Context, prompt string) (Response, error)
	CallWithHistory(ctx context.Context, prompt string, history []Message) (Response, error)
}

// Client calls the OpenAI chat completions API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

const defaultBaseURL = "https://api.openai.com/v1"

func NewClient(apiKey, model, baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: log,
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Call sends a single-turn prompt.
func (c *Client) Call(ctx context.Context, prompt string) (Response, error) {
	return c.CallWithHistory(ctx, prompt, nil)
}

// CallWithHistory sends a prompt preceded by prior messages. Transport
// failures are retried with exponential backoff; exhausting the retry
// budget returns an error, which aborts the document run.
func (c *Client) CallWithHistory(ctx context.Context, prompt string, history []Message) (Response, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: prompt})

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		resp, err := c.doRequest(ctx, messages)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return Response{}, err
		}
		c.log.Warn("retryable oracle error", "attempt", attempt, "error", err)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	return Response{}, fmt.Errorf("oracle call failed after %d attempts: %w", MaxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, messages []Message) (Response, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0,
	})
	if err != nil {
		return Response{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, &RetryableError{Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return Response{}, &RetryableError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return Response{}, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("oracle api status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return Response{}, fmt.Errorf("oracle error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty response from oracle")
	}

	choice := apiResp.Choices[0]
	status := StatusFinished
	if choice.FinishReason == "length" {
		status = StatusTruncated
	}
	return Response{Content: choice.Message.Content, Status: status}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
