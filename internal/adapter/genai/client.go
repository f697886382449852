package genai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"pulse-orchestrator/internal/domain"
	"pulse-orchestrator/internal/infra/httpclient"
)

// ModeConfig maps a generation mode onto a concrete model and thinking level.
type ModeConfig struct {
	Model string
	Think string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Think    string        `json:"think,omitempty"`
}

// streamChunk is one line of the newline-delimited streaming response. The
// final chunk carries done=true and the usage counters.
type streamChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Done           bool `json:"done"`
	PromptTokens   int  `json:"prompt_tokens"`
	ResponseTokens int  `json:"response_tokens"`
	ThinkingTokens int  `json:"thinking_tokens"`
	TotalTokens    int  `json:"total_tokens"`
}

// Client talks to the generative-AI gateway over its streaming chat
// endpoint, accumulating chunks into the full text. A shared rate limiter
// keeps the service inside the upstream quota regardless of which pipeline
// issues the call.
type Client struct {
	baseURL    string
	analysis   ModeConfig
	chat       ModeConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient constructs the gateway client. requestsPerMinute <= 0 disables
// rate limiting.
func NewClient(baseURL string, analysis, chat ModeConfig, timeout time.Duration, requestsPerMinute int, logger *slog.Logger) *Client {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		analysis:   analysis,
		chat:       chat,
		httpClient: httpclient.NewPooledClient(timeout),
		limiter:    limiter,
		logger:     logger,
	}
}

// Generate sends the prompt and returns the accumulated text plus usage.
// HTTP 503 and 429 are surfaced as domain.ErrModelBusy so the retry policy
// upstream can branch on the transient class.
func (c *Client) Generate(ctx context.Context, prompt string, mode domain.GenerationMode) (*domain.ModelResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait cancelled: %w", err)
		}
	}

	cfg := c.chat
	if mode == domain.ModeAnalysis {
		cfg = c.analysis
	}

	reqBody := chatRequest{
		Model:    cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   true,
		Think:    cfg.Think,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("generation endpoint returned %d: %w", resp.StatusCode, domain.ErrModelBusy)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("generation endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	return c.accumulate(resp.Body, cfg.Model)
}

// accumulate concatenates the streamed chunks into one response.
func (c *Client) accumulate(body io.Reader, model string) (*domain.ModelResponse, error) {
	var sb strings.Builder
	var usage domain.TokenUsage

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk streamChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return nil, fmt.Errorf("failed to decode stream chunk: %w", err)
		}
		sb.WriteString(chunk.Message.Content)
		if chunk.Done {
			usage = domain.TokenUsage{
				PromptTokens:   chunk.PromptTokens,
				ResponseTokens: chunk.ResponseTokens,
				ThinkingTokens: chunk.ThinkingTokens,
				TotalTokens:    chunk.TotalTokens,
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read generation stream: %w", err)
	}

	c.logger.Debug("generation finished",
		slog.String("model", model),
		slog.Int("total_tokens", usage.TotalTokens))

	return &domain.ModelResponse{
		Text:  strings.TrimSpace(sb.String()),
		Usage: usage,
	}, nil
}

var _ domain.ModelClient = (*Client)(nil)
