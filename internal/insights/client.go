// Package insights generates a short written review of a closed trade from
// its stored metrics and notes, using an OpenAI-compatible chat endpoint.
// The feature is optional: the client is only constructed when an API key
// is configured, and nothing in the journal depends on it.
package insights

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"trade-journal-go/internal/config"
	"trade-journal-go/internal/journal"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultEndpoint = "https://api.openai.com/v1"

// Client is a client for an OpenAI-compatible chat-completions API.
type Client struct {
	client  *resty.Client
	apiKey  string
	model   string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a new insights client from configuration.
func NewClient(cfg *config.Insights, logger *zap.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := resty.New().SetBaseURL(endpoint)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		apiKey:  cfg.ApiKey,
		model:   cfg.Model,
		logger:  logger,
		limiter: limiter,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ReviewTrade asks the model for a concise review of a closed trade.
func (c *Client) ReviewTrade(ctx context.Context, detail *journal.TradeDetail) (string, error) {
	prompt := buildPrompt(detail)

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a trading coach reviewing entries in a crypto trade journal. Be concise and concrete."},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   512,
		Temperature: 0,
	}

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(body).
		SetResult(&chatResponse{})

	resp, err := c.doRequest(ctx, "/chat/completions", req)
	if err != nil {
		return "", fmt.Errorf("failed to generate trade review: %w", err)
	}

	result := resp.Result().(*chatResponse)
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("trade review response contained no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// doRequest executes the request with rate limiting and bounded retries on
// 429 and server errors.
func (c *Client) doRequest(ctx context.Context, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(http.MethodPost, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() != 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// buildPrompt flattens the trade into a plain-text summary for the model.
func buildPrompt(d *journal.TradeDetail) string {
	s := fmt.Sprintf(
		"Review this %s trade on %s (%s):\n"+
			"entry %.4f, stop %.4f, risk %.2f%% of %.2f, leverage %.2fx",
		d.Direction, d.Coin.Name, d.Coin.Symbol,
		d.AvgEntry, d.StopLoss, d.StopLossPercentage, d.Amount, d.Derived.Leverage,
	)
	if d.AvgExit != nil && d.ProfitLoss != nil {
		s += fmt.Sprintf("\nexit %.4f, net P&L %.2f (%.2f%%)",
			*d.AvgExit, *d.ProfitLoss, *d.ProfitLossPercentage)
	}
	if d.Strategy.Name != "" {
		s += fmt.Sprintf("\nstrategy: %s", d.Strategy.Name)
	}
	if d.Notes != "" {
		s += fmt.Sprintf("\njournal notes: %s", d.Notes)
	}
	return s
}
