// Package genai calls a chat-completion API to rate the strength of a
// student's extracurricular activities on a 1..10 scale. The client is the
// sole implementation of scoring.ActivityRater; callers own the fallback
// policy when it errors.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"collegeplan-workers/internal/common/config"
	commonhttp "collegeplan-workers/internal/common/http"
	"collegeplan-workers/internal/common/logger"
)

var (
	ErrRatingTimeout      = errors.New("ACTIVITY_RATING_TIMEOUT")
	ErrRatingFailed       = errors.New("ACTIVITY_RATING_FAILED")
	ErrRatingUnconfigured = errors.New("ACTIVITY_RATING_UNCONFIGURED")
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	client     *commonhttp.Client
	logger     logger.Logger
}

// NewClient builds a rater from injected configuration. The API key lives on
// the client instance only, never in package state.
func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: 2,
		// No client-level timeout; the request context enforces deadlines.
		client: commonhttp.NewClient(0),
		logger: log.With(map[string]interface{}{
			"component": "genai",
		}),
	}
}

// Configured reports whether the client has a usable credential. Callers
// should skip the call and use the neutral default when this is false.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Rate scores the flattened activities text on a 1..10 scale.
func (c *Client) Rate(ctx context.Context, activitiesText string) (float64, error) {
	if !c.Configured() {
		return 0, ErrRatingUnconfigured
	}

	body, _ := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: ratingSystemPrompt},
			{Role: "user", Content: activitiesText},
		},
		MaxTokens:   10,
		Temperature: 0,
	})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, ErrRatingTimeout
			}
		}

		req, err := http.NewRequest(http.MethodPost,
			c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRatingFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, lastErr = c.client.DoWithContext(ctx, req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return 0, ErrRatingTimeout
		}
	}

	if resp == nil {
		if ctx.Err() == context.DeadlineExceeded {
			return 0, ErrRatingTimeout
		}
		return 0, fmt.Errorf("%w: %v", ErrRatingFailed, lastErr)
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("%w: decode error: %v", ErrRatingFailed, err)
	}
	if len(parsed.Choices) == 0 {
		return 0, fmt.Errorf("%w: empty choices", ErrRatingFailed)
	}

	rating, err := parseRating(parsed.Choices[0].Message.Content)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRatingFailed, err)
	}

	c.logger.Info("activities rated", map[string]interface{}{
		"rating": rating,
	})
	return rating, nil
}

const ratingSystemPrompt = "You rate the strength of a high school student's " +
	"extracurricular activities for college admissions. Respond with a single " +
	"integer from 1 (weak) to 10 (exceptional). No other text."

var ratingPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// parseRating pulls the first number out of the model's reply and checks it
// lands on the 1..10 scale.
func parseRating(content string) (float64, error) {
	match := ratingPattern.FindString(content)
	if match == "" {
		return 0, fmt.Errorf("no numeric rating in %q", strings.TrimSpace(content))
	}
	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("bad rating %q", match)
	}
	if rating < 1 || rating > 10 {
		return 0, fmt.Errorf("rating %v out of range", rating)
	}
	return rating, nil
}
