package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_clip/internal/sheet"
)

// Script actions understood by the Apps Script endpoint.
const (
	ActionMarkAsRead     = "markAsRead"
	ActionToggleFavorite = "toggleFavorite"
)

// Command is the body POSTed to the script endpoint.
type Command struct {
	Action        string `json:"action"`
	ID            string `json:"id"`
	CurrentStatus *bool  `json:"currentStatus,omitempty"`
}

// CommandResult is the script's answer.
type CommandResult struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ScriptClient sends mutation commands to the Apps Script web app.
// Calls are rate limited and guarded by a circuit breaker.
type ScriptClient struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   RetryPolicy
}

// NewScriptClient creates a script client from cfg.
func NewScriptClient(cfg Config) *ScriptClient {
	cfg = cfg.withDefaults()
	return &ScriptClient{
		url:     cfg.ScriptURL,
		http:    cfg.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.MutationRPS), cfg.MutationBurst),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "apps-script",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// A rejected command means the endpoint is up.
				return err == nil || errors.Is(err, ErrMutationRejected)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("script breaker state changed",
					slog.String("name", name), slog.String("from", from.String()), slog.String("to", to.String()))
			},
		}),
		retry: DefaultRetryPolicy,
	}
}

// Enabled reports whether a script URL is configured.
func (c *ScriptClient) Enabled() bool {
	return c != nil && c.url != ""
}

// MarkAsRead asks the script to set Read on the row.
func (c *ScriptClient) MarkAsRead(ctx context.Context, id string) error {
	_, err := c.Do(ctx, Command{Action: ActionMarkAsRead, ID: id})
	return err
}

// ToggleFavorite flips Favorite given its current value and returns the
// value the script reports. When the script omits it, the flipped value is
// assumed.
func (c *ScriptClient) ToggleFavorite(ctx context.Context, id string, current bool) (bool, error) {
	res, err := c.Do(ctx, Command{Action: ActionToggleFavorite, ID: id, CurrentStatus: &current})
	if err != nil {
		return current, err
	}
	return parseResultFlag(res.Result, !current), nil
}

// Do sends cmd and returns the script's answer. A non-success status yields
// ErrMutationRejected.
func (c *ScriptClient) Do(ctx context.Context, cmd Command) (*CommandResult, error) {
	if !c.Enabled() {
		return nil, errors.New("SCRIPT_URL is not configured")
	}
	if strings.TrimSpace(cmd.ID) == "" {
		return nil, errors.New("id is required")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	metrics.Mutations.Add(1)

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return RetryDo(ctx, c.retry, func() (*CommandResult, error) {
			return c.post(ctx, cmd)
		})
	})
	if err != nil {
		metrics.MutationErrors.Add(1)
		slog.Warn("script command failed", slog.String("action", cmd.Action), slog.String("id", cmd.ID), slog.Any("error", err))
		return nil, err
	}
	return out.(*CommandResult), nil
}

func (c *ScriptClient) post(ctx context.Context, cmd Command) (*CommandResult, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	// text/plain keeps Apps Script from rejecting the body as a form.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if IsRetryableStatus(resp.StatusCode) {
		return nil, &statusError{Action: cmd.Action, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrTransport, cmd.Action, resp.StatusCode)
	}
	if looksLikeHTML(resp.Header.Get("Content-Type"), body) {
		return nil, htmlPageError(body)
	}

	var res CommandResult
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if res.Status != "success" {
		msg := res.Message
		if msg == "" {
			msg = "status " + res.Status
		}
		return nil, fmt.Errorf("%w: %s %s: %s", ErrMutationRejected, cmd.Action, cmd.ID, msg)
	}
	return &res, nil
}

// parseResultFlag reads a boolean-like script result through sheet.Truthy.
func parseResultFlag(raw json.RawMessage, fallback bool) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return fallback
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return sheet.Truthy(x)
	}
	return fallback
}
