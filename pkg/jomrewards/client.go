// Package jomrewards is a client for the JomRewards public send-message API.
package jomrewards

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

const DefaultURL = "https://app.jomrewards.my/api/public/send-message/"

const TypeBodyWithButtons = "body_with_buttons"

var ErrAPIKeyNotSet = errors.New("JOMREWARDS_API_KEY is not set")

type Button struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

func QuickReply(name, key string) Button {
	return Button{Type: "quick_reply", Name: name, Key: key}
}

type SendRequest struct {
	RecipientPhone string   `json:"recipient_phone"`
	Type           string   `json:"type"`
	MessageBody    string   `json:"message_body"`
	Buttons        []Button `json:"buttons"`
}

// APIError carries the upstream failure. Message is the API's own "message"
// field when it sent one.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("jomrewards API responded with HTTP %d", e.StatusCode)
}

type Config struct {
	URL           string
	APIKey        string
	RatePerMinute int
	Timeout       time.Duration
}

func LoadConfig() Config {
	return Config{
		URL:           env.GetEnvStringOrDefault("JOMREWARDS_API_URL", DefaultURL),
		APIKey:        env.GetEnvStringOrDefault("JOMREWARDS_API_KEY", ""),
		RatePerMinute: env.GetEnvIntOrDefault("JOMREWARDS_RATE_PER_MINUTE", 30, 1),
		Timeout:       env.GetEnvDurationOrDefault("JOMREWARDS_TIMEOUT", 15*time.Second),
	}
}

type Client struct {
	url     string
	apiKey  string
	http    *resty.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	httpClient.OnError(func(req *resty.Request, err error) {
		var respErr *resty.ResponseError
		if errors.As(err, &respErr) {
			log.Logger().WithField("component", "jomrewards").WithError(respErr.Err).Error("Request failed")
		}
	})

	return &Client{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1),
	}
}

// Send posts one message request. Non-2xx answers become *APIError.
func (c *Client) Send(ctx context.Context, payload SendRequest) (map[string]interface{}, error) {
	if c.apiKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var result map[string]interface{}
	var failure map[string]interface{}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-API-Key", c.apiKey).
		SetBody(payload).
		SetResult(&result).
		SetError(&failure).
		Post(c.url)
	if err != nil {
		return nil, fmt.Errorf("post message: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Body: strings.TrimSpace(resp.String())}
		if msg, ok := failure["message"].(string); ok {
			apiErr.Message = msg
		}
		return nil, apiErr
	}
	return result, nil
}
