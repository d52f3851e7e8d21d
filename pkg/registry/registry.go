package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkarl/bloggen/internal/models"
)

// ErrNotFound is returned when the registry does not know the requested
// connector.
var ErrNotFound = errors.New("connector not found in registry")

type ClientConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// Client resolves connector configuration schemas from the connector
// registry.
type Client struct {
	config  ClientConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("registry base URL is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}

	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, err
	}

	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

// specResponse is the registry's spec document. Only the envelope is
// typed; the connection specification itself stays raw.
type specResponse struct {
	ConnectionSpecification json.RawMessage `json:"connectionSpecification"`
	Streams                 []string        `json:"streams"`
}

// GetConfigSchema fetches the configuration schema for one connector.
// The schema document is returned verbatim so callers can embed it into
// prompts without caring about its shape.
func (c *Client) GetConfigSchema(ctx context.Context, canonicalID string) (models.ConfigSchema, error) {
	if canonicalID == "" {
		return models.ConfigSchema{}, errors.New("canonical ID is required")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return models.ConfigSchema{}, err
	}

	endpoint := fmt.Sprintf("%s/connectors/%s/spec", c.config.BaseURL, canonicalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.ConfigSchema{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.ConfigSchema{}, fmt.Errorf("registry request for %s failed: %w", canonicalID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.ConfigSchema{}, fmt.Errorf("%s: %w", canonicalID, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return models.ConfigSchema{}, fmt.Errorf("registry returned status %d for %s", resp.StatusCode, canonicalID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ConfigSchema{}, err
	}

	var spec specResponse
	if err := json.Unmarshal(body, &spec); err != nil {
		return models.ConfigSchema{}, fmt.Errorf("registry returned invalid JSON for %s: %w", canonicalID, err)
	}
	if len(spec.ConnectionSpecification) == 0 {
		return models.ConfigSchema{}, fmt.Errorf("registry spec for %s has no connectionSpecification", canonicalID)
	}

	return models.ConfigSchema{
		ConnectorID: canonicalID,
		Spec:        spec.ConnectionSpecification,
		Streams:     spec.Streams,
	}, nil
}
