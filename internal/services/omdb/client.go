package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mbonnet/cinelist/internal/config"
	"github.com/mbonnet/cinelist/internal/models"
	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://www.omdbapi.com"

// Result represents the OMDb response for a title lookup.
// The provider signals its own not-found through Response/Error rather than
// an HTTP error, so a negative match is not an error for the client itself.
type Result struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Director   string `json:"Director"`
	Genre      string `json:"Genre"`
	Plot       string `json:"Plot"`
	Runtime    string `json:"Runtime"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Found reports whether the provider matched the title
func (r *Result) Found() bool {
	return r.Response == "True"
}

// Client wraps direct OMDb API HTTP calls
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new OMDb client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.OMDbAPIKey == "" {
		return nil, fmt.Errorf("OMDb API key is required")
	}

	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  cfg.OMDbAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// Lookup fetches movie data for an exact title
func (c *Client) Lookup(ctx context.Context, title string) (*Result, error) {
	params := url.Values{}
	params.Add("t", title)
	params.Add("apikey", c.apiKey)

	finalURL := c.baseURL + "/?" + params.Encode()

	c.logger.WithField("title", title).Debug("Performing OMDb lookup")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "cinelist/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OMDb API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("OMDb API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse OMDb response: %w: %w", models.ErrDecode, err)
	}

	c.logger.WithFields(logrus.Fields{
		"title": result.Title,
		"found": result.Found(),
	}).Debug("OMDb lookup completed")

	return &result, nil
}
