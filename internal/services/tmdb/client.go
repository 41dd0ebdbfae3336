package tmdb

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

const defaultBaseURL = "https://api.themoviedb.org/3"

// Movie represents one candidate from a TMDb title search,
// in the provider's own ranking order.
type Movie struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"release_date"`
	VoteAverage *float64 `json:"vote_average"`
	PosterPath  string   `json:"poster_path"`
}

// Image represents a single poster or backdrop reference
type Image struct {
	FilePath    string   `json:"file_path"`
	VoteAverage *float64 `json:"vote_average"`
}

// ImageList holds the image references for a movie, partitioned by kind
type ImageList struct {
	Posters   []Image `json:"posters"`
	Backdrops []Image `json:"backdrops"`
}

// SimilarMovie carries only the title of a related movie
type SimilarMovie struct {
	Title string `json:"title"`
}

type searchResponse struct {
	Results []Movie `json:"results"`
}

type similarResponse struct {
	Results []SimilarMovie `json:"results"`
}

// Client handles communication with the TMDb API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new TMDb client
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDbAPIKey == "" {
		return nil, fmt.Errorf("TMDb API key is required")
	}

	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  cfg.TMDbAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// doGet performs a GET request against the TMDb API and decodes the response
func (c *Client) doGet(ctx context.Context, path string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	finalURL := c.baseURL + path + "?" + params.Encode()

	c.logger.WithField("path", path).Debug("Making TMDb API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "cinelist/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("TMDb API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("TMDb API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse TMDb response: %w: %w", models.ErrDecode, err)
	}

	return nil
}

// Search searches TMDb for movies matching a title.
// Results keep the provider's ranking; an empty list is not an error.
func (c *Client) Search(ctx context.Context, title string) ([]Movie, error) {
	params := url.Values{}
	params.Add("query", title)

	var response searchResponse
	if err := c.doGet(ctx, "/search/movie", params, &response); err != nil {
		return nil, fmt.Errorf("movie search failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"title": title,
		"count": len(response.Results),
	}).Debug("TMDb search completed")

	return response.Results, nil
}

// Images fetches poster and backdrop references for a TMDb movie ID
func (c *Client) Images(ctx context.Context, movieID int) (*ImageList, error) {
	var images ImageList
	if err := c.doGet(ctx, fmt.Sprintf("/movie/%d/images", movieID), nil, &images); err != nil {
		return nil, fmt.Errorf("image lookup failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id":  movieID,
		"posters":   len(images.Posters),
		"backdrops": len(images.Backdrops),
	}).Debug("TMDb image lookup completed")

	return &images, nil
}

// Similar fetches similar movie titles for a TMDb movie ID
func (c *Client) Similar(ctx context.Context, movieID int) ([]SimilarMovie, error) {
	var response similarResponse
	if err := c.doGet(ctx, fmt.Sprintf("/movie/%d/similar", movieID), nil, &response); err != nil {
		return nil, fmt.Errorf("similar lookup failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"movie_id": movieID,
		"count":    len(response.Results),
	}).Debug("TMDb similar lookup completed")

	return response.Results, nil
}
