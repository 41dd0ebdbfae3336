package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/mbonnet/cinelist/internal/config"
	"github.com/mbonnet/cinelist/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://image.tmdb.org/t/p/w780"

// maxImages caps downloads per movie regardless of how many references the
// caller passes in
const maxImages = 3

// Fetcher downloads movie images into a local directory
type Fetcher struct {
	baseURL    string
	dir        string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewFetcher creates a new image fetcher
func NewFetcher(cfg *config.Config, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		baseURL: defaultBaseURL,
		dir:     cfg.ImagesDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Fetch downloads up to 3 images concurrently and returns the local paths of
// the ones that succeeded, in original reference order. A failed item is
// simply omitted; a single bad download never fails the whole fetch.
func (f *Fetcher) Fetch(ctx context.Context, refs []string, nameSeed string) []string {
	if len(refs) > maxImages {
		refs = refs[:maxImages]
	}
	if len(refs) == 0 {
		return nil
	}

	if err := os.MkdirAll(f.dir, 0755); err != nil {
		f.logger.WithError(err).Error("Failed to create images directory")
		return nil
	}

	seed := utils.SanitizeFilename(nameSeed)
	results := make([]string, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		g.Go(func() error {
			filename := fmt.Sprintf("%s_%d%s", seed, i, utils.FileExtension(ref))
			localPath := filepath.Join(f.dir, filename)

			if err := f.download(ctx, f.baseURL+ref, localPath); err != nil {
				f.logger.WithError(err).WithFields(logrus.Fields{
					"ref":   ref,
					"index": i,
				}).Warn("Failed to download image")
				return nil
			}

			results[i] = localPath
			return nil
		})
	}

	// Workers never return an error, so this only waits for the fan-in
	_ = g.Wait()

	var paths []string
	for _, path := range results {
		if path != "" {
			paths = append(paths, path)
		}
	}

	f.logger.WithFields(logrus.Fields{
		"requested":  len(refs),
		"downloaded": len(paths),
	}).Debug("Image fetch completed")

	return paths
}

// download retrieves a single image and writes it to localPath
func (f *Fetcher) download(ctx context.Context, imageURL, localPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "cinelist/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read image body: %w", err)
	}

	if err := os.WriteFile(localPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write image file: %w", err)
	}

	return nil
}
