package controllers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbonnet/cinelist/internal/models"
	"github.com/sirupsen/logrus"
)

// CleanupController removes image files left behind by failed enrichments
// or deleted movies
type CleanupController struct {
	db        *models.Database
	imagesDir string
	logger    *logrus.Logger
}

// NewCleanupController creates a new cleanup controller
func NewCleanupController(db *models.Database, imagesDir string, logger *logrus.Logger) *CleanupController {
	return &CleanupController{
		db:        db,
		imagesDir: imagesDir,
		logger:    logger,
	}
}

// SweepOrphanedImages deletes files in the images directory that no stored
// movie references
func (c *CleanupController) SweepOrphanedImages() error {
	entries, err := os.ReadDir(c.imagesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read images directory: %w", err)
	}

	movies, err := c.db.GetAllMovies()
	if err != nil {
		return fmt.Errorf("failed to load movies: %w", err)
	}

	referenced := make(map[string]bool)
	for _, movie := range movies {
		for _, path := range movie.ImagePaths {
			referenced[filepath.Base(path)] = true
		}
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}

		path := filepath.Join(c.imagesDir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.logger.WithError(err).WithField("path", path).Warn("Failed to remove orphaned image")
			continue
		}
		removed++
	}

	if removed > 0 {
		c.logger.WithField("count", removed).Info("Removed orphaned images")
	}

	return nil
}
