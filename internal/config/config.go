package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// OMDb
	OMDbAPIKey string

	// TMDb
	TMDbAPIKey string

	// Enrichment
	EnrichConcurrency    int // Max simultaneous enrichment pipelines (default: 10)
	CleanupIntervalHours int // Hours between orphaned image sweeps (default: 24)

	// Server
	ServerPort string

	// Paths
	ImagesDir    string // $CONFIG_DIR/images
	DatabaseFile string // $CONFIG_DIR/cinelist.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("ENRICH_CONCURRENCY", 10)
	viper.SetDefault("CLEANUP_INTERVAL_HOURS", 24)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "cinelist")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	imagesDir := viper.GetString("IMAGES_DIR")
	if imagesDir == "" {
		imagesDir = filepath.Join(configDir, "images")
	}

	config := &Config{
		// OMDb
		OMDbAPIKey: viper.GetString("OMDB_API_KEY"),

		// TMDb
		TMDbAPIKey: viper.GetString("TMDB_API_KEY"),

		// Enrichment
		EnrichConcurrency:    viper.GetInt("ENRICH_CONCURRENCY"),
		CleanupIntervalHours: viper.GetInt("CLEANUP_INTERVAL_HOURS"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		ImagesDir:    imagesDir,
		DatabaseFile: filepath.Join(configDir, "cinelist.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.OMDbAPIKey == "" {
		return nil, fmt.Errorf("OMDB_API_KEY is required")
	}
	if config.TMDbAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}
	if config.EnrichConcurrency < 1 {
		return nil, fmt.Errorf("ENRICH_CONCURRENCY must be at least 1")
	}

	return config, nil
}
