package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Settings holds all configuration options.
type Settings struct {
	// Debugging enables verbose diagnostic traces. It has no effect on
	// control flow.
	Debugging bool `json:"debugging"`

	// Fetch settings
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Source         string `json:"source"` // http, s3

	// Image handling
	ProbeImages      bool `json:"probe_images"`
	ThumbnailAssets  bool `json:"thumbnail_assets"`
	ThumbnailMaxSize int  `json:"thumbnail_max_size"`

	// Output settings
	SaveAssets bool   `json:"save_assets"`
	OutputPath string `json:"output_path"`

	// S3 settings (used when Source is "s3")
	S3Endpoint  string `json:"s3_endpoint"`
	S3Region    string `json:"s3_region"`
	S3Bucket    string `json:"s3_bucket"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`
	S3UseSSL    bool   `json:"s3_use_ssl"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Debugging: false,

		UserAgent:      "asset-preloader",
		TimeoutSeconds: 60,
		Source:         "http",

		ProbeImages:      true,
		ThumbnailAssets:  false,
		ThumbnailMaxSize: 256,

		SaveAssets: false,
		OutputPath: filepath.Join(homeDir, ".cache", "asset-preloader"),

		S3Region: "us-east-1",
		S3UseSSL: true,
	}
}

// Timeout returns the fetch timeout as a duration.
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Load reads settings from a JSON file.
//
// If the file doesn't exist, default settings are returned.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
