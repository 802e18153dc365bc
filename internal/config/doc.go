// Package config provides configuration management for asset-preloader.
//
// Settings are stored as JSON. Use DefaultSettings() for sensible
// defaults, Load to read a settings file (missing files fall back to
// defaults), and Save to persist changes.
//
// The one option the preload core recognizes is Debugging, which gates
// verbose diagnostic traces and never affects control flow. The remaining
// options configure the fetch backend (HTTP or S3), image probing, and
// where warmed assets are written.
package config
