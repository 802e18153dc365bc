// Package ioutils provides file system utilities for persisting warmed
// assets: filename derivation from asset paths, sanitization, and
// directory creation.
package ioutils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// WriteFile writes data to a file, creating it if necessary.
//
// The file is created with mode 0644 and truncated if it already exists.
func WriteFile(filePath string, data []byte) error {
	return os.WriteFile(filePath, data, 0644)
}

// EnsureDir creates a directory and all parent directories if they don't
// exist. Directories are created with mode 0755.
func EnsureDir(dirPath string) error {
	return os.MkdirAll(dirPath, 0755)
}

// LocalName derives a safe local file name for an asset path.
//
// The last path segment of the asset URL (or plain path) is used, with
// invalid characters sanitized. An empty or unusable segment falls back
// to a name derived from a hash of the full path.
//
// Example:
//
//	LocalName("https://cdn.example.com/sprites/hero.png") // "hero.png"
//	LocalName("/tiles/level:1.png")                       // "level_1.png"
func LocalName(assetPath string) string {
	base := assetPath
	if u, err := url.Parse(assetPath); err == nil && u.Path != "" {
		base = u.Path
	}
	base = path.Base(base)
	if base == "" || base == "." || base == "/" {
		return fmt.Sprintf("asset-%016x", xxhash.Sum64String(assetPath))
	}
	return SanitizeFileName(base)
}

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("tile: 1/2.png")  // Returns "tile_ 1_2.png"
//	SanitizeFileName("sprite...")      // Returns "sprite"
func SanitizeFileName(name string) string {
	// Replace invalid path/file characters with underscore
	// Characters: < > : " / \ | ? * and control characters (0x00-0x1f)
	invalidChars := regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	name = invalidChars.ReplaceAllString(name, "_")

	// Remove trailing dots (Windows doesn't allow filenames ending with dots)
	name = regexp.MustCompile(`\.+$`).ReplaceAllString(name, "")

	// Replace multiple whitespace with single space for cleaner names
	name = regexp.MustCompile(`\s+`).ReplaceAllString(name, " ")

	// Remove trailing whitespace
	name = strings.TrimRight(name, " ")

	return name
}
