// Package manifest parses preload manifests: listings of asset paths to
// queue for download.
//
// Two forms are accepted: a JSON array of strings, or plain text with one
// path per line where blank lines and lines starting with "#" are skipped.
// Duplicate paths are preserved; each occurrence is a separate download.
package manifest

import (
	"encoding/json"
	"os"
	"strings"
)

// Parse extracts asset paths from manifest content.
func Parse(data []byte) ([]string, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var paths []string
		if err := json.Unmarshal([]byte(trimmed), &paths); err != nil {
			return nil, err
		}
		return paths, nil
	}

	var paths []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, nil
}

// Load reads and parses a manifest file.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
