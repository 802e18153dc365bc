package fetch

import (
	"context"

	"github.com/cespare/xxhash/v2"

	"github.com/karsk/asset-preloader/internal/imaging"
)

// Fetcher retrieves a single asset by path.
//
// Fetch settles exactly once per call: it returns either a Resource (the
// asset loaded) or an error (the asset failed). Implementations must be
// safe for concurrent use, since the manager issues one Fetch per queued
// path from separate goroutines.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (*Resource, error)
}

// Sizer is implemented by fetchers that can report a resource's size
// without downloading it.
type Sizer interface {
	Size(ctx context.Context, path string) (int64, error)
}

// Resource is the handle produced by a settled fetch.
//
// For a loaded asset, Data holds the raw bytes and Checksum their xxhash64
// digest. For a failed asset the manager stores a sentinel Resource with
// Err set and no data, so the path still becomes a cache key.
type Resource struct {
	// Path is the asset path the resource was fetched from.
	Path string

	// Data is the raw asset bytes. Nil for failed fetches.
	Data []byte

	// ContentType is the media type reported by the backend, if any.
	ContentType string

	// Size is the length of Data in bytes.
	Size int64

	// Checksum is the xxhash64 digest of Data.
	Checksum uint64

	// Image holds probed image dimensions, when probing is enabled and
	// the data decoded as a supported image format.
	Image *imaging.Info

	// Err records the fetch failure for sentinel resources.
	Err error
}

// NewResource builds a loaded Resource for the given bytes, computing the
// size and checksum.
func NewResource(path string, data []byte, contentType string) *Resource {
	return &Resource{
		Path:        path,
		Data:        data,
		ContentType: contentType,
		Size:        int64(len(data)),
		Checksum:    xxhash.Sum64(data),
	}
}

// Failed builds a sentinel Resource recording a fetch failure.
func Failed(path string, err error) *Resource {
	return &Resource{Path: path, Err: err}
}
