// Package fetch defines the resource-fetch primitive used by the asset
// manager, along with HTTP and S3 backed implementations.
//
// A Fetcher retrieves a single asset by path and produces a Resource, the
// opaque handle the manager caches. Each fetch settles exactly once: either
// with a Resource, or with an error.
//
// # Basic Usage
//
//	fetcher := fetch.NewHTTPFetcher("asset-preloader", 60*time.Second)
//	res, err := fetcher.Fetch(ctx, "https://cdn.example.com/sprites/hero.png")
//	if err != nil {
//	    // the fetch settled as failed
//	}
//	fmt.Printf("%d bytes, %s\n", res.Size, res.ContentType)
//
// # Size Estimation
//
// Fetchers that can report a resource's size without downloading it
// implement Sizer. HTTPFetcher uses a HEAD request; S3Fetcher uses
// HeadObject.
package fetch
