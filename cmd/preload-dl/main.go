package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/karsk/asset-preloader/internal/asset"
	"github.com/karsk/asset-preloader/internal/config"
	"github.com/karsk/asset-preloader/internal/fetch"
	"github.com/karsk/asset-preloader/internal/imaging"
	"github.com/karsk/asset-preloader/internal/ioutils"
	"github.com/karsk/asset-preloader/internal/manifest"
)

func main() {
	// Command line flags
	var (
		manifestFlag = flag.String("manifest", "", "Manifest file listing asset paths (text or JSON array)")
		urlsFlag     = flag.String("url", "", "Asset URL(s) to preload (comma-separated)")
		configFlag   = flag.String("config", "", "Path to config file")
		outputFlag   = flag.String("output", "", "Save fetched assets to this directory")
		s3Flag       = flag.Bool("s3", false, "Fetch from the configured S3 bucket instead of HTTP")
		thumbsFlag   = flag.Bool("thumbnails", false, "Also write downscaled thumbnails next to saved assets")
		debugFlag    = flag.Bool("debug", false, "Show verbose/debug traces")
		dryRunFlag   = flag.Bool("dry-run", false, "Queue assets and estimate sizes without downloading")
	)

	flag.Parse()

	if *manifestFlag == "" && *urlsFlag == "" && flag.NArg() == 0 {
		fmt.Println("asset-preloader - warm an image asset cache")
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  preload-dl -manifest <file> [options]")
		fmt.Println("  preload-dl -url <URL,URL,...> [options]")
		fmt.Println("  preload-dl <URL> [options]")
		fmt.Println()
		fmt.Println("For interactive mode, use: preload-tui")
		fmt.Println()
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Apply flags
	if *debugFlag {
		settings.Debugging = true
	}
	if *outputFlag != "" {
		settings.SaveAssets = true
		settings.OutputPath = *outputFlag
	}
	if *s3Flag {
		settings.Source = "s3"
	}
	if *thumbsFlag {
		settings.ThumbnailAssets = true
	}

	// Gather asset paths
	var paths []string
	if *manifestFlag != "" {
		loaded, err := manifest.Load(*manifestFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading manifest: %v\n", err)
			os.Exit(1)
		}
		paths = append(paths, loaded...)
	}
	urls := *urlsFlag
	if urls == "" && flag.NArg() > 0 {
		urls = flag.Arg(0)
	}
	if urls != "" {
		parsed, err := manifest.Parse([]byte(strings.ReplaceAll(urls, ",", "\n")))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing URLs: %v\n", err)
			os.Exit(1)
		}
		paths = append(paths, parsed...)
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, letting in-flight fetches settle...")
		cancel()
	}()

	fetcher, err := newFetcher(settings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create manager with progress callback
	manager := asset.NewManager(fetcher, settings, func(event asset.Event) {
		prefix := "  "
		switch event.Level {
		case asset.LevelError:
			prefix = "x "
		case asset.LevelWarning:
			prefix = "! "
		case asset.LevelSuccess:
			prefix = "+ "
		case asset.LevelInfo:
			prefix = "> "
		}
		fmt.Println(prefix + event.Message)
	})

	for _, path := range paths {
		manager.QueueDownload(path)
	}

	fmt.Printf("Queued %d assets\n", len(paths))

	if total := manager.EstimateTotal(ctx); total > 0 {
		fmt.Printf("Estimated download size: %.2f MB\n", float64(total)/1024/1024)
	}

	if *dryRunFlag {
		fmt.Println("\n[Dry run - not downloading]")
		return
	}

	done := make(chan struct{})
	manager.DownloadAll(ctx, func() { close(done) })
	<-done

	loaded, failed, queued := manager.Progress()
	fmt.Printf("\nComplete: %d/%d loaded, %d failed\n", loaded, queued, failed)

	if settings.SaveAssets {
		if err := saveAssets(manager, paths, settings); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving assets: %v\n", err)
			os.Exit(1)
		}
	}

	if ctx.Err() != nil {
		os.Exit(130)
	}
}

// newFetcher builds the fetch backend selected by the settings.
func newFetcher(settings *config.Settings) (fetch.Fetcher, error) {
	switch settings.Source {
	case "s3":
		return fetch.NewS3Fetcher(fetch.S3Config{
			Endpoint:  settings.S3Endpoint,
			Region:    settings.S3Region,
			Bucket:    settings.S3Bucket,
			AccessKey: settings.S3AccessKey,
			SecretKey: settings.S3SecretKey,
			UseSSL:    settings.S3UseSSL,
		})
	case "", "http":
		return fetch.NewHTTPFetcher(settings.UserAgent, settings.Timeout()), nil
	default:
		return nil, fmt.Errorf("unknown source %q", settings.Source)
	}
}

// saveAssets writes every loaded asset to the output directory, plus
// downscaled thumbnails when enabled.
func saveAssets(manager *asset.Manager, paths []string, settings *config.Settings) error {
	outputPath := settings.OutputPath
	if err := ioutils.EnsureDir(outputPath); err != nil {
		return err
	}

	thumbs := settings.ThumbnailAssets && settings.ThumbnailMaxSize > 0
	if thumbs {
		if err := ioutils.EnsureDir(filepath.Join(outputPath, "thumbs")); err != nil {
			return err
		}
	}

	saved := 0
	for _, path := range paths {
		res := manager.Asset(path)
		if res == nil {
			continue
		}
		name := ioutils.LocalName(path)
		if err := ioutils.WriteFile(filepath.Join(outputPath, name), res.Data); err != nil {
			return err
		}
		saved++

		if thumbs {
			thumb, err := imaging.Resize(res.Data, settings.ThumbnailMaxSize, settings.ThumbnailMaxSize)
			if err != nil {
				// Not a decodable image; nothing to thumbnail.
				continue
			}
			_ = ioutils.WriteFile(filepath.Join(outputPath, "thumbs", name+".jpg"), thumb)
		}
	}

	fmt.Printf("Saved %d assets to %s\n", saved, outputPath)
	return nil
}
