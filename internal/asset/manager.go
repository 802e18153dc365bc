package asset

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/karsk/asset-preloader/internal/config"
	"github.com/karsk/asset-preloader/internal/fetch"
	"github.com/karsk/asset-preloader/internal/imaging"
)

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// Event represents a progress or diagnostic update from the manager.
type Event struct {
	Message string
	Level   Level
}

// Manager queues asset downloads and tracks their completion.
type Manager struct {
	fetcher     fetch.Fetcher
	debugging   bool
	probeImages bool
	onProgress  func(Event)

	mu           sync.Mutex
	queue        []string
	cache        map[string]*fetch.Resource
	successCount int
	errorCount   int
}

// batch tracks the settlement state of a single DownloadAll cycle.
type batch struct {
	expected int
	settled  int
	fired    bool
	done     func()
}

// NewManager creates a Manager that downloads via the given fetcher.
//
// The onProgress callback may be nil. Debug traces are emitted only when
// settings.Debugging is true.
func NewManager(fetcher fetch.Fetcher, settings *config.Settings, onProgress func(Event)) *Manager {
	return &Manager{
		fetcher:     fetcher,
		debugging:   settings.Debugging,
		probeImages: settings.ProbeImages,
		onProgress:  onProgress,
		cache:       make(map[string]*fetch.Resource),
	}
}

// QueueDownload appends a path to the download queue.
//
// Paths are not deduplicated: queueing the same path twice produces two
// independent fetch attempts, each counted separately toward completion.
// The cache retains the resource from whichever fetch settles last.
func (m *Manager) QueueDownload(path string) {
	m.mu.Lock()
	m.queue = append(m.queue, path)
	m.mu.Unlock()
	m.debug("queued %s for download", path)
}

// DownloadAll issues one fetch per queued path and arranges for onComplete
// to be invoked exactly once, after every fetch has settled.
//
// If the queue is empty, onComplete is invoked synchronously before
// DownloadAll returns. Otherwise DownloadAll returns immediately and the
// callback fires later from a fetch goroutine. The callback receives no
// arguments; consult SuccessCount, ErrorCount and Asset afterward.
//
// The counters are reset at the start of each cycle, so a repeated call
// re-fetches the whole queue and reports that cycle's outcome. Calling
// DownloadAll while a previous cycle is still in flight is unsupported.
//
// Cancelling ctx does not abort the cycle: affected fetches settle as
// failed and completion accounting proceeds as usual.
func (m *Manager) DownloadAll(ctx context.Context, onComplete func()) {
	m.mu.Lock()
	paths := make([]string, len(m.queue))
	copy(paths, m.queue)
	m.successCount = 0
	m.errorCount = 0
	m.mu.Unlock()

	if len(paths) == 0 {
		if onComplete != nil {
			onComplete()
		}
		return
	}

	m.debug("downloading %d assets", len(paths))

	b := &batch{expected: len(paths), done: onComplete}
	for _, path := range paths {
		go m.download(ctx, path, b)
	}
}

// download runs a single fetch and records its settlement.
func (m *Manager) download(ctx context.Context, path string, b *batch) {
	res, err := m.fetcher.Fetch(ctx, path)

	if err == nil && m.probeImages {
		if info, perr := imaging.Probe(res.Data); perr == nil {
			res.Image = &info
		}
	}

	m.mu.Lock()
	if err != nil {
		m.errorCount++
		m.cache[path] = fetch.Failed(path, err)
	} else {
		m.successCount++
		m.cache[path] = res
	}
	b.settled++
	fire := b.settled == b.expected && !b.fired
	if fire {
		b.fired = true
	}
	m.mu.Unlock()

	if err != nil {
		m.debug("failed to load %s: %v", path, err)
	} else if res.Image != nil {
		m.debug("loaded %s (%s)", path, res.Image)
	} else {
		m.debug("loaded %s", path)
	}

	if fire && b.done != nil {
		b.done()
	}
}

// IsDone reports whether every queued path has settled.
func (m *Manager) IsDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successCount+m.errorCount == len(m.queue)
}

// Asset returns the cached resource for a path, or nil if no loaded
// resource is present.
//
// Nil is returned for paths that were never queued, are still pending, or
// whose fetch failed; these cases are not distinguished.
func (m *Manager) Asset(path string) *fetch.Resource {
	m.mu.Lock()
	res, ok := m.cache[path]
	m.mu.Unlock()

	if !ok || res.Err != nil {
		m.debug("could not find asset %s", path)
		return nil
	}
	return res
}

// SuccessCount returns the number of fetches that settled as loaded.
func (m *Manager) SuccessCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successCount
}

// ErrorCount returns the number of fetches that settled as failed.
func (m *Manager) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errorCount
}

// Progress returns the current counters and the queue length.
func (m *Manager) Progress() (loaded, failed, queued int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.successCount, m.errorCount, len(m.queue)
}

// EstimateTotal returns the summed size of all queued assets, as reported
// by the fetcher without downloading them.
//
// Sizes are gathered concurrently; assets whose size cannot be determined
// contribute nothing to the total. Returns 0 when the fetcher cannot
// report sizes. The counters are not touched.
func (m *Manager) EstimateTotal(ctx context.Context) int64 {
	sizer, ok := m.fetcher.(fetch.Sizer)
	if !ok {
		return 0
	}

	m.mu.Lock()
	paths := make([]string, len(m.queue))
	copy(paths, m.queue)
	m.mu.Unlock()

	var total int64
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			size, err := sizer.Size(ctx, path)
			if err == nil {
				atomic.AddInt64(&total, size)
			}
			return nil
		})
	}
	_ = g.Wait()

	return atomic.LoadInt64(&total)
}

// debug emits a verbose trace when debugging is enabled.
func (m *Manager) debug(format string, args ...any) {
	if !m.debugging {
		return
	}
	m.progress(Event{Message: fmt.Sprintf(format, args...), Level: LevelVerbose})
}

func (m *Manager) progress(event Event) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
