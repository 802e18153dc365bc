package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/karsk/asset-preloader/internal/config"
	"github.com/karsk/asset-preloader/internal/fetch"
)

// stubFetcher settles every fetch with canned data, failing the paths
// listed in failing. When gate is non-nil, fetches block until it closes.
type stubFetcher struct {
	gate    chan struct{}
	failing map[string]bool
	sizes   map[string]int64
	data    map[string][]byte

	mu    sync.Mutex
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, path string) (*fetch.Resource, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failing[path] {
		return nil, errors.New("fetch failed")
	}
	data, ok := f.data[path]
	if !ok {
		data = []byte("data for " + path)
	}
	return fetch.NewResource(path, data, "image/png"), nil
}

func (f *stubFetcher) Size(ctx context.Context, path string) (int64, error) {
	size, ok := f.sizes[path]
	if !ok {
		return 0, errors.New("unknown size")
	}
	return size, nil
}

func (f *stubFetcher) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testSettings() *config.Settings {
	settings := config.DefaultSettings()
	settings.ProbeImages = false
	return settings
}

func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("download cycle did not complete")
	}
}

func TestDownloadAllEmptyQueue(t *testing.T) {
	m := NewManager(&stubFetcher{}, testSettings(), nil)

	calls := 0
	m.DownloadAll(context.Background(), func() { calls++ })

	// The callback must run synchronously, before DownloadAll returns.
	require.Equal(t, 1, calls)
	require.True(t, m.IsDone())
	require.Equal(t, 0, m.SuccessCount())
	require.Equal(t, 0, m.ErrorCount())
}

func TestDownloadAllMixedOutcome(t *testing.T) {
	f := &stubFetcher{failing: map[string]bool{"b.png": true}}
	m := NewManager(f, testSettings(), nil)

	m.QueueDownload("a.png")
	m.QueueDownload("b.png")

	var calls int32
	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() {
		atomic.AddInt32(&calls, 1)
		close(done)
	})
	waitDone(t, done)

	// Allow any stray duplicate invocation to surface.
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.Equal(t, 1, m.SuccessCount())
	require.Equal(t, 1, m.ErrorCount())
	require.True(t, m.IsDone())

	require.NotNil(t, m.Asset("a.png"))
	require.Nil(t, m.Asset("b.png"), "failed asset must read as not found")
	require.Nil(t, m.Asset("c.png"), "never-queued asset must read as not found")
}

func TestDownloadAllFiresOnceUnderConcurrency(t *testing.T) {
	const n = 100

	f := &stubFetcher{gate: make(chan struct{}), failing: map[string]bool{}}
	m := NewManager(f, testSettings(), nil)

	for i := 0; i < n; i++ {
		path := fmt.Sprintf("asset-%03d.png", i)
		if i%3 == 0 {
			f.failing[path] = true
		}
		m.QueueDownload(path)
	}

	var calls int32
	var wasDone bool
	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() {
		wasDone = m.IsDone()
		atomic.AddInt32(&calls, 1)
		close(done)
	})

	// Release all fetches at once so settlements race.
	close(f.gate)
	waitDone(t, done)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.True(t, wasDone, "callback must not fire before the cycle is done")

	loaded, failed, queued := m.Progress()
	require.Equal(t, n, queued)
	require.Equal(t, n, loaded+failed)
	require.Equal(t, 34, failed)
}

func TestQueueDuplicatesCountedSeparately(t *testing.T) {
	f := &stubFetcher{}
	m := NewManager(f, testSettings(), nil)

	m.QueueDownload("a.png")
	m.QueueDownload("a.png")

	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() { close(done) })
	waitDone(t, done)

	require.Equal(t, 2, f.fetchCalls())
	require.Equal(t, 2, m.SuccessCount())
	require.True(t, m.IsDone())
	require.NotNil(t, m.Asset("a.png"))
}

func TestPendingAssetsReadAsNotFound(t *testing.T) {
	f := &stubFetcher{gate: make(chan struct{})}
	m := NewManager(f, testSettings(), nil)

	m.QueueDownload("a.png")

	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() { close(done) })

	require.False(t, m.IsDone())
	require.Nil(t, m.Asset("a.png"), "pending asset must read as not found")

	close(f.gate)
	waitDone(t, done)

	require.True(t, m.IsDone())
	require.NotNil(t, m.Asset("a.png"))
}

func TestSequentialCycles(t *testing.T) {
	f := &stubFetcher{}
	m := NewManager(f, testSettings(), nil)

	m.QueueDownload("a.png")

	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() { close(done) })
	waitDone(t, done)

	// A second cycle re-fetches the whole queue: counters reset at cycle
	// start, the new snapshot settles, and its callback fires exactly once.
	m.QueueDownload("b.png")
	require.False(t, m.IsDone())

	var calls int32
	done2 := make(chan struct{})
	m.DownloadAll(context.Background(), func() {
		atomic.AddInt32(&calls, 1)
		close(done2)
	})
	waitDone(t, done2)

	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.True(t, m.IsDone())
	require.Equal(t, 2, m.SuccessCount())
	require.Equal(t, 3, f.fetchCalls())
}

func TestDebugTraces(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	collect := func(event Event) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	}

	settings := testSettings()
	settings.Debugging = true
	m := NewManager(&stubFetcher{}, settings, collect)

	m.QueueDownload("a.png")
	m.Asset("missing.png")

	mu.Lock()
	count := len(events)
	for _, event := range events {
		require.Equal(t, LevelVerbose, event.Level)
	}
	mu.Unlock()
	require.Equal(t, 2, count)

	// With debugging off, no traces are emitted and behavior is unchanged.
	events = nil
	settings.Debugging = false
	m = NewManager(&stubFetcher{}, settings, collect)

	m.QueueDownload("a.png")
	m.Asset("missing.png")

	mu.Lock()
	require.Empty(t, events)
	mu.Unlock()
}

func TestEstimateTotal(t *testing.T) {
	f := &stubFetcher{sizes: map[string]int64{
		"a.png": 1000,
		"b.png": 2048,
	}}
	m := NewManager(f, testSettings(), nil)

	m.QueueDownload("a.png")
	m.QueueDownload("b.png")
	m.QueueDownload("unknown.png")

	require.Equal(t, int64(3048), m.EstimateTotal(context.Background()))
	require.Equal(t, 0, m.SuccessCount(), "size estimation must not touch the counters")
	require.Equal(t, 0, m.ErrorCount())
}

func TestProbeImages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 12, 8))))

	f := &stubFetcher{data: map[string][]byte{"a.png": buf.Bytes()}}
	settings := testSettings()
	settings.ProbeImages = true
	m := NewManager(f, settings, nil)

	m.QueueDownload("a.png")
	m.QueueDownload("not-an-image.txt")

	done := make(chan struct{})
	m.DownloadAll(context.Background(), func() { close(done) })
	waitDone(t, done)

	res := m.Asset("a.png")
	require.NotNil(t, res)
	require.NotNil(t, res.Image)
	require.Equal(t, 12, res.Image.Width)
	require.Equal(t, 8, res.Image.Height)
	require.Equal(t, "png", res.Image.Format)

	// Non-image bytes still count as loaded; they just carry no probe info.
	other := m.Asset("not-an-image.txt")
	require.NotNil(t, other)
	require.Nil(t, other.Image)
	require.Equal(t, 2, m.SuccessCount())
}
