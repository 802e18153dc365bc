// Package asset provides the preload manager that queues asset paths,
// fans their downloads out to a fetcher, and tracks completion.
//
// # Manager
//
// The Manager owns a download queue, a cache of path to fetched resource,
// and success/error counters. One fetch is issued per queued path and a
// completion callback fires exactly once when every fetch has settled,
// whether each loaded or failed. One bad asset never blocks the batch.
//
// # Basic Usage
//
//	manager := asset.NewManager(fetcher, settings, func(event asset.Event) {
//	    fmt.Println(event.Message)
//	})
//
//	manager.QueueDownload("https://cdn.example.com/sprites/hero.png")
//	manager.QueueDownload("https://cdn.example.com/sprites/tiles.png")
//
//	done := make(chan struct{})
//	manager.DownloadAll(ctx, func() { close(done) })
//	<-done
//
//	fmt.Printf("%d loaded, %d failed\n", manager.SuccessCount(), manager.ErrorCount())
//
// # Completion Semantics
//
// DownloadAll snapshots the queue at call time; the snapshot length is the
// number of settlements the cycle waits for. An empty queue invokes the
// callback synchronously before DownloadAll returns. Resolution order is
// unspecified and may differ from queue order.
//
// Calling DownloadAll again while a previous cycle is still in flight is
// unsupported: the counters consulted by IsDone are shared across cycles.
// Sequential cycles are safe: the counters are reset at the start of each
// cycle, every queued path is fetched again, and each cycle carries its
// own settlement state, so the callback of one cycle can never be
// re-fired by another.
//
// # Diagnostics
//
// Traces are reported via a callback receiving Event values. Debug traces
// carry LevelVerbose and are emitted only when debugging is enabled in the
// settings; the flag never affects control flow.
package asset
