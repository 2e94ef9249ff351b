package probe

import (
	"context"
	"sync"
	"time"
)

type Status string

const (
	StatusUnknown Status = "unknown"
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

const (
	DefaultInterval    = 10 * time.Second
	DefaultHistorySize = 5
)

type WatcherConfig struct {
	Interval    time.Duration
	HistorySize int
	// Observe, when set, is called after every probe with the status before
	// and after it.
	Observe func(result Result, previous, current Status)
}

// Watcher probes a URL on an interval and keeps a bounded history of results.
type Watcher struct {
	prober *Prober
	url    string
	config WatcherConfig

	mu      sync.RWMutex
	status  Status
	history []Result
}

func NewWatcher(prober *Prober, url string, config WatcherConfig) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}

	return &Watcher{
		prober:  prober,
		url:     url,
		config:  config,
		status:  StatusUnknown,
		history: make([]Result, 0, config.HistorySize),
	}
}

// Run probes immediately and then once per interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	w.Tick(ctx)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			w.Tick(ctx)
		}
	}
}

// Tick runs one probe and records it. A probe cut short because ctx ended
// says nothing about the target and is not recorded.
func (w *Watcher) Tick(ctx context.Context) Result {
	result := w.prober.Check(ctx, w.url)
	if result.Err != nil && ctx.Err() != nil {
		return result
	}

	current := StatusOffline
	if result.OK() {
		current = StatusOnline
	}

	w.mu.Lock()
	previous := w.status
	w.status = current
	w.history = append([]Result{result}, w.history...)
	if len(w.history) > w.config.HistorySize {
		w.history = w.history[:w.config.HistorySize]
	}
	w.mu.Unlock()

	if w.config.Observe != nil {
		w.config.Observe(result, previous, current)
	}

	return result
}

func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

// History returns the recorded results, newest first.
func (w *Watcher) History() []Result {
	w.mu.RLock()
	defer w.mu.RUnlock()

	history := make([]Result, len(w.history))
	copy(history, w.history)
	return history
}
