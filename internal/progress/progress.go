// Package progress renders per-file upload bars for the uploader CLI.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

const (
	progressBarWidth    = 40
	progressBarThrottle = 65 * 1000000
)

// CreateProgressBar creates a percentage bar for one file, written to w
// (stderr when nil).
func CreateProgressBar(w io.Writer, name string, size int64) *progressbar.ProgressBar {
	if w == nil {
		w = os.Stderr
	}
	return progressbar.NewOptions(
		100,
		progressbar.OptionSetDescription(fmt.Sprintf("%s (%s)", name, humanize.Bytes(uint64(size)))),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(progressBarWidth),
		progressbar.OptionThrottle(progressBarThrottle),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Item labels one bar: the file name and its size.
type Item struct {
	Name string
	Size int64
}

// Tracker keeps one bar per batch position and moves it to each reported
// percentage. Callbacks may arrive from the upload goroutine.
type Tracker struct {
	w     io.Writer
	items []Item

	mu   sync.Mutex
	bars map[int]*progressbar.ProgressBar
}

// NewTracker returns a tracker for a batch of items, in batch order.
func NewTracker(w io.Writer, items []Item) *Tracker {
	return &Tracker{w: w, items: items, bars: make(map[int]*progressbar.ProgressBar)}
}

// Update moves the bar at index to percent, creating it on first use. name
// labels the bar when index is outside the known items.
func (t *Tracker) Update(index int, name string, percent int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	bar, ok := t.bars[index]
	if !ok {
		item := Item{Name: name}
		if index >= 0 && index < len(t.items) {
			item = t.items[index]
		}
		bar = CreateProgressBar(t.w, item.Name, item.Size)
		t.bars[index] = bar
	}
	_ = bar.Set(percent)
}

// Abandon stops the bar at index without completing it.
func (t *Tracker) Abandon(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if bar, ok := t.bars[index]; ok {
		_ = bar.Exit()
		delete(t.bars, index)
	}
}
