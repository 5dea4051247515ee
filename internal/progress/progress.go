// Package progress reports batch fetch progress on a terminal progress bar
// by following fetch events on the event bus.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/cryptogamefiverse/nftdash/internal/constants"
	"github.com/cryptogamefiverse/nftdash/internal/events"
)

// Reporter receives progress for one batch.
type Reporter interface {
	Start(total int, description string)
	Increment(label string, failed bool)
	Finish()
}

// CLIProgress draws a progress bar on a writer (stderr by default).
type CLIProgress struct {
	out    io.Writer
	bar    *progressbar.ProgressBar
	failed int
}

// NewCLIProgress creates a bar writing to out. A nil out means os.Stderr.
func NewCLIProgress(out io.Writer) *CLIProgress {
	if out == nil {
		out = os.Stderr
	}
	return &CLIProgress{out: out}
}

// Start initializes the bar for total collections.
func (p *CLIProgress) Start(total int, description string) {
	p.failed = 0
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(constants.ProgressUpdateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Increment advances the bar by one collection.
func (p *CLIProgress) Increment(label string, failed bool) {
	if p.bar == nil {
		return
	}
	if failed {
		p.failed++
	}
	p.bar.Describe(label)
	_ = p.bar.Add(1)
}

// Finish completes the bar and prints a failure count, if any.
func (p *CLIProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	if p.failed > 0 {
		fmt.Fprintf(p.out, "%d collection(s) failed to load\n", p.failed)
	}
}

// Watch drives r from fetch events on bus until the batch completes or
// stop is called. stop blocks until the watcher has exited.
func Watch(bus *events.EventBus, r Reporter) (stop func()) {
	ch := bus.SubscribeAll()
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer close(done)
		for ev := range ch {
			switch e := ev.(type) {
			case *events.FetchStartedEvent:
				r.Start(len(e.Slugs), "fetching collections")
			case *events.CollectionEvent:
				label := e.Name
				if label == "" {
					label = e.Slug
				}
				r.Increment(label, e.Type() == events.EventCollectionFailed)
			case *events.FetchCompleteEvent:
				r.Finish()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			bus.UnsubscribeAll(ch)
			<-done
		})
	}
}
