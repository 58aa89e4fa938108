package stats

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/omniscale/osmtables/logging"
)

var log = logging.NewLogger("stats")

// ElementCounts are the totals of an import.
type ElementCounts struct {
	Nodes       int64
	Ways        int64
	Tags        int64
	SkippedTags int64
	DroppedTags int64
	WayNodes    int64
}

func (c ElementCounts) String() string {
	return fmt.Sprintf("Nodes: %s Ways: %s Tags: %s (skipped: %s, dropped: %s) Way nodes: %s",
		humanize.Comma(c.Nodes),
		humanize.Comma(c.Ways),
		humanize.Comma(c.Tags),
		humanize.Comma(c.SkippedTags),
		humanize.Comma(c.DroppedTags),
		humanize.Comma(c.WayNodes),
	)
}

type counter struct {
	ElementCounts
	lastReport time.Time
	lastNodes  int64
	lastWays   int64
	lastTags   int64
}

func (c *counter) progress() string {
	dur := time.Since(c.lastReport).Seconds()
	if dur <= 0 {
		dur = 1
	}
	nodesPS := int64(float64(c.Nodes-c.lastNodes)/dur/100) * 100
	waysPS := int64(float64(c.Ways-c.lastWays)/dur/100) * 100
	tagsPS := int64(float64(c.Tags-c.lastTags)/dur/100) * 100

	c.lastNodes = c.Nodes
	c.lastWays = c.Ways
	c.lastTags = c.Tags
	c.lastReport = time.Now()

	return fmt.Sprintf("[%s] Nodes: %7s/s (%s) Ways: %7s/s (%s) Tags: %7s/s (%s)",
		time.Since(start).Round(time.Second),
		humanize.Comma(nodesPS), humanize.Comma(c.Nodes),
		humanize.Comma(waysPS), humanize.Comma(c.Ways),
		humanize.Comma(tagsPS), humanize.Comma(c.Tags),
	)
}

var start = time.Now()

// Statistics counts the shaped elements. All methods are safe for
// concurrent use.
type Statistics struct {
	nodes       chan int
	ways        chan int
	tags        chan int
	skippedTags chan int
	droppedTags chan int
	wayNodes    chan int
	stop        chan chan ElementCounts
}

func (s *Statistics) AddNodes(n int)       { s.nodes <- n }
func (s *Statistics) AddWays(n int)        { s.ways <- n }
func (s *Statistics) AddTags(n int)        { s.tags <- n }
func (s *Statistics) AddSkippedTags(n int) { s.skippedTags <- n }
func (s *Statistics) AddDroppedTags(n int) { s.droppedTags <- n }
func (s *Statistics) AddWayNodes(n int)    { s.wayNodes <- n }

// Stop stops the reporter and returns the totals. The Statistics must
// not be used after Stop.
func (s *Statistics) Stop() *ElementCounts {
	result := make(chan ElementCounts)
	s.stop <- result
	counts := <-result
	return &counts
}

// NewStatsReporter starts a reporter that logs the progress once a second.
func NewStatsReporter() *Statistics {
	return newStatsReporter(time.Second, logging.Progress)
}

// NewSilentReporter starts a reporter that only counts.
func NewSilentReporter() *Statistics {
	return newStatsReporter(0, nil)
}

func newStatsReporter(interval time.Duration, progress func(string)) *Statistics {
	s := &Statistics{
		nodes:       make(chan int),
		ways:        make(chan int),
		tags:        make(chan int),
		skippedTags: make(chan int),
		droppedTags: make(chan int),
		wayNodes:    make(chan int),
		stop:        make(chan chan ElementCounts),
	}
	c := counter{lastReport: time.Now()}

	go func() {
		var tick <-chan time.Time
		if interval > 0 && progress != nil {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case n := <-s.nodes:
				c.Nodes += int64(n)
			case n := <-s.ways:
				c.Ways += int64(n)
			case n := <-s.tags:
				c.Tags += int64(n)
			case n := <-s.skippedTags:
				c.SkippedTags += int64(n)
			case n := <-s.droppedTags:
				c.DroppedTags += int64(n)
			case n := <-s.wayNodes:
				c.WayNodes += int64(n)
			case <-tick:
				progress(c.progress())
			case result := <-s.stop:
				result <- c.ElementCounts
				return
			}
		}
	}()
	return s
}
