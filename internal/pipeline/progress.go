package pipeline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ProgressCallback receives progress updates from ScanParallel.
type ProgressCallback interface {
	OnStart(total int)
	OnProgress(current, total int)
	OnComplete()
	OnError(index int, err error)
}

// ConsoleProgressCallback prints a single-line progress bar.
type ConsoleProgressCallback struct {
	writer         io.Writer
	prefix         string
	width          int
	updateInterval time.Duration

	mu         sync.Mutex
	startTime  time.Time
	lastUpdate time.Time
	errors     int
}

// NewConsoleProgressCallback writes to writer, or stderr when nil.
func NewConsoleProgressCallback(writer io.Writer, prefix string) *ConsoleProgressCallback {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgressCallback{
		writer:         writer,
		prefix:         prefix,
		width:          40,
		updateInterval: 100 * time.Millisecond,
	}
}

func (c *ConsoleProgressCallback) WithUpdateInterval(interval time.Duration) *ConsoleProgressCallback {
	c.updateInterval = interval
	return c
}

func (c *ConsoleProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startTime = time.Now()
	c.lastUpdate = time.Time{}
	c.errors = 0
	_, _ = fmt.Fprintf(c.writer, "%s0/%d\n", c.prefix, total)
}

func (c *ConsoleProgressCallback) OnProgress(current, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if current < total && now.Sub(c.lastUpdate) < c.updateInterval {
		return
	}
	c.lastUpdate = now

	filled := 0
	if total > 0 {
		filled = current * c.width / total
	}
	bar := make([]byte, c.width)
	for i := range bar {
		if i < filled {
			bar[i] = '='
		} else {
			bar[i] = ' '
		}
	}
	rate := 0.0
	if el := now.Sub(c.startTime).Seconds(); el > 0 {
		rate = float64(current) / el
	}
	_, _ = fmt.Fprintf(c.writer, "\r%s[%s] %d/%d (%.1f img/s)", c.prefix, bar, current, total, rate)
}

func (c *ConsoleProgressCallback) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.writer, "\n%sdone in %s, %d errors\n",
		c.prefix, time.Since(c.startTime).Round(time.Millisecond), c.errors)
}

func (c *ConsoleProgressCallback) OnError(_ int, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors++
}
