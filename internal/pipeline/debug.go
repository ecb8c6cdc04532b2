package pipeline

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// DebugSink observes every candidate right before its decode attempt.
// Implementations must not modify the image and never influence the scan.
type DebugSink interface {
	Save(c Candidate)
}

type nopSink struct{}

func (nopSink) Save(Candidate) {}

// DirSink writes candidates as PNG files into a directory.
type DirSink struct {
	dir string
	seq atomic.Uint64
}

// NewDirSink returns a sink writing below dir. The directory is created on first use.
func NewDirSink(dir string) *DirSink { return &DirSink{dir: dir} }

// Dir returns the target directory.
func (d *DirSink) Dir() string { return d.dir }

// Save encodes c.Image as <seq>_<tier>_<transform>.png. Failures are logged.
func (d *DirSink) Save(c Candidate) {
	if c.Image == nil {
		return
	}
	if err := d.write(c); err != nil {
		slog.Debug("Debug dump failed", "dir", d.dir, "error", err)
	}
}

func (d *DirSink) write(c Candidate) error {
	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return err
	}
	n := d.seq.Add(1)
	name := fmt.Sprintf("%06d_%s_%s.png", n, c.Tier, sanitize(c.Transform))
	f, err := os.Create(filepath.Join(d.dir, name)) //nolint:gosec // G304: path built from debug directory and sequence
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return png.Encode(f, c.Image)
}

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_", " ", "_")

func sanitize(s string) string {
	if s == "" {
		return "candidate"
	}
	return nameReplacer.Replace(s)
}
