package gen

import (
	"bytes"
	"path/filepath"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/spf13/afero"
)

// Writer renders jennifer files into an afero filesystem and keeps track
// of what it wrote.
type Writer struct {
	fs     afero.Fs
	outDir string

	mu      sync.Mutex
	metrics WriterMetrics
}

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
	// Files holds the written paths relative to the output directory.
	Files []string
}

// NewWriter returns a writer rooted at outDir.
func NewWriter(fs afero.Fs, outDir string) *Writer {
	return &Writer{fs: fs, outDir: outDir}
}

// Metrics returns a copy of the writer metrics.
func (w *Writer) Metrics() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	m := w.metrics
	m.Files = append([]string(nil), w.metrics.Files...)
	return m
}

// Write renders f to subdir/filename. Files are rendered in memory first
// so a formatting error never leaves a truncated file behind.
func (w *Writer) Write(f *jen.File, subdir, filename string) error {
	var buf bytes.Buffer
	rel := filepath.Join(subdir, filename)
	if err := f.Render(&buf); err != nil {
		return NewGenerationError("render", rel, "format generated code", err)
	}
	dir := filepath.Join(w.outDir, subdir)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return NewGenerationError("write", rel, "create directory", err)
	}
	if err := afero.WriteFile(w.fs, filepath.Join(dir, filename), buf.Bytes(), 0o644); err != nil {
		return NewGenerationError("write", rel, "write file", err)
	}
	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(buf.Len())
	w.metrics.Files = append(w.metrics.Files, rel)
	w.mu.Unlock()
	return nil
}
