package archive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"livescore/internal/analysis"

	"gopkg.in/natefinch/lumberjack.v2"
)

// TimeFormat is the layout of the "time" field of every archived line.
const TimeFormat = "2006-01-02 15:04:05"

// jsonlHandler is a slog handler writing one flat JSON object per record.
// The level and message are omitted; attributes become top-level keys.
type jsonlHandler struct {
	out    io.Writer
	attrs  []slog.Attr
	prefix string
}

func newJSONLHandler(out io.Writer) *jsonlHandler {
	return &jsonlHandler{out: out}
}

// Handle serializes r as a single JSON line.
func (h *jsonlHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs)+1)
	fields["time"] = r.Time.Format(TimeFormat)

	for _, a := range h.attrs {
		put(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		put(fields, h.prefix, a)
		return true
	})

	data, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	_, err = h.out.Write(append(data, '\n'))
	return err
}

func put(fields map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Key == "" || a.Value.Any() == nil {
		return
	}
	fields[prefix+a.Key] = a.Value.Any()
}

// WithAttrs returns a handler that adds attrs to every line.
func (h *jsonlHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		clone.attrs = append(clone.attrs, a)
	}
	return &clone
}

// WithGroup returns a handler that prefixes subsequent keys with "name.".
func (h *jsonlHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// Enabled reports true for every level.
func (h *jsonlHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// JSONLArchive appends scored products to a JSONL file rotated and compressed by lumberjack.
// Each line holds one product with the room and snapshot it belongs to:
//
//	{"time":"2024-05-01 12:00:00","room":"r1","snapshot":"6f1c...","product":{...}}
type JSONLArchive struct {
	lumberjack *lumberjack.Logger
	logger     *slog.Logger
}

// NewJSONLArchive creates an archive writing to file. maxSize is the size in
// megabytes that triggers rotation, maxBackups the number of rotated files kept.
func NewJSONLArchive(file string, maxSize, maxBackups int) *JSONLArchive {
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		Compress:   true,
	}

	return &JSONLArchive{
		lumberjack: rotator,
		logger:     slog.New(newJSONLHandler(rotator)),
	}
}

// Append writes every product of snap as a separate line.
func (a *JSONLArchive) Append(snap *analysis.Snapshot) {
	logger := a.logger.With("room", snap.Room, "snapshot", snap.ID)
	for _, p := range snap.Products {
		logger.Info("", "product", p)
	}
}

// Close flushes and closes the current file.
func (a *JSONLArchive) Close() error {
	return a.lumberjack.Close()
}
