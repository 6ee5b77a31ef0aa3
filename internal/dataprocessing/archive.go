package dataprocessing

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"datapulse/internal/config"
	apperrors "datapulse/internal/errors"
	"datapulse/internal/infrastructure"
	"datapulse/pkg/contracts/domain"
)

// MemberStats tallies the lines of one archive member
type MemberStats struct {
	Name      string `json:"name"`
	Lines     int    `json:"lines"`
	Decoded   int    `json:"decoded"`
	Malformed int    `json:"malformed"`
}

// WalkResult is everything an archive walk produced. Records are in
// member-then-line order. Malformed never decreases during a walk.
type WalkResult struct {
	Archives  []string        `json:"archives"`
	Records   []domain.Record `json:"-"`
	LinesRead int             `json:"lines_read"`
	Malformed int             `json:"malformed"`
	Members   []MemberStats   `json:"members"`
	Skipped   []string        `json:"skipped"`
}

// Merge appends other's records and tallies to r, preserving order
func (r *WalkResult) Merge(other *WalkResult) {
	if other == nil {
		return
	}
	r.Archives = append(r.Archives, other.Archives...)
	r.Records = append(r.Records, other.Records...)
	r.LinesRead += other.LinesRead
	r.Malformed += other.Malformed
	r.Members = append(r.Members, other.Members...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// Diagnostics renders the walk's audit lines
func (r *WalkResult) Diagnostics() []string {
	var out []string
	for _, name := range r.Skipped {
		out = append(out, fmt.Sprintf("Skipped archive member %s", name))
	}
	if r.Malformed > 0 {
		out = append(out, fmt.Sprintf("Malformed lines skipped: %d", r.Malformed))
	}
	return out
}

// ArchiveWalker decodes every line of every member of a zip archive
type ArchiveWalker struct {
	logger       *slog.Logger
	metrics      *infrastructure.PipelineMetrics
	tracer       trace.Tracer
	memberPrefix string
	maxLineBytes int
}

// WalkerOption configures an ArchiveWalker
type WalkerOption func(*ArchiveWalker)

// WithMemberPrefix restricts decoding to members whose base name starts with prefix
func WithMemberPrefix(prefix string) WalkerOption {
	return func(w *ArchiveWalker) { w.memberPrefix = prefix }
}

// WithMaxLineBytes sets the longest line accepted; longer lines count as malformed
func WithMaxLineBytes(n int) WalkerOption {
	return func(w *ArchiveWalker) {
		if n > 0 {
			w.maxLineBytes = n
		}
	}
}

// WithWalkerMetrics records walk tallies on m
func WithWalkerMetrics(m *infrastructure.PipelineMetrics) WalkerOption {
	return func(w *ArchiveWalker) {
		if m != nil {
			w.metrics = m
		}
	}
}

// NewArchiveWalker creates a walker
func NewArchiveWalker(logger *slog.Logger, opts ...WalkerOption) *ArchiveWalker {
	if logger == nil {
		logger = slog.Default()
	}
	w := &ArchiveWalker{
		logger:       infrastructure.WithComponent(logger, "archive_walker"),
		metrics:      infrastructure.NoopPipelineMetrics(),
		tracer:       otel.Tracer(infrastructure.TracerName),
		maxLineBytes: config.DefaultMaxLineBytes,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk opens the archive at archivePath and decodes it. A missing or
// unreadable archive is fatal and returned as an *errors.AppError; malformed
// lines never are.
func (w *ArchiveWalker) Walk(ctx context.Context, archivePath string) (*WalkResult, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewMissingInputError(archivePath, err)
		}
		return nil, apperrors.NewArchiveError(archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, apperrors.NewArchiveError(archivePath, err)
	}
	return w.WalkReader(ctx, f, info.Size(), archivePath)
}

// WalkReader decodes an archive of size bytes held in r. name labels logs,
// errors and the result.
func (w *ArchiveWalker) WalkReader(ctx context.Context, r io.ReaderAt, size int64, name string) (*WalkResult, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, apperrors.NewArchiveError(name, err)
	}
	return w.walk(ctx, name, zr)
}

func (w *ArchiveWalker) walk(ctx context.Context, name string, zr *zip.Reader) (*WalkResult, error) {
	ctx, span := w.tracer.Start(ctx, "archive.walk", trace.WithAttributes(
		attribute.String("archive", name),
		attribute.Int("members", len(zr.File)),
	))
	defer span.End()

	result := &WalkResult{Archives: []string{name}}

	w.logger.InfoContext(ctx, "walking archive",
		slog.String("archive", name),
		slog.Int("members", len(zr.File)))

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			continue
		}

		base := path.Base(f.Name)
		if w.memberPrefix != "" && !strings.HasPrefix(base, w.memberPrefix) {
			w.logger.InfoContext(ctx, "skipping archive member not matching prefix",
				slog.String("member", f.Name),
				slog.String("prefix", w.memberPrefix))
			w.metrics.RecordSkippedMember(ctx)
			result.Skipped = append(result.Skipped, f.Name)
			continue
		}

		stats, err := w.walkMember(ctx, f, result)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.NewArchiveError(name, err).WithContext("member", f.Name)
		}
		result.Members = append(result.Members, stats)
		result.LinesRead += stats.Lines
		result.Malformed += stats.Malformed
		w.metrics.RecordMember(ctx, f.Name, stats.Lines, stats.Decoded, stats.Malformed)
	}

	span.SetAttributes(
		attribute.Int("lines_read", result.LinesRead),
		attribute.Int("malformed", result.Malformed),
	)
	w.logger.InfoContext(ctx, "archive walk complete",
		slog.String("archive", name),
		slog.Int("records", len(result.Records)),
		slog.Int("lines_read", result.LinesRead),
		slog.Int("malformed", result.Malformed),
		slog.Int("skipped_members", len(result.Skipped)))

	return result, nil
}

func (w *ArchiveWalker) walkMember(ctx context.Context, f *zip.File, result *WalkResult) (MemberStats, error) {
	stats := MemberStats{Name: f.Name}

	rc, err := f.Open()
	if err != nil {
		return stats, fmt.Errorf("open member %s: %w", f.Name, err)
	}
	defer rc.Close()

	err = readLines(rc, w.maxLineBytes, func(line []byte, tooLong bool) {
		stats.Lines++
		if tooLong {
			stats.Malformed++
			w.logger.DebugContext(ctx, "line exceeds maximum length",
				slog.String("member", f.Name),
				slog.Int("line", stats.Lines))
			return
		}
		record, err := DecodeLine(line)
		if err != nil {
			stats.Malformed++
			w.logger.DebugContext(ctx, "malformed line skipped",
				slog.String("member", f.Name),
				slog.Int("line", stats.Lines),
				slog.String("error", err.Error()))
			return
		}
		stats.Decoded++
		result.Records = append(result.Records, record)
	})
	if err != nil {
		return stats, fmt.Errorf("read member %s: %w", f.Name, err)
	}

	return stats, nil
}

// readLines calls emit for every newline-terminated line of r, plus a final
// unterminated line if any. Lines longer than maxBytes are reported with
// tooLong set and their content discarded.
func readLines(r io.Reader, maxBytes int, emit func(line []byte, tooLong bool)) error {
	br := bufio.NewReaderSize(r, 64*1024)

	var (
		line    []byte
		tooLong bool
		started bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if len(chunk) > 0 {
			started = true
			if !tooLong {
				if len(line)+len(chunk) > maxBytes+2 {
					tooLong = true
					line = line[:0]
				} else {
					line = append(line, chunk...)
				}
			}
		}

		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if started {
				emit(trimEOL(line), tooLong)
			}
			return nil
		case err != nil:
			return err
		}

		emit(trimEOL(line), tooLong)
		line, tooLong, started = line[:0], false, false
	}
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
