// Package batch applies a line conversion to a stream of text concurrently
// while keeping the output in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	defaultChunkSize = 1024
	maxLineSize      = 1 << 20
)

// Func converts one line of text.
type Func func(line string) string

// Options controls a batch conversion.
type Options struct {
	Workers   int          // Concurrent conversions (default runtime.NumCPU())
	ChunkSize int          // Lines held in memory at once (default 1024)
	Log       *slog.Logger // Optional debug logging
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = defaultChunkSize
	}
	if o.Log == nil {
		o.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Lines converts every line with fn using up to workers goroutines. The
// result has the same length and order as lines.
func Lines(ctx context.Context, lines []string, fn Func, workers int) ([]string, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]string, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = fn(line)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Convert reads r line by line, converts each line with fn and writes the
// results to w, one per line, in the order they were read. Every output line
// is terminated with a newline.
func Convert(ctx context.Context, r io.Reader, w io.Writer, fn Func, opts Options) error {
	opts = opts.withDefaults()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	bw := bufio.NewWriter(w)

	chunk := make([]string, 0, opts.ChunkSize)
	total := 0

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		converted, err := Lines(ctx, chunk, fn, opts.Workers)
		if err != nil {
			return err
		}
		for _, line := range converted {
			if _, err := bw.WriteString(line); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if err := bw.WriteByte('\n'); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
		}
		total += len(chunk)
		opts.Log.Debug("converted chunk", slog.Int("lines", len(chunk)), slog.Int("total", total))
		chunk = chunk[:0]
		return nil
	}

	for scanner.Scan() {
		chunk = append(chunk, scanner.Text())
		if len(chunk) == opts.ChunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
