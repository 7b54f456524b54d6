// Package render drives the pixel shader over a whole output raster.
//
// A Renderer owns a pool of worker goroutines. Each frame is validated once,
// split into row chunks and shaded in parallel; every pixel is written only
// by the chunk that owns its row, so no further synchronization is needed.
package render

import (
	"context"
	"time"

	"github.com/pthm-cable/emfield/config"
	"github.com/pthm-cable/emfield/field"
	"github.com/pthm-cable/emfield/shader"
)

// Options configures a Renderer.
type Options struct {
	Workers int // 0 = GOMAXPROCS

	// ParallelThreshold is the minimum raster height to use the worker pool.
	// Below this, single-threaded is faster due to dispatch overhead.
	ParallelThreshold int

	// ChunkRows is the number of rows per work item. 0 splits the frame
	// evenly across workers. Smaller chunks let a cancelled frame stop sooner.
	ChunkRows int
}

// OptionsFromConfig reads renderer options from the render section.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Workers:           cfg.Derived.Workers,
		ParallelThreshold: cfg.Render.ParallelThreshold,
		ChunkRows:         cfg.Render.ChunkRows,
	}
}

// Renderer shades frames on a persistent worker pool.
// Render may be called from several goroutines at once; Close must not
// overlap with Render.
type Renderer struct {
	opts Options
	pool *pool
}

// New creates a renderer. Workers start on the first parallel frame.
func New(opts Options) *Renderer {
	return &Renderer{
		opts: opts,
		pool: newPool(opts.Workers),
	}
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int { return r.pool.numWorkers }

// Close stops the worker goroutines.
func (r *Renderer) Close() {
	r.pool.stop()
}

// Render shades every pixel of dst from snap using the given mode.
// Inputs are validated before any pixel is written. If ctx is cancelled the
// frame is abandoned between chunks, ctx.Err() is returned and the contents
// of dst are unspecified.
func (r *Renderer) Render(ctx context.Context, snap *field.Snapshot, grid shader.Grid, dst *Raster, mode shader.Mode) error {
	frame, err := shader.NewFrame(mode, snap, grid, dst.Viewport())
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	if dst.H < r.opts.ParallelThreshold || r.pool.numWorkers == 1 {
		if err := r.renderSerial(ctx, frame, dst); err != nil {
			return err
		}
	} else if err := r.renderParallel(ctx, frame, dst); err != nil {
		return err
	}

	Logger().Debug("frame rendered",
		"mode", mode.String(),
		"width", dst.W,
		"height", dst.H,
		"grid_w", grid.Width,
		"grid_h", grid.Height,
		"elapsed_us", time.Since(start).Microseconds(),
	)
	return nil
}

// renderSerial shades on the calling goroutine, checking for cancellation
// between rows.
func (r *Renderer) renderSerial(ctx context.Context, frame *shader.Frame, dst *Raster) error {
	for y := 0; y < dst.H; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		shadeRows(frame, dst, y, y+1)
	}
	return nil
}

// renderParallel dispatches row chunks to the worker pool and waits for them.
func (r *Renderer) renderParallel(ctx context.Context, frame *shader.Frame, dst *Raster) error {
	r.pool.start()

	step := r.chunkRows(dst.H, r.pool.numWorkers)
	numChunks := (dst.H + step - 1) / step
	done := make(chan struct{}, numChunks)

	dispatched := 0
	for y := 0; y < dst.H; y += step {
		if ctx.Err() != nil {
			break
		}
		r.pool.workChan <- rowChunk{
			ctx:    ctx,
			frame:  frame,
			raster: dst,
			start:  y,
			end:    min(y+step, dst.H),
			done:   done,
		}
		dispatched++
	}

	// Wait for all dispatched chunks before returning, so no worker is
	// still writing into dst.
	for i := 0; i < dispatched; i++ {
		<-done
	}
	return ctx.Err()
}

// chunkRows returns the rows per work item for a frame of height h.
func (r *Renderer) chunkRows(h, workers int) int {
	if r.opts.ChunkRows > 0 {
		return r.opts.ChunkRows
	}
	step := (h + workers - 1) / workers
	if step < 1 {
		step = 1
	}
	return step
}
