package render

import (
	"context"
	"runtime"
	"sync"

	"github.com/pthm-cable/emfield/shader"
)

// rowChunk is a range of raster rows for one worker to shade.
type rowChunk struct {
	ctx        context.Context
	frame      *shader.Frame
	raster     *Raster
	start, end int
	done       chan<- struct{}
}

// pool is a set of persistent worker goroutines shading row chunks.
// Each chunk carries its own completion channel, so several frames may be
// in flight at once.
type pool struct {
	numWorkers int

	mu       sync.Mutex
	workChan chan rowChunk // sends work to workers
	stopChan chan struct{} // signals workers to exit
	wg       sync.WaitGroup
	running  bool
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &pool{numWorkers: workers}
}

// start launches the workers if they are not already running.
func (p *pool) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	p.workChan = make(chan rowChunk, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopChan:
			return
		case c := <-p.workChan:
			// A cancelled frame is discarded whole, so skipping is safe.
			if c.ctx.Err() == nil {
				shadeRows(c.frame, c.raster, c.start, c.end)
			}
			c.done <- struct{}{}
		}
	}
}

// shadeRows writes rows [start, end) of the raster.
func shadeRows(f *shader.Frame, r *Raster, start, end int) {
	for py := start; py < end; py++ {
		row := r.Pix[py*r.W : (py+1)*r.W]
		for px := range row {
			row[px] = f.Shade(px, py)
		}
	}
}
