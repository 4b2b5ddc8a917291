package artifacts

import (
	"context"
	"sync"

	"github.com/shreeglass/erp-backend/pkg/logger"
)

// Pool runs CPU-bound render jobs on a bounded set of workers so a burst of
// PDF requests cannot starve the request handlers.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
	logg *logger.Logger

	mu     sync.Mutex
	closed bool
}

type job struct {
	name string
	fn   func(ctx context.Context) error
}

func NewPool(workers int, logg *logger.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	p := &Pool{
		jobs: make(chan job, workers*4),
		logg: logg,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		ctx := context.Background()
		if err := j.fn(ctx); err != nil && p.logg != nil {
			p.logg.Error(ctx, "render job failed: "+j.name, err)
		}
	}
}

// Submit queues a render job. A full queue or a closed pool drops the job
// and reports false; artifacts are regenerable so dropping is safe.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	select {
	case p.jobs <- job{name: name, fn: fn}:
		return true
	default:
		if p.logg != nil {
			p.logg.Warn(context.Background(), "render queue full, dropping job "+name)
		}
		return false
	}
}

// Close stops intake and waits for in-flight jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
