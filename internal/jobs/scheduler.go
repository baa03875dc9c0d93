package jobs

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xempie/trade-sub002/internal/metrics"
)

// Job is one periodic task run by the Scheduler.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// RunStats is the last observed state of one job, served by GET /api/jobs.
type RunStats struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	Runs      int64      `json:"runs"`
	Failures  int64      `json:"failures"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Running   bool       `json:"running"`
}

type jobState struct {
	job      Job
	inFlight atomic.Bool

	mu        sync.Mutex
	runs      int64
	failures  int64
	lastRun   time.Time
	lastError string
}

// Scheduler runs each registered job on its own ticker. A tick is skipped
// when the previous run of the same job has not finished. The in-flight
// guard is process local; running two instances against one database is
// not supported.
type Scheduler struct {
	jobs []*jobState
	wg   sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, &jobState{job: job})
}

// Start launches one goroutine per job. Each job runs once immediately,
// then on every tick. Cancel ctx to stop; Wait blocks until all runs drain.
func (s *Scheduler) Start(ctx context.Context) {
	for _, st := range s.jobs {
		s.wg.Add(1)
		go func(st *jobState) {
			defer s.wg.Done()

			s.runOnce(ctx, st)

			ticker := time.NewTicker(st.job.Interval())
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.runOnce(ctx, st)
				}
			}
		}(st)
	}
}

func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) runOnce(ctx context.Context, st *jobState) {
	name := st.job.Name()
	if !st.inFlight.CompareAndSwap(false, true) {
		metrics.JobTicksSkipped.WithLabelValues(name).Inc()
		log.Printf("Job %s: previous run still in flight, skipping tick", name)
		return
	}
	defer st.inFlight.Store(false)

	start := time.Now()
	err := st.job.Run(ctx)
	metrics.JobRunDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	st.mu.Lock()
	st.runs++
	st.lastRun = start
	if err != nil {
		st.failures++
		st.lastError = err.Error()
	} else {
		st.lastError = ""
	}
	st.mu.Unlock()

	if err != nil {
		metrics.JobRunsTotal.WithLabelValues(name, "error").Inc()
		log.Printf("Job %s failed: %v", name, err)
		return
	}
	metrics.JobRunsTotal.WithLabelValues(name, "ok").Inc()
}

// Stats returns a snapshot for every registered job.
func (s *Scheduler) Stats() []RunStats {
	out := make([]RunStats, 0, len(s.jobs))
	for _, st := range s.jobs {
		st.mu.Lock()
		stats := RunStats{
			Name:      st.job.Name(),
			Interval:  st.job.Interval().String(),
			Runs:      st.runs,
			Failures:  st.failures,
			LastError: st.lastError,
			Running:   st.inFlight.Load(),
		}
		if !st.lastRun.IsZero() {
			t := st.lastRun
			stats.LastRun = &t
		}
		st.mu.Unlock()
		out = append(out, stats)
	}
	return out
}
