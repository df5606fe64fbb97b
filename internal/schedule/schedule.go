// Package schedule periodically drives an Engram memory engine's
// consolidation and pruning from a host process, the Go equivalent of
// calling consolidate() "once per day of agent operation". It is entirely
// outside the façade's lock discipline: it only ever calls public Memory
// methods, the same as any other caller.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/time/rate"

	"github.com/engramhq/engram/internal/consolidation"
)

// Consolidator is the subset of *engram.Memory the scheduler drives. It is
// expressed as an interface so tests can supply a fake without spinning up
// a real store.
type Consolidator interface {
	Consolidate(ctx context.Context, dtDays float64) (consolidation.Stats, error)
	Prune(ctx context.Context, threshold float64) ([]string, error)
}

// RunReport is handed to an optional observer after each scheduled cycle.
type RunReport struct {
	Ran         time.Time
	Consolidate consolidation.Stats
	Pruned      []string
	Err         error
}

// Scheduler runs consolidation and pruning on a cron-like cadence, rate
// limited so a misconfigured host cannot hammer the store with sub-second
// cycles.
type Scheduler struct {
	mu        sync.Mutex
	gc        gocron.Scheduler
	mem       Consolidator
	limiter   *rate.Limiter
	dtDays    float64
	threshold float64
	onReport  func(RunReport)
}

// Options configures a Scheduler.
type Options struct {
	// Cron is a standard 5-field cron expression (e.g. "0 3 * * *" for
	// daily at 03:00). Required.
	Cron string
	// DtDays is the elapsed-time argument passed to Consolidate each
	// cycle. Defaults to 1.0 (one day of simulated operation) when zero.
	DtDays float64
	// PruneThreshold is passed to Prune each cycle; <= 0 lets Prune fall
	// back to the engine's configured default.
	PruneThreshold float64
	// MinInterval is the minimum time the rate limiter allows between
	// cycles, guarding against a cron expression firing sub-second.
	// Defaults to one minute when zero.
	MinInterval time.Duration
	// OnReport, if set, is invoked after every cycle (success or error).
	OnReport func(RunReport)
}

// New builds a Scheduler around mem, not yet started.
func New(mem Consolidator, opts Options) (*Scheduler, error) {
	gc, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("schedule: create gocron scheduler: %w", err)
	}

	dt := opts.DtDays
	if dt <= 0 {
		dt = 1.0
	}
	minInterval := opts.MinInterval
	if minInterval <= 0 {
		minInterval = time.Minute
	}

	s := &Scheduler{
		gc:        gc,
		mem:       mem,
		limiter:   rate.NewLimiter(rate.Every(minInterval), 1),
		dtDays:    dt,
		threshold: opts.PruneThreshold,
		onReport:  opts.OnReport,
	}

	_, err = gc.NewJob(
		gocron.CronJob(opts.Cron, false),
		gocron.NewTask(s.runCycle),
		gocron.WithName("engram-consolidate"),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule: register job: %w", err)
	}
	return s, nil
}

// Start begins firing scheduled cycles in the background.
func (s *Scheduler) Start() {
	s.gc.Start()
}

// Stop halts the scheduler and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() error {
	return s.gc.Shutdown()
}

// RunNow triggers an out-of-band cycle immediately, still subject to the
// rate limiter so a burst of manual triggers can't bypass MinInterval.
func (s *Scheduler) RunNow(ctx context.Context) RunReport {
	return s.cycle(ctx)
}

func (s *Scheduler) runCycle() {
	s.cycle(context.Background())
}

func (s *Scheduler) cycle(ctx context.Context) RunReport {
	if err := s.limiter.Wait(ctx); err != nil {
		report := RunReport{Ran: time.Now(), Err: fmt.Errorf("schedule: rate limit wait: %w", err)}
		s.report(report)
		return report
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report := RunReport{Ran: time.Now()}
	stats, err := s.mem.Consolidate(ctx, s.dtDays)
	if err != nil {
		report.Err = fmt.Errorf("schedule: consolidate: %w", err)
		s.report(report)
		return report
	}
	report.Consolidate = stats

	pruned, err := s.mem.Prune(ctx, s.threshold)
	if err != nil {
		report.Err = fmt.Errorf("schedule: prune: %w", err)
		s.report(report)
		return report
	}
	report.Pruned = pruned

	s.report(report)
	return report
}

func (s *Scheduler) report(r RunReport) {
	if s.onReport != nil {
		s.onReport(r)
	}
}
