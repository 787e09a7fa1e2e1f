package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"shipwright/internal/logging"
	"shipwright/internal/services"
)

// Status describes the final disposition of a target within one run.
type Status string

const (
	// StatusCompleted means the action ran and succeeded.
	StatusCompleted Status = "completed"
	// StatusSkipped means the stored fingerprint still matched; the action
	// did not run.
	StatusSkipped Status = "skipped"
	// StatusFailed means the action returned an error.
	StatusFailed Status = "failed"
	// StatusAborted means a dependency failed so the action never started.
	StatusAborted Status = "aborted"
)

// FingerprintStore persists target fingerprints between runs.
type FingerprintStore interface {
	Fingerprint(ctx context.Context, target string) (string, bool, error)
	SaveFingerprint(ctx context.Context, target, fingerprint string) error
}

// Event reports one target's outcome to an observer as the run progresses.
type Event struct {
	Target   string
	Status   Status
	Err      error
	Duration time.Duration
}

// Result summarizes a run.
type Result struct {
	FinalState map[string]Status
	Failed     []string
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Graph *Graph
	Store FingerprintStore
	// Logger receives per-target progress. Nil discards.
	Logger *slog.Logger
	// Jobs bounds concurrent actions. Values below one use every CPU.
	Jobs int
	// Force rebuilds every selected target regardless of fingerprints.
	Force bool
	// Observer, when set, receives an Event per finished target.
	Observer func(Event)
}

// Runner schedules target actions over a bounded worker pool.
type Runner struct {
	graph    *Graph
	store    FingerprintStore
	logger   *slog.Logger
	jobs     int
	force    bool
	observer func(Event)
}

// NewRunner constructs a Runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Graph == nil {
		return nil, errors.New("graph: runner requires a graph")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}
	return &Runner{
		graph:    opts.Graph,
		store:    opts.Store,
		logger:   logger,
		jobs:     jobs,
		force:    opts.Force,
		observer: opts.Observer,
	}, nil
}

type outcome struct {
	name     string
	status   Status
	err      error
	executed bool
	duration time.Duration
}

// Run executes the requested targets and their dependency closure. The
// first action failure is returned after in-flight siblings finish;
// dependents of a failed target are aborted, unrelated subtrees continue.
func (r *Runner) Run(ctx context.Context, requested []string) (*Result, error) {
	plan, err := r.graph.Closure(requested)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]struct{}, len(plan))
	indeg := make(map[string]int, len(plan))
	for _, name := range plan {
		selected[name] = struct{}{}
	}
	for _, name := range plan {
		target, _ := r.graph.Target(name)
		for _, dep := range target.Deps {
			if _, ok := selected[dep]; ok {
				indeg[name]++
			}
		}
	}

	state := make(map[string]Status, len(plan))
	executed := make(map[string]bool, len(plan))

	type job struct {
		name   string
		depRan bool
	}

	// depRan is resolved by the dispatcher at dispatch time, when every
	// dependency outcome is already recorded, so workers never touch the
	// shared maps.
	depRan := func(name string) bool {
		target, _ := r.graph.Target(name)
		for _, dep := range target.Deps {
			if executed[dep] {
				return true
			}
		}
		return false
	}

	readyCh := make(chan job, len(plan))
	doneCh := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < r.jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range readyCh {
				doneCh <- r.execute(ctx, j.name, j.depRan)
			}
		}()
	}

	for _, name := range plan {
		if indeg[name] == 0 {
			readyCh <- job{name: name}
		}
	}

	var firstErr error
	remaining := len(plan)
	var failed []string

dispatch:
	for remaining > 0 {
		select {
		case <-ctx.Done():
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			break dispatch
		case out := <-doneCh:
			remaining--
			state[out.name] = out.status
			executed[out.name] = out.executed
			r.notify(Event{Target: out.name, Status: out.status, Err: out.err, Duration: out.duration})

			if out.status == StatusFailed {
				failed = append(failed, out.name)
				if firstErr == nil {
					firstErr = out.err
				}
				remaining -= r.abortDependents(out.name, selected, state, &failed)
				continue
			}

			for _, dependent := range r.graph.Dependents(out.name) {
				if _, ok := selected[dependent]; !ok {
					continue
				}
				if state[dependent] == StatusAborted {
					continue
				}
				indeg[dependent]--
				if indeg[dependent] == 0 {
					readyCh <- job{name: dependent, depRan: depRan(dependent)}
				}
			}
		}
	}

	close(readyCh)
	go func() {
		// Drain outcomes from workers that were mid-action at cancellation.
		for range doneCh {
		}
	}()
	wg.Wait()
	close(doneCh)

	for _, name := range plan {
		if _, ok := state[name]; !ok {
			state[name] = StatusAborted
			r.notify(Event{Target: name, Status: StatusAborted})
		}
	}

	result := &Result{FinalState: state, Failed: failed}
	return result, firstErr
}

func (r *Runner) abortDependents(name string, selected map[string]struct{}, state map[string]Status, failed *[]string) int {
	aborted := 0
	queue := []string{name}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range r.graph.Dependents(current) {
			if _, ok := selected[dependent]; !ok {
				continue
			}
			if _, final := state[dependent]; final {
				continue
			}
			state[dependent] = StatusAborted
			aborted++
			r.notify(Event{Target: dependent, Status: StatusAborted})
			queue = append(queue, dependent)
		}
	}
	return aborted
}

func (r *Runner) execute(ctx context.Context, name string, depRan bool) outcome {
	target, _ := r.graph.Target(name)
	targetCtx := services.WithTarget(ctx, name)
	logger := logging.WithContext(targetCtx, r.logger)

	fresh, err := r.freshness(targetCtx, target, depRan)
	if err != nil {
		logger.Error("freshness check failed", logging.Error(err))
		return outcome{name: name, status: StatusFailed, err: err}
	}
	if fresh {
		logger.Debug("target up to date")
		return outcome{name: name, status: StatusSkipped}
	}

	started := time.Now()
	logger.Info("target started")
	if target.Action != nil {
		if err := target.Action(targetCtx); err != nil {
			logger.Error("target failed", logging.Error(err), logging.Duration("duration", time.Since(started)))
			return outcome{name: name, status: StatusFailed, err: fmt.Errorf("target %s: %w", name, err), executed: true}
		}
	}

	if r.store != nil && len(target.Sources) > 0 {
		// Recompute after the action so outputs regenerated from the same
		// sources do not mark the target stale next run.
		post, err := ComputeFingerprint(target.Sources)
		if err == nil {
			if saveErr := r.store.SaveFingerprint(targetCtx, name, post.Encode()); saveErr != nil {
				logger.Warn("persist fingerprint failed", logging.Error(saveErr))
			}
		} else {
			logger.Warn("recompute fingerprint failed", logging.Error(err))
		}
	}

	logger.Info("target completed", logging.Duration("duration", time.Since(started)))
	return outcome{name: name, status: StatusCompleted, executed: true}
}

func (r *Runner) freshness(ctx context.Context, target Target, depRan bool) (bool, error) {
	if target.Always || r.force || depRan {
		return false, nil
	}
	if target.Action == nil {
		// Aggregation-only target; nothing to run, always fresh.
		return true, nil
	}
	for _, output := range target.Outputs {
		if _, err := os.Stat(output); err != nil {
			return false, nil
		}
	}
	if r.store == nil || len(target.Sources) == 0 {
		return false, nil
	}

	current, err := ComputeFingerprint(target.Sources)
	if err != nil {
		return false, err
	}
	encoded, found, err := r.store.Fingerprint(ctx, target.Name)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	stored, ok := ParseFingerprint(encoded)
	if !ok {
		return false, nil
	}
	if !ContentMatches(stored, current) {
		return false, nil
	}
	if stored.Stat != current.Stat {
		// Touch-only change; refresh the stored stat so the next run takes
		// the fast path again.
		if saveErr := r.store.SaveFingerprint(ctx, target.Name, current.Encode()); saveErr != nil {
			logging.WithContext(ctx, r.logger).Warn("refresh fingerprint failed", logging.Error(saveErr))
		}
	}
	return true, nil
}

func (r *Runner) notify(event Event) {
	if r.observer != nil {
		r.observer(event)
	}
}
