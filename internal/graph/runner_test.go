package graph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

type memoryStore struct {
	mu           sync.Mutex
	fingerprints map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{fingerprints: make(map[string]string)}
}

func (s *memoryStore) Fingerprint(_ context.Context, target string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fp, ok := s.fingerprints[target]
	return fp, ok, nil
}

func (s *memoryStore) SaveFingerprint(_ context.Context, target, fingerprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fingerprints[target] = fingerprint
	return nil
}

func countingTarget(name string, counter *atomic.Int32, sources, outputs []string, deps ...string) Target {
	return Target{
		Name:    name,
		Sources: sources,
		Outputs: outputs,
		Deps:    deps,
		Action: func(context.Context) error {
			counter.Add(1)
			for _, output := range outputs {
				if err := os.WriteFile(output, []byte(name), 0o644); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func TestRunSkipsUpToDateTargets(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(source, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	output := filepath.Join(dir, "out.txt")

	var runs atomic.Int32
	g, err := New([]Target{countingTarget("dist", &runs, []string{source}, []string{output})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := newMemoryStore()

	for i := 0; i < 2; i++ {
		runner, err := NewRunner(RunnerOptions{Graph: g, Store: store})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := runner.Run(context.Background(), []string{"dist"})
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		want := StatusCompleted
		if i == 1 {
			want = StatusSkipped
		}
		if result.FinalState["dist"] != want {
			t.Fatalf("run %d: expected %s, got %s", i, want, result.FinalState["dist"])
		}
	}
	if runs.Load() != 1 {
		t.Fatalf("expected exactly one execution, got %d", runs.Load())
	}
}

func TestRunRebuildsOnSourceChange(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(source, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	output := filepath.Join(dir, "out.txt")

	var runs atomic.Int32
	g, err := New([]Target{countingTarget("dist", &runs, []string{source}, []string{output})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := newMemoryStore()

	run := func() *Result {
		runner, err := NewRunner(RunnerOptions{Graph: g, Store: store})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		result, err := runner.Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return result
	}

	run()
	if err := os.WriteFile(source, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite source: %v", err)
	}
	result := run()
	if result.FinalState["dist"] != StatusCompleted {
		t.Fatalf("expected rebuild after source change, got %s", result.FinalState["dist"])
	}
	if runs.Load() != 2 {
		t.Fatalf("expected two executions, got %d", runs.Load())
	}
}

func TestRunRebuildsWhenOutputMissing(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(source, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	output := filepath.Join(dir, "out.txt")

	var runs atomic.Int32
	g, err := New([]Target{countingTarget("dist", &runs, []string{source}, []string{output})})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := newMemoryStore()

	runner, _ := NewRunner(RunnerOptions{Graph: g, Store: store})
	if _, err := runner.Run(context.Background(), nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := os.Remove(output); err != nil {
		t.Fatalf("remove output: %v", err)
	}
	runner, _ = NewRunner(RunnerOptions{Graph: g, Store: store})
	result, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.FinalState["dist"] != StatusCompleted {
		t.Fatalf("expected rebuild with missing output, got %s", result.FinalState["dist"])
	}
	if runs.Load() != 2 {
		t.Fatalf("expected two executions, got %d", runs.Load())
	}
}

func TestRunFailureAbortsDependents(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	g, err := New([]Target{
		{Name: "dist", Action: func(context.Context) error { return boom }},
		{Name: "installer", Deps: []string{"dist"}, Action: func(context.Context) error {
			ran.Add(1)
			return nil
		}},
		{Name: "pot", Action: func(context.Context) error {
			ran.Add(1)
			return nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner, _ := NewRunner(RunnerOptions{Graph: g, Jobs: 2})
	result, runErr := runner.Run(context.Background(), nil)
	if runErr == nil {
		t.Fatal("expected run error")
	}
	if !errors.Is(runErr, boom) {
		t.Fatalf("expected cause in run error, got %v", runErr)
	}
	if result.FinalState["dist"] != StatusFailed {
		t.Fatalf("expected dist failed, got %s", result.FinalState["dist"])
	}
	if result.FinalState["installer"] != StatusAborted {
		t.Fatalf("expected installer aborted, got %s", result.FinalState["installer"])
	}
	if result.FinalState["pot"] != StatusCompleted {
		t.Fatalf("expected unrelated target to complete, got %s", result.FinalState["pot"])
	}
	if ran.Load() != 1 {
		t.Fatalf("expected only the unrelated target to run, got %d", ran.Load())
	}
}

func TestRunExecutesIndependentTargetsConcurrently(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{}, 2)

	action := func(context.Context) error {
		arrived <- struct{}{}
		<-release
		return nil
	}
	g, err := New([]Target{
		{Name: "a", Action: action},
		{Name: "b", Action: action},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner, _ := NewRunner(RunnerOptions{Graph: g, Jobs: 2})
	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), nil)
		done <- err
	}()

	// Both actions must be in flight before either is released.
	<-arrived
	<-arrived
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunDefaultJobsUsesAllCores(t *testing.T) {
	if runtime.NumCPU() < 2 {
		t.Skip("needs at least two CPUs")
	}

	release := make(chan struct{})
	arrived := make(chan struct{}, 2)

	action := func(context.Context) error {
		arrived <- struct{}{}
		<-release
		return nil
	}
	g, err := New([]Target{
		{Name: "a", Action: action},
		{Name: "b", Action: action},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Jobs left at zero must size the pool from the CPU count, not clamp
	// to a single worker.
	runner, _ := NewRunner(RunnerOptions{Graph: g})
	done := make(chan error, 1)
	go func() {
		_, err := runner.Run(context.Background(), nil)
		done <- err
	}()

	<-arrived
	<-arrived
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}

func TestRunNotifiesAbortedDependents(t *testing.T) {
	boom := errors.New("boom")
	g, err := New([]Target{
		{Name: "dist", Action: func(context.Context) error { return boom }},
		{Name: "installer", Deps: []string{"dist"}, Action: func(context.Context) error { return nil }},
		{Name: "launcher", Deps: []string{"installer"}, Action: func(context.Context) error { return nil }},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var mu sync.Mutex
	seen := make(map[string]Status)
	runner, _ := NewRunner(RunnerOptions{Graph: g, Jobs: 1, Observer: func(event Event) {
		mu.Lock()
		seen[event.Target] = event.Status
		mu.Unlock()
	}})
	if _, runErr := runner.Run(context.Background(), nil); runErr == nil {
		t.Fatal("expected run error")
	}

	// Every target in the closure gets an event, including the ones that
	// never started.
	if len(seen) != 3 {
		t.Fatalf("expected events for all three targets, got %d", len(seen))
	}
	if seen["dist"] != StatusFailed {
		t.Fatalf("expected dist failed, got %s", seen["dist"])
	}
	if seen["installer"] != StatusAborted {
		t.Fatalf("expected installer aborted, got %s", seen["installer"])
	}
	if seen["launcher"] != StatusAborted {
		t.Fatalf("expected launcher aborted, got %s", seen["launcher"])
	}
}

func TestRunDependentRunsWhenDependencyExecuted(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(source, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	distOut := filepath.Join(dir, "dist.txt")
	installerOut := filepath.Join(dir, "installer.txt")

	var distRuns, installerRuns atomic.Int32
	targets := []Target{
		countingTarget("dist", &distRuns, []string{source}, []string{distOut}),
		countingTarget("installer", &installerRuns, []string{distOut}, []string{installerOut}, "dist"),
	}
	g, err := New(targets)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := newMemoryStore()

	run := func() {
		runner, _ := NewRunner(RunnerOptions{Graph: g, Store: store})
		if _, err := runner.Run(context.Background(), nil); err != nil {
			t.Fatalf("run: %v", err)
		}
	}

	run()
	if err := os.WriteFile(source, []byte("v2"), 0o644); err != nil {
		t.Fatalf("rewrite source: %v", err)
	}
	run()

	if distRuns.Load() != 2 {
		t.Fatalf("expected dist to rebuild, got %d runs", distRuns.Load())
	}
	if installerRuns.Load() != 2 {
		t.Fatalf("expected installer rerun after dependency rebuilt, got %d runs", installerRuns.Load())
	}
}

func TestRunForceRebuildsEverything(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(source, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	output := filepath.Join(dir, "out.txt")

	var runs atomic.Int32
	g, _ := New([]Target{countingTarget("dist", &runs, []string{source}, []string{output})})
	store := newMemoryStore()

	runner, _ := NewRunner(RunnerOptions{Graph: g, Store: store})
	if _, err := runner.Run(context.Background(), nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	forced, _ := NewRunner(RunnerOptions{Graph: g, Store: store, Force: true})
	result, err := forced.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if result.FinalState["dist"] != StatusCompleted {
		t.Fatalf("expected forced rebuild, got %s", result.FinalState["dist"])
	}
	if runs.Load() != 2 {
		t.Fatalf("expected two executions, got %d", runs.Load())
	}
}
