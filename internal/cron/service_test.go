package cron

import (
	"context"
	"errors"
	"testing"
)

type fakeLock struct {
	acquired  bool
	releases  int
	available bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquired = true
	return f.available, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs++
	return j.err
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	var order []string
	first := &orderedJob{name: "first", order: &order}
	second := &orderedJob{name: "second", order: &order}

	lock := &fakeLock{available: true}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("unexpected execution order %v", order)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released once, got %d", lock.releases)
	}
}

type orderedJob struct {
	name  string
	order *[]string
}

func (j *orderedJob) Name() string { return j.name }

func (j *orderedJob) Run(context.Context) error {
	*j.order = append(*j.order, j.name)
	return nil
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "noop"}
	lock := &fakeLock{available: false}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatalf("unheld lock must not be released")
	}
}

func TestRunCycleContinuesPastJobFailure(t *testing.T) {
	failing := &countingJob{name: "failing", err: errors.New("boom")}
	healthy := &countingJob{name: "healthy"}
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(failing, healthy),
		Lock:     &fakeLock{available: true},
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("cycle failed: %v", err)
	}
	if healthy.runs != 1 {
		t.Fatalf("healthy job must still run after a failure")
	}
}
