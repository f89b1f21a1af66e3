package cron

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aarav-aiphi/Backend/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLock struct {
	held     bool
	acquires int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	f.acquires++
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.held = false; return nil }

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(ctx context.Context) error {
	t.runs++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("job context has no deadline")
	}
	return t.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	registry, err := NewRegistry(jobs...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	svc, err := NewService(ServiceParams{Logger: testLogger(), Registry: registry, Lock: lock})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "fail", err: errors.New("boom")}
	lock := &fakeLock{}
	svc := newTestService(t, lock, failing, ok)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job once, got ok=%d fail=%d", ok.runs, failing.runs)
	}
	if lock.held {
		t.Fatal("lock not released")
	}
}

func TestRunOnceSelectsJobsByName(t *testing.T) {
	a := &testJob{name: "a"}
	b := &testJob{name: "b"}
	svc := newTestService(t, &fakeLock{}, a, b)

	if err := svc.RunOnce(context.Background(), "b"); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if a.runs != 0 || b.runs != 1 {
		t.Fatalf("unexpected runs a=%d b=%d", a.runs, b.runs)
	}
	if err := svc.RunOnce(context.Background(), "nope"); err == nil {
		t.Fatal("expected unknown job error")
	}
}

func TestRunOnceSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "a"}
	svc := newTestService(t, &fakeLock{held: true}, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("job ran without the lock")
	}
}

type memoryLockStore struct {
	values map[string]string
}

func (m *memoryLockStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryLockStore) DeleteIfEquals(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func (m *memoryLockStore) LockKey(name string) string { return "az:lock:" + name }

func TestRedisLockIsExclusiveAndOwnerChecked(t *testing.T) {
	store := &memoryLockStore{values: map[string]string{}}
	first, err := NewRedisLock(store, "cron", "cron-a", time.Minute)
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	second, _ := NewRedisLock(store, "cron", "cron-b", time.Minute)
	ctx := context.Background()

	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatal("first acquire failed")
	}
	if ok, _ := second.Acquire(ctx); ok {
		t.Fatal("second acquire should fail")
	}
	if err := second.Release(ctx); err != nil {
		t.Fatalf("release without lease: %v", err)
	}
	if holder := store.values["az:lock:cron"]; !strings.HasPrefix(holder, "cron-a/") {
		t.Fatalf("expected cron-a to hold the lock, got %q", holder)
	}

	store.values["az:lock:cron"] = "someone-else"
	if err := first.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["az:lock:cron"] != "someone-else" {
		t.Fatal("stale holder deleted a foreign lease")
	}
}

type panickingJob struct{}

func (panickingJob) Name() string { return "explodes" }

func (panickingJob) Run(context.Context) error { panic("nil map write") }

func TestRunOnceSurvivesPanicAndRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	after := &testJob{name: "after"}
	registry, err := NewRegistry(panickingJob{}, after)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: registry,
		Lock:     &fakeLock{},
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunOnce(context.Background()))
	assert.Equal(t, 1, after.runs)

	families, err := reg.Gather()
	require.NoError(t, err)
	results := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "aiazent_cron_runs_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var job, result string
			for _, l := range m.GetLabel() {
				switch l.GetName() {
				case "job":
					job = l.GetValue()
				case "result":
					result = l.GetValue()
				}
			}
			results[job+"/"+result] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"explodes/failure": 1, "after/success": 1}, results)
}
