package cron

import (
	"context"
	"testing"
	"time"
)

type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	return f.values[key], nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	store := newFakeRedis()
	lock, err := NewRedisLock(store, "lock:daily_pl_report", time.Minute)
	if err != nil {
		t.Fatalf("NewRedisLock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("first acquire should win: ok=%v err=%v", ok, err)
	}

	other, _ := NewRedisLock(store, "lock:daily_pl_report", time.Minute)
	ok, err = other.Acquire(context.Background())
	if err != nil || ok {
		t.Fatalf("second acquire should lose: ok=%v err=%v", ok, err)
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ok, err = other.Acquire(context.Background())
	if err != nil || !ok {
		t.Fatalf("acquire after release should win: ok=%v err=%v", ok, err)
	}
}

func TestRedisLockReleaseOnlyByOwner(t *testing.T) {
	store := newFakeRedis()
	lock, _ := NewRedisLock(store, "lock:weekly_vendor_summary", time.Minute)
	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	store.values["lock:weekly_vendor_summary"] = "someone-else"
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if store.values["lock:weekly_vendor_summary"] != "someone-else" {
		t.Fatal("release must not evict another owner's lock")
	}
}

func TestRegistryLookup(t *testing.T) {
	alerts, _ := NewPaymentAlertsJob(PaymentAlertsJobParams{
		Logger: testLogger(), Reports: &stubOverdue{}, Alerts: &stubAlerts{},
	})
	registry := NewRegistry(alerts, nil)

	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("nil jobs must be dropped, got %d", got)
	}
	if registry.Get(JobPaymentAlerts) == nil {
		t.Fatal("expected registered job by name")
	}
	if registry.Get("bogus") != nil {
		t.Fatal("unknown name must return nil")
	}
}
