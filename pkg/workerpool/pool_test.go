package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestPoolRunAllBoundsConcurrency(t *testing.T) {
	p := NewPool(Config{Size: 2})

	var current int32
	var maxSeen int32
	jobs := make([]Job, 10)
	for i := range jobs {
		jobs[i] = func() error {
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
					break
				}
			}
			atomic.AddInt32(&current, -1)
			return nil
		}
	}

	if err := p.RunAll(context.Background(), jobs); err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if maxSeen > 2 {
		t.Errorf("max concurrent jobs = %d, want <= 2", maxSeen)
	}
}

func TestPoolRunAllPropagatesError(t *testing.T) {
	p := NewPool(Config{Size: 4})
	wantErr := errors.New("boom")

	jobs := []Job{
		func() error { return nil },
		func() error { return wantErr },
		func() error { return nil },
	}

	if err := p.RunAll(context.Background(), jobs); err == nil {
		t.Error("expected an error, got nil")
	}
}

func TestPoolClosedRejectsSubmission(t *testing.T) {
	p := NewPool(Config{Size: 1})
	p.Close()

	err := p.RunAll(context.Background(), []Job{func() error { return nil }})
	if err != ErrPoolClosed {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}
}

func TestPoolEmptyJobList(t *testing.T) {
	p := NewPool(Config{Size: 1})
	if err := p.RunAll(context.Background(), nil); err != nil {
		t.Errorf("RunAll(nil) error: %v", err)
	}
}
