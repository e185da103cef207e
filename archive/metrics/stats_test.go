package metrics

import (
	"sync"
	"testing"
)

func TestHitRate(t *testing.T) {
	s := NewCacheStats(true)

	if got := s.HitRate(); got != 0 {
		t.Errorf("HitRate on fresh recorder = %v, want 0", got)
	}

	s.Miss()
	s.Hit()

	snap := s.Snapshot()
	if snap.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", snap.HitCount)
	}
	if snap.MissCount != 1 {
		t.Errorf("MissCount = %d, want 1", snap.MissCount)
	}
	if snap.HitRate != 50.0 {
		t.Errorf("HitRate = %v, want 50.0", snap.HitRate)
	}
}

func TestReset(t *testing.T) {
	s := NewCacheStats(true)
	s.Hit()
	s.Hit()
	s.Miss()

	s.Reset()

	snap := s.Snapshot()
	if snap.HitCount != 0 || snap.MissCount != 0 {
		t.Errorf("counters after reset = %d/%d, want 0/0", snap.HitCount, snap.MissCount)
	}
	if snap.HitRate != 0 {
		t.Errorf("HitRate after reset = %v, want 0", snap.HitRate)
	}
}

func TestDisabledRecorder(t *testing.T) {
	s := NewCacheStats(false)
	s.Hit()
	s.Miss()

	snap := s.Snapshot()
	if snap.HitCount != 0 || snap.MissCount != 0 {
		t.Errorf("disabled recorder counted %d/%d, want 0/0", snap.HitCount, snap.MissCount)
	}
}

func TestConcurrentIncrements(t *testing.T) {
	s := NewCacheStats(true)

	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				s.Hit()
				s.Miss()
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	want := uint64(workers * perWorker)
	if snap.HitCount != want || snap.MissCount != want {
		t.Errorf("counters = %d/%d, want %d/%d", snap.HitCount, snap.MissCount, want, want)
	}
	if snap.HitRate != 50.0 {
		t.Errorf("HitRate = %v, want 50.0", snap.HitRate)
	}
}
