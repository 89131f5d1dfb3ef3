package calibrationService

import (
	"PoseAlign/internal/entity"
	"PoseAlign/pkg/perspective"
	"sync/atomic"
	"testing"
	"time"
)

func storedCalibration(id string, at time.Time) entity.Calibration {
	return entity.Calibration{
		ID:          id,
		UserID:      "user-1",
		VideoSource: entity.VideoSourceUser,
		Method:      perspective.MethodExtrapolate,
		Source:      perspective.UnitSquare(),
		Destination: perspective.UnitSquare(),
		Projected:   perspective.UnitSquare(),
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestHolderStoreExpiry(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newHolderStore(time.Minute)
	store.put(storedCalibration("a", start), start)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "fresh", at: start.Add(59 * time.Second), want: true},
		{name: "expired", at: start.Add(time.Minute), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := store.load("a", tt.at); ok != tt.want {
				t.Errorf("load() ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestHolderStoreSweepsExpiredEntries(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newHolderStore(time.Minute)

	store.put(storedCalibration("a", start), start)
	store.put(storedCalibration("b", start), start.Add(2*time.Minute))

	if store.contains("a") {
		t.Error("expired entry survived the sweep")
	}
	if !store.contains("b") {
		t.Error("new entry missing after sweep")
	}
}

func TestHolderStoreSwapMissing(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := newHolderStore(time.Minute)

	if _, ok := store.swap(storedCalibration("gone", now), now); ok {
		t.Error("swap() on a missing entry reported success")
	}
	if store.contains("gone") {
		t.Error("swap() registered a missing entry")
	}
}

func TestHolderStoreLockSerializesWriters(t *testing.T) {
	store := newHolderStore(time.Minute)

	unlock := store.lock("cal-1")

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		release := store.lock("cal-1")
		acquired.Store(true)
		release()
	}()

	time.Sleep(20 * time.Millisecond)
	if acquired.Load() {
		t.Fatal("second writer acquired a held lock")
	}

	unlock()
	<-done
	if !acquired.Load() {
		t.Error("second writer never acquired the lock")
	}
}
