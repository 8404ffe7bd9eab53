package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("Now() = %v, want %v", clock.Now(), ReferenceTime())
	}
}

func TestClockSetAndAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	clock := NewClock(start)

	if !clock.Now().Equal(start) {
		t.Fatalf("Now() = %v, want %v", clock.Now(), start)
	}

	advanced := clock.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !advanced.Equal(want) || !clock.Now().Equal(want) {
		t.Fatalf("Advance = %v, Now = %v, want %v", advanced, clock.Now(), want)
	}

	reset := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	clock.Set(reset)
	if !clock.Now().Equal(reset) {
		t.Fatalf("Now() after Set = %v, want %v", clock.Now(), reset)
	}
}

func TestClockNowFuncOnNilClock(t *testing.T) {
	t.Parallel()

	var clock *Clock
	if clock.NowFunc()().IsZero() {
		t.Fatal("nil clock NowFunc returned the zero time")
	}
}
