package clock

import (
	"testing"
	"time"
)

var start = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func TestFakeNowOnlyMovesOnAdvance(t *testing.T) {
	f := NewFake(start)
	if !f.Now().Equal(start) {
		t.Fatalf("Now = %v, want %v", f.Now(), start)
	}
	f.Advance(90 * time.Second)
	if want := start.Add(90 * time.Second); !f.Now().Equal(want) {
		t.Fatalf("Now = %v, want %v", f.Now(), want)
	}
}

func TestFakeTickerDeliversDueTicks(t *testing.T) {
	f := NewFake(start)
	tk := f.NewTicker(time.Second)
	defer tk.Stop()

	var got []time.Time
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			got = append(got, <-tk.C())
		}
	}()

	f.Advance(3 * time.Second)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer never saw 3 ticks")
	}

	for i, at := range got {
		if want := start.Add(time.Duration(i+1) * time.Second); !at.Equal(want) {
			t.Errorf("tick %d at %v, want %v", i, at, want)
		}
	}
}

func TestFakeTickerDropsTicksLikeARealOne(t *testing.T) {
	f := NewFake(start)
	tk := f.NewTicker(time.Second)
	defer tk.Stop()

	// Nobody reads during the advance: only one tick stays buffered.
	f.Advance(5 * time.Second)

	select {
	case <-tk.C():
	default:
		t.Fatal("expected one buffered tick")
	}
	select {
	case at := <-tk.C():
		t.Fatalf("unexpected second buffered tick at %v", at)
	default:
	}
}

func TestFakeStoppedTickerStaysQuiet(t *testing.T) {
	f := NewFake(start)
	tk := f.NewTicker(time.Second)
	tk.Stop()

	f.Advance(3 * time.Second)
	select {
	case at := <-tk.C():
		t.Fatalf("stopped ticker fired at %v", at)
	default:
	}
}

func TestFakeTickersListsLiveIntervals(t *testing.T) {
	f := NewFake(start)
	a := f.NewTicker(2 * time.Second)
	b := f.NewTicker(time.Second)
	defer a.Stop()
	defer b.Stop()

	got := f.Tickers()
	if len(got) != 2 || got[0] != time.Second || got[1] != 2*time.Second {
		t.Fatalf("Tickers = %v, want [1s 2s]", got)
	}

	a.Stop()
	if got := f.Tickers(); len(got) != 1 || got[0] != time.Second {
		t.Fatalf("Tickers after stop = %v, want [1s]", got)
	}
}

func TestRealClockTicks(t *testing.T) {
	c := New()
	before := c.Now()
	tk := c.NewTicker(10 * time.Millisecond)
	defer tk.Stop()

	select {
	case at := <-tk.C():
		if at.Before(before) {
			t.Errorf("tick at %v before start %v", at, before)
		}
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}
