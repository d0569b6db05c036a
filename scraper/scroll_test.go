package scraper

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeScrollDriver replays a scripted sequence of document heights. The
// first value is the pre-scroll measurement; each subsequent value is what
// DocumentHeight reports after one more scroll pass.
type fakeScrollDriver struct {
	heights []float64
	idx     int
	scrolls int
}

func (d *fakeScrollDriver) ScrollToBottom() error {
	d.scrolls++
	return nil
}

func (d *fakeScrollDriver) DocumentHeight() (float64, error) {
	h := d.heights[d.idx]
	if d.idx < len(d.heights)-1 {
		d.idx++
	}
	return h, nil
}

func TestRunScrollLoop_StopsOnFirstNonGrowth(t *testing.T) {
	tests := []struct {
		name        string
		heights     []float64
		maxAttempts int
		wantIters   int
	}{
		{"static page stops after one pass", []float64{1000, 1000}, 5, 1},
		{"grows twice then plateaus", []float64{1000, 2000, 3000, 3000}, 10, 3},
		{"keeps growing until budget exhausted", []float64{1000, 2000, 3000, 4000}, 3, 3},
		{"single attempt budget", []float64{1000, 2000}, 1, 1},
		{"jitter below epsilon is not growth", []float64{1000, 1001}, 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeScrollDriver{heights: tt.heights}
			iters, err := runScrollLoop(context.Background(), d, tt.maxAttempts, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if iters != tt.wantIters {
				t.Errorf("iterations = %d, want %d", iters, tt.wantIters)
			}
			if d.scrolls != tt.wantIters {
				t.Errorf("scroll calls = %d, want %d", d.scrolls, tt.wantIters)
			}
		})
	}
}

func TestRunScrollLoop_ZeroAttempts(t *testing.T) {
	d := &fakeScrollDriver{heights: []float64{1000}}
	iters, err := runScrollLoop(context.Background(), d, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iters != 0 || d.scrolls != 0 {
		t.Errorf("expected no iterations, got iters=%d scrolls=%d", iters, d.scrolls)
	}
}

func TestRunScrollLoop_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := &fakeScrollDriver{heights: []float64{1000, 2000, 3000}}
	_, err := runScrollLoop(ctx, d, 5, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type failingScrollDriver struct {
	fakeScrollDriver
	failAfter int
}

func (d *failingScrollDriver) ScrollToBottom() error {
	if d.scrolls >= d.failAfter {
		return errors.New("page went away")
	}
	return d.fakeScrollDriver.ScrollToBottom()
}

func TestRunScrollLoop_DriverFailurePropagates(t *testing.T) {
	d := &failingScrollDriver{
		fakeScrollDriver: fakeScrollDriver{heights: []float64{1000, 2000, 3000, 4000}},
		failAfter:        2,
	}
	iters, err := runScrollLoop(context.Background(), d, 10, 0)
	if err == nil {
		t.Fatal("expected scroll failure to propagate")
	}
	if iters != 2 {
		t.Errorf("iterations before failure = %d, want 2", iters)
	}
}
