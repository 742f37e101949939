package xfetch

import (
	"math"
	"testing"
	"time"
)

// testEntry builds an entry directly so tests control delta, beta and expiry
// without going through the builder's clock.
func testEntry(delta time.Duration, beta float64, expiry time.Time) *Entry[int] {
	return &Entry[int]{value: 42, delta: delta, expiry: expiry, beta: beta}
}

//
// ================= DETERMINISTIC CASES =================
//

func TestZeroDeltaIsExactDeadline(t *testing.T) {
	now := time.Now()
	ent := testEntry(0, DefaultBeta, now.Add(100*time.Second))

	// With delta == 0 the draw is irrelevant: never early, expired exactly
	// at the deadline.
	for _, r := range []float64{1e-12, 0.5, 0.999999999} {
		if ent.expiredAt(now, r) {
			t.Errorf("r=%g: expired before deadline with zero delta", r)
		}
		if ent.expiredAt(now.Add(99*time.Second), r) {
			t.Errorf("r=%g: expired 1s before deadline with zero delta", r)
		}
		if !ent.expiredAt(now.Add(100*time.Second), r) {
			t.Errorf("r=%g: not expired at deadline", r)
		}
		if !ent.expiredAt(now.Add(101*time.Second), r) {
			t.Errorf("r=%g: not expired past deadline", r)
		}
	}
}

func TestZeroBetaIsExactDeadline(t *testing.T) {
	now := time.Now()
	ent := testEntry(10*time.Second, 0, now.Add(100*time.Second))

	for _, r := range []float64{1e-12, 0.5, 0.999999999} {
		if ent.expiredAt(now.Add(99*time.Second), r) {
			t.Errorf("r=%g: expired before deadline with zero beta", r)
		}
		if !ent.expiredAt(now.Add(100*time.Second), r) {
			t.Errorf("r=%g: not expired at deadline", r)
		}
	}
}

func TestNoEarlyExpiryOnDrawNearOne(t *testing.T) {
	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now.Add(120*time.Second))

	// r near 1 makes ln(1/r) vanish: no early window at all.
	if ent.expiredAt(now.Add(10*time.Second), 0.9999999) {
		t.Fatal("expired 110s early on a draw near 1")
	}
}

func TestEarlyExpiryOnSmallDraw(t *testing.T) {
	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now.Add(120*time.Second))

	// r = 1e-9 gives a window of 10s * ln(1e9) ~ 207s, well past the
	// 120s margin.
	if !ent.expiredAt(now, 1e-9) {
		t.Fatal("not expired on a near-zero draw with a huge window")
	}
}

func TestHardExpiryWinsOverDraw(t *testing.T) {
	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now)

	// At and past the deadline the draw must not matter, even one that
	// would produce a zero-width window.
	if !ent.expiredAt(now, 0.9999999) {
		t.Fatal("not expired at deadline")
	}
	if !ent.expiredAt(now.Add(time.Hour), 0.9999999) {
		t.Fatal("not expired an hour past deadline")
	}
}

func TestDecisionBoundary(t *testing.T) {
	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now.Add(10*time.Second))

	// The test fires iff delta*beta*ln(1/r) >= margin. With delta = margin
	// = 10s the boundary draw is r = e^-1; probe just either side of it.
	if ent.expiredAt(now, math.Exp(-0.999)) {
		t.Error("expired on a draw just below the boundary window")
	}
	if !ent.expiredAt(now, math.Exp(-1.001)) {
		t.Error("not expired on a draw just above the boundary window")
	}
}

func TestOpenUnitExcludesEndpoints(t *testing.T) {
	for i := 0; i < 100000; i++ {
		r := openUnit()
		if r <= 0 || r >= 1 {
			t.Fatalf("draw %g outside the open interval (0,1)", r)
		}
	}
}

//
// ================= STATISTICAL CASES =================
//

// sampleExpired runs the test n times at a fixed margin before expiry and
// returns the fraction of draws that reported expired.
func sampleExpired(t *testing.T, ent *Entry[int], now time.Time, n int) float64 {
	t.Helper()

	expired := 0
	for i := 0; i < n; i++ {
		if ent.expiredAt(now, openUnit()) {
			expired++
		}
	}
	return float64(expired) / float64(n)
}

func TestEarlyExpireProbability(t *testing.T) {
	const trials = 10000

	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now.Add(100*time.Second))

	// P(expired) = exp(-margin / (delta*beta)). With delta = 10s, beta = 1:
	cases := []struct {
		margin time.Duration
		want   float64
	}{
		{10 * time.Second, math.Exp(-1)}, // ~36.8%
		{20 * time.Second, math.Exp(-2)}, // ~13.5%
		{90 * time.Second, math.Exp(-9)}, // ~0.01%
	}

	for _, c := range cases {
		at := ent.Expiry().Add(-c.margin)
		got := sampleExpired(t, ent, at, trials)

		if math.Abs(got-c.want) > 0.05 {
			t.Errorf("margin %v: expired fraction %.4f, want %.4f +/- 0.05",
				c.margin, got, c.want)
		}
	}
}

func TestExpiredProbabilityMonotonic(t *testing.T) {
	const trials = 10000

	now := time.Now()
	ent := testEntry(10*time.Second, DefaultBeta, now.Add(100*time.Second))

	// As now approaches expiry the expired fraction must not decrease. The
	// chosen margins sit many standard deviations apart, so strict ordering
	// is safe at 10k trials.
	margins := []time.Duration{30 * time.Second, 20 * time.Second, 10 * time.Second, 0}

	prev := -1.0
	for _, m := range margins {
		got := sampleExpired(t, ent, ent.Expiry().Add(-m), trials)
		if got < prev {
			t.Fatalf("expired fraction fell from %.4f to %.4f at margin %v", prev, got, m)
		}
		prev = got
	}

	// At the deadline the test is certain, not merely likely.
	if prev != 1.0 {
		t.Fatalf("expired fraction at deadline = %.4f, want exactly 1", prev)
	}
}

func TestFreshEntryDoesNotExpire(t *testing.T) {
	ent, err := New(func() int { return 42 }).
		WithTTL(func(int) time.Duration { return time.Minute }).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// The compute above takes nanoseconds, so the early window is
	// vanishingly small next to the 60s margin.
	if ent.IsExpired() {
		t.Fatal("fresh entry reported expired")
	}
}
