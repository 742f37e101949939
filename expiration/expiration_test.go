package expiration_test

import (
	"testing"
	"time"

	"github.com/probcache/xfetch"
	"github.com/probcache/xfetch/expiration"
)

func entryWith(delta, ttl time.Duration) *xfetch.Entry[int] {
	return xfetch.New(func() int { return 1 }).
		WithDelta(func(int) time.Duration { return delta }).
		WithTTL(func(int) time.Duration { return ttl }).
		MustBuild()
}

func TestExactStrategy(t *testing.T) {
	var exact expiration.Exact[int]

	fresh := entryWith(10*time.Second, time.Hour)
	if exact.IsExpired(fresh, time.Now()) {
		t.Error("fresh entry reported expired")
	}
	// A large delta must not make the exact strategy volunteer early.
	if exact.IsExpired(fresh, fresh.Expiry().Add(-time.Second)) {
		t.Error("exact strategy expired an entry before its deadline")
	}

	dead := entryWith(0, -time.Second)
	if !exact.IsExpired(dead, time.Now()) {
		t.Error("past-deadline entry reported fresh")
	}
}

func TestProbabilisticStrategy(t *testing.T) {
	var prob expiration.Probabilistic[int]

	// Zero delta: behaves exactly like the deadline check.
	fresh := entryWith(0, time.Hour)
	if prob.IsExpired(fresh, time.Now()) {
		t.Error("zero-delta entry expired before its deadline")
	}

	dead := entryWith(0, -time.Second)
	if !prob.IsExpired(dead, time.Now()) {
		t.Error("past-deadline entry reported fresh")
	}

	// A delta that dwarfs the remaining margin makes an early volunteer
	// all but certain: P(not expired) = 1 - exp(-margin/delta) is ~3e-7
	// for 1s against 1000h.
	wide := entryWith(1000*time.Hour, time.Second)
	if !prob.IsExpired(wide, time.Now()) {
		t.Error("entry with an enormous early window did not volunteer")
	}
}
