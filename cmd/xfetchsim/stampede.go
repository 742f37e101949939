package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/probcache/xfetch"
	"github.com/probcache/xfetch/cache"
	"github.com/probcache/xfetch/engine"
	"github.com/probcache/xfetch/expiration"
)

// slowLoader simulates an expensive backing resource: every load sleeps for
// a fixed cost and is counted.
type slowLoader struct {
	cost  time.Duration
	ttl   time.Duration
	loads atomic.Int64
}

func (l *slowLoader) Load(ctx context.Context, key string) (uint64, time.Duration, error) {
	l.loads.Add(1)
	time.Sleep(l.cost)
	return 42, l.ttl, nil
}

// simMetrics only tracks the counters the report prints.
type simMetrics struct {
	expired atomic.Int64
	early   atomic.Int64
}

func (m *simMetrics) Hit()         {}
func (m *simMetrics) Miss()        {}
func (m *simMetrics) Expire()      { m.expired.Add(1) }
func (m *simMetrics) EarlyExpire() { m.early.Add(1) }
func (m *simMetrics) Refresh()     {}

type simResult struct {
	gets     int64
	slowGets int64
	loads    int64
	expired  int64
	early    int64
}

func newStampedeCmd() *cobra.Command {
	var (
		workers  int
		ttl      time.Duration
		loadCost time.Duration
		runFor   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stampede",
		Short: "Hammer one hot key with and without early expiration",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("workers=%d ttl=%v load-cost=%v run-for=%v\n\n",
				workers, ttl, loadCost, runFor)

			exact := runStampede(expiration.Exact[uint64]{}, workers, ttl, loadCost, runFor)
			prob := runStampede(expiration.Probabilistic[uint64]{}, workers, ttl, loadCost, runFor)

			fmt.Println("strategy        gets   slow-gets   loads   expired   early")
			fmt.Println("-----------------------------------------------------------")
			printResult("exact", exact)
			printResult("probabilistic", prob)

			fmt.Println("\nslow-gets are reads that waited on a reload. The exact")
			fmt.Println("deadline check stalls every reader that arrives during the")
			fmt.Println("reload window; early volunteers refresh before the deadline,")
			fmt.Println("so other readers keep being served the still-valid value.")
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 50, "concurrent readers of the hot key")
	cmd.Flags().DurationVar(&ttl, "ttl", 400*time.Millisecond, "TTL of the hot key")
	cmd.Flags().DurationVar(&loadCost, "load-cost", 60*time.Millisecond, "simulated cost of one load")
	cmd.Flags().DurationVar(&runFor, "run-for", 4*time.Second, "simulation length")

	return cmd
}

func runStampede(
	strategy expiration.Strategy[uint64],
	workers int,
	ttl, loadCost, runFor time.Duration,
) simResult {

	loader := &slowLoader{cost: loadCost, ttl: ttl}
	metrics := &simMetrics{}

	eng := engine.NewCacheEngine[uint64](strategy, nil, loader, metrics)
	c := cache.NewShardedCache(1, xfetch.DefaultBeta, eng)

	ctx, cancel := context.WithTimeout(context.Background(), runFor)
	defer cancel()

	// Warm the key so every worker starts against a live entry.
	if _, err := c.Get(ctx, "hot"); err != nil {
		panic(err)
	}

	var (
		wg       sync.WaitGroup
		gets     atomic.Int64
		slowGets atomic.Int64
	)

	// A read that waits on the loader takes at least loadCost; everything
	// served from memory is orders of magnitude faster.
	slow := loadCost / 2

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				start := time.Now()
				if _, err := c.Get(ctx, "hot"); err != nil {
					continue
				}
				gets.Add(1)
				if time.Since(start) >= slow {
					slowGets.Add(1)
				}
				time.Sleep(time.Millisecond)
			}
		}()
	}

	wg.Wait()
	c.Close()

	return simResult{
		gets:     gets.Load(),
		slowGets: slowGets.Load(),
		loads:    loader.loads.Load(),
		expired:  metrics.expired.Load(),
		early:    metrics.early.Load(),
	}
}

func printResult(name string, r simResult) {
	fmt.Printf("%-13s %7d   %9d   %5d   %7d   %5d\n",
		name, r.gets, r.slowGets, r.loads, r.expired, r.early)
}
