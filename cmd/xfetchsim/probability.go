package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"github.com/probcache/xfetch"
)

func newProbabilityCmd() *cobra.Command {
	var (
		delta   time.Duration
		ttl     time.Duration
		beta    float64
		step    time.Duration
		samples int
	)

	cmd := &cobra.Command{
		Use:   "probability",
		Short: "Sample one entry's expiration test over its lifetime",
		RunE: func(cmd *cobra.Command, args []string) error {
			ent, err := xfetch.New(func() uint64 { return 42 }).
				WithDelta(func(uint64) time.Duration { return delta }).
				WithTTL(func(uint64) time.Duration { return ttl }).
				WithBeta(beta).
				Build()
			if err != nil {
				return err
			}

			fmt.Printf("delta=%v ttl=%v beta=%g samples=%d\n\n", delta, ttl, beta, samples)
			fmt.Println("elapsed    margin      observed   predicted")
			fmt.Println("-------------------------------------------")

			start := time.Now()
			end := ent.Expiry().Add(2 * step)

			for time.Now().Before(end) {
				expired := 0
				for i := 0; i < samples; i++ {
					if ent.IsExpired() {
						expired++
					}
				}

				margin := time.Until(ent.Expiry())
				fmt.Printf("%7.1fs  %9s   %8.4f   %9.4f\n",
					time.Since(start).Seconds(),
					margin.Round(10*time.Millisecond),
					float64(expired)/float64(samples),
					predicted(margin, delta, beta),
				)

				time.Sleep(step)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&delta, "delta", 2*time.Second, "recomputation cost the entry reports")
	cmd.Flags().DurationVar(&ttl, "ttl", 10*time.Second, "time-to-live of the entry")
	cmd.Flags().Float64Var(&beta, "beta", xfetch.DefaultBeta, "early-expiration aggressiveness")
	cmd.Flags().DurationVar(&step, "step", 500*time.Millisecond, "sampling interval")
	cmd.Flags().IntVar(&samples, "samples", 2000, "draws per sampling point")

	return cmd
}

// predicted is the closed-form expiration probability at a given margin
// before the deadline: exp(-margin / (delta*beta)), and 1 past the deadline.
func predicted(margin, delta time.Duration, beta float64) float64 {
	if margin <= 0 {
		return 1
	}
	if delta <= 0 || beta <= 0 {
		return 0
	}
	return math.Exp(-margin.Seconds() / (delta.Seconds() * beta))
}
