package retry

import (
	"context"
	"math/rand"
	"time"

	"pagescraper/pkg/config"
)

// Strategy names accepted by retry.strategy
const (
	StrategyExponential = "exponential"
	StrategyConstant    = "constant"
)

// BackoffStrategy returns the pause after the given failed attempt, counted from 1
type BackoffStrategy interface {
	NextDelay(failed int) time.Duration
}

// Exponential multiplies the pause by Factor after each failure, up to Cap,
// and spreads the result by ±Jitter of itself
type Exponential struct {
	Initial time.Duration
	Cap     time.Duration
	Factor  float64
	Jitter  float64
}

func (e Exponential) NextDelay(failed int) time.Duration {
	if failed < 1 {
		return 0
	}

	factor := max(e.Factor, 1)
	d := float64(e.Initial)
	for i := 1; i < failed; i++ {
		d *= factor
		if e.Cap > 0 && d >= float64(e.Cap) {
			break
		}
	}
	if e.Cap > 0 && d > float64(e.Cap) {
		d = float64(e.Cap)
	}
	return spread(time.Duration(d), e.Jitter)
}

// Constant waits Interval after every failure
type Constant struct {
	Interval time.Duration
}

func (c Constant) NextDelay(failed int) time.Duration {
	if failed < 1 {
		return 0
	}
	return c.Interval
}

// NewBackoff builds the strategy named in the retry settings. An empty name
// means exponential. The constant strategy waits initial_backoff every time.
func NewBackoff(s config.RetryConfig) BackoffStrategy {
	if s.Strategy == StrategyConstant {
		return Constant{Interval: s.InitialBackoff}
	}
	return Exponential{
		Initial: s.InitialBackoff,
		Cap:     s.MaxBackoff,
		Factor:  s.Multiplier,
		Jitter:  0.1,
	}
}

func spread(d time.Duration, jitter float64) time.Duration {
	if jitter <= 0 || d <= 0 {
		return d
	}
	offset := (rand.Float64()*2 - 1) * jitter * float64(d)
	return max(d+time.Duration(offset), 0)
}

// Wait sleeps for delay unless ctx ends first
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
