// Package ratelimit paces outgoing image requests.
//
// Pacing is off by default: New(0, n) returns Unlimited, which never waits.
// A positive requests-per-second value yields a token bucket backed by
// golang.org/x/time/rate, shared by every page worker so the configured
// rate is global to the run.
//
//	limiter := ratelimit.New(2, 1)
//	if err := limiter.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
