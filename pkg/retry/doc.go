// Package retry provides opt-in retry with backoff for image fetches.
//
// A Config with MaxAttempts of 1 (the default) makes exactly one attempt
// and returns its error unchanged, so the first failure still ends a page.
// With more attempts, transport failures, 429 and 5xx responses are retried;
// a 404 never is, because it is the end-of-sequence signal.
//
//	cfg := retry.FromSettings(appCfg.Retry, log)
//	resp, err := retry.DoWithResult(ctx, func(ctx context.Context) (*http.Response, error) {
//		return client.Get(ctx, url)
//	}, cfg)
package retry
