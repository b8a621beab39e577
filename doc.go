// Package requesty is a small HTTP client for JSON and text APIs that live
// under one base URL:
//
//   - Verb methods (Get, Post, Put, Patch, Delete) with route segments and
//     query parameters composed onto the path
//   - Default headers merged with per-call headers
//   - A per-attempt timeout and retries on 5xx responses and network errors
//   - Single-slot request and response interceptors whose failures never
//     change the outcome of a call
//   - Uniform results: every outcome, including failures, is a *Result
//   - Prometheus metrics and logrus-backed debug narration
//
// Typical usage:
//
//	client := requesty.New("https://api.example.com",
//	    requesty.WithRetry(2),
//	    requesty.WithTimeout(3*time.Second),
//	    requesty.WithHeader("Authorization", "Bearer "+token),
//	)
//	res := client.Get(ctx, "items", &requesty.CallConfig{
//	    Route: []any{5},
//	    Query: requesty.Params{"limit": 3},
//	})
//	if res.Error {
//	    log.Println(res.Status, res.Message, res.Err)
//	}
//
// Timeouts and cancellation end a call immediately; only 5xx responses and
// network errors are retried, and retries are immediate unless a backoff is
// configured with WithRetryBackoff.
package requesty
