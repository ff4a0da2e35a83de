// Package retry repeats operations that fail transiently, such as a click on
// the next-page control that lands while the page is still re-rendering.
//
// Only errors classified as retryable by pkg/errors are repeated; cancellation
// and every other failure end the loop at once.
//
//	cfg := retry.Attempts(3, time.Second, log)
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		return sess.Click(ctx, el)
//	}, cfg)
package retry
