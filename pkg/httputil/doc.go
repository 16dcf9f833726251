// Package httputil provides the caching and retry plumbing of the registry
// client.
//
// [Cache] stores JSON values as files below a directory of a virtual
// filesystem, one file per key, and expires them after a TTL. Registry
// lookups are cached this way so that repeated installs do not query the
// registry for every library dependency again:
//
//	cache, err := httputil.NewCache(osfs.New(), dir, 24*time.Hour)
//	lookups := cache.Namespace("exists:")
//
// [Retry] re-runs an operation that failed with a [RetryableError], doubling
// the delay after each attempt. Network errors and 5xx responses are
// retryable; everything else is returned at once.
//
// The cache directory can be inspected with `lpm cache path` and emptied
// with `lpm cache clear`.
package httputil
