// Package registry answers whether a package exists in the scope's npm
// registry.
//
// The resolver consults a [deps.Registry] to tell in-scope library
// dependencies of source packages from vendor libraries. [Client] asks the
// registry over HTTP and caches answers on disk; [Fallback] chains it with
// the npm command line for machines without a configured token.
//
// # Status Handling
//
//	200           exists
//	404           does not exist
//	401, 403      ErrCodeUnauthorized
//	5xx, network  retried with backoff, then ErrCodeNetwork
package registry
