// Package integrations provides the shared HTTP client for package feed APIs.
//
// # Overview
//
// The registry client lives in a subpackage:
//
//   - [nuget]: NuGet V3 feeds and local folder feeds
//
// # Client Pattern
//
// [Client] gives every feed client the same behavior:
//   - default request headers (User-Agent, feed credentials)
//   - status mapping: 404 becomes [ErrNotFound], 5xx a retryable error
//   - cached JSON fetches through [cache.Cache] with a fixed TTL
//   - partial downloads through [httputil.RangeReader]
//
// Failures are not retried unless the caller opts in with
// [Client.SetAttempts]; resolution surfaces registry errors unchanged.
//
// [nuget]: github.com/matzehuels/nugraph/pkg/integrations/nuget
package integrations
