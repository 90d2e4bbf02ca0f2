// Package httputil provides HTTP utilities for the registry client.
//
// # Overview
//
//   - [Retry]: retry with exponential backoff for errors marked retryable
//   - [RangeReader]: an [io.ReaderAt] over HTTP range requests
//
// # Range reads
//
// [RangeReader] lets archive readers seek inside a remote file without
// downloading it. It fetches block-aligned ranges on demand and keeps the
// blocks it has seen, so reading a zip central directory and one entry
// costs a handful of small requests:
//
//	r, err := httputil.NewRangeReader(ctx, client, url, nil)
//	zr, err := zip.NewReader(r, r.Size())
//
// Servers answering a range request with the full body are rejected with
// [ErrRangeNotSupported] rather than silently downloading everything.
package httputil
