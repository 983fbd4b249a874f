// Package media obtains playable audio bytes for a selected candidate.
//
// Two strategies exist, mirroring the two delivery modes of the bot:
//
//   - [Fetcher.Preview] downloads the catalog's short preview clip over HTTP.
//   - [Fetcher.Extract] invokes an external extraction tool (yt-dlp by
//     default) against a best-effort "artist title" search expression,
//     collecting the produced audio file from an isolated temporary
//     directory.
//
// Extraction is the failure-handling core of the bot: a slow, untrusted
// external process runs under a strict wall-clock bound, and every possible
// outcome (file produced, nothing found, nonzero exit, deadline exceeded)
// is collapsed into one of the closed set of results: an [Audio] value, or
// an error wrapping exactly one of [shared.ErrTrackNotFound],
// [shared.ErrExtractionTimeout], or [shared.ErrUpstream]. The temporary
// working directory never outlives the call, on any exit path.
package media
