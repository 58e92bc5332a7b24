// Package tasks orchestrates the resolve-and-commit pipeline.
//
// # Core Operation
//
// [ReconcileEngine.ResolveAndCommit] performs one run:
//
//  1. Appends the artist hint, when set, to every pasted line.
//  2. Resolves all lines concurrently through the catalog search, bounded by
//     an errgroup limit, collecting results into an index-addressed slice so
//     the final URI list preserves input order. Unresolved lines are dropped
//     silently.
//  3. Optionally filters URIs already present in an existing target playlist.
//  4. Creates the playlist first when the target is a draft, then issues a
//     single bulk add. Create-then-add is strictly sequential.
//
// An empty post-filter set is the normal "nothing to add" outcome and returns
// a no-op result without touching the server. Any catalog error aborts the
// run with no compensation: a playlist created before a failed add stays.
//
// # Progress Reporting
//
// Operations emit [ProgressUpdate] values on an optional channel. Updates use
// select with default so a slow consumer never blocks the run.
//
// # Submission History
//
// The optional [SubmissionRecorder] persists successful commits. Errors from
// the recorder are ignored so history can never disrupt a submission.
package tasks
