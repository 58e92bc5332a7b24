// Package repositories provides sqlite-backed persistence.
//
// [TokenRepository] is the Go analog of the browser-local key/value store the
// web client kept its bearer token in: a single row under a fixed key,
// replaced on login and deleted on logout or expiry.
//
// [SubmissionRepository] records each successful commit so past runs can be
// listed from the CLI.
package repositories
