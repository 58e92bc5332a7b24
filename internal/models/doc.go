// Package models defines the entities shared across the Pastify packages.
//
// The package contains two categories of types:
//
// 1. Catalog DTOs: lightweight structs mapped from Spotify API responses
//   - [Playlist] : playlist metadata shown in the picker, including the draft sentinel
//   - [ResolvedTrack] : the URI a pasted line resolved to
//   - [Artist] : an artist-hint suggestion
//
// 2. Outcome types
//   - [CommitResult] : counts for one resolve-and-commit run, with the no-op marker
//   - [Submission] : database-backed history record of a successful commit
package models
