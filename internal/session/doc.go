// Package session implements the client's state machine.
//
// # States
//
// A session is in exactly one of loggedOut, ready, submitting, success, or
// error. Transitions are validated against an allow-list and unknown states
// or disallowed edges fail loudly rather than being silently coerced.
//
//	loggedOut → ready                    stored or freshly captured credential
//	ready     → submitting               user-initiated commit
//	submitting→ success | error          commit outcome (no-op counts as error)
//	success   → ready                    message acknowledged
//	error     → ready                    message acknowledged
//	any       → loggedOut                token expiry surfaced by the catalog
//
// # Playlist Refresh
//
// Every entry into ready that could follow a server-side change (startup,
// login, a finished commit) re-fetches the owned-playlist list. Acknowledging
// a stale message does not. Refreshes carry a generation counter and a stale
// refresh discards its result, so overlapping fetches never clobber newer
// data.
//
// # Error Absorption
//
// Submit absorbs every commit outcome into a state plus message; nothing
// below that boundary can crash the session. Token expiry is special: the
// catalog client has already cleared the credential, so the session just
// drops to loggedOut.
package session
