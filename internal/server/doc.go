// Package server provides HTTP routing, middleware, and the login token capture flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Implicit Grant Capture
//
// [ImplicitHandler] captures the access token from Spotify's implicit grant.
// Because the grant delivers the token in the redirect's URL fragment, the
// handler serves a /callback page that forwards the fragment as a query string
// to /token, where the state parameter is validated (CSRF protection) and the
// token is sent through a channel.
//
// Only one capture is processed to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the login command, a temporary HTTP server starts on the
// configured address, handles the redirect, and shuts down after delivering
// the token.
package server
