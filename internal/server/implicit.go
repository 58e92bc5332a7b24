package server

import (
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

const spotifyAuthURL = "https://accounts.spotify.com/authorize"

// NewImplicitConfig builds the OAuth2 config for the implicit grant.
// No client secret or token endpoint is involved; the access token comes
// straight back on the redirect.
func NewImplicitConfig(clientID, redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: spotifyAuthURL},
	}
}

// AuthorizeURL builds the authorization URL for the implicit grant flow.
func AuthorizeURL(config *oauth2.Config, state string) string {
	return config.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))
}

// ImplicitResult contains the result of an implicit-grant authorization flow.
type ImplicitResult struct {
	Token string
	err   error
}

func (r *ImplicitResult) Error() error {
	return r.err
}

// ImplicitHandler captures the access token delivered by the implicit grant.
// Implements the Handler interface for registration with a Router.
//
// The grant returns the token in the redirect's URL fragment, which never
// reaches the server. The handler therefore serves two routes: /callback
// renders a small page that copies the fragment into a query string and
// forwards the browser to /token, where the token is actually captured.
type ImplicitHandler struct {
	state      string
	resultChan chan ImplicitResult
	once       sync.Once
	captureHit bool
	mu         sync.Mutex
}

// NewImplicitHandler creates a handler expecting the given state token.
// The state token should be cryptographically random for CSRF protection.
func NewImplicitHandler(state string) *ImplicitHandler {
	return &ImplicitHandler{
		state:      state,
		resultChan: make(chan ImplicitResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *ImplicitHandler) Routes() []string {
	return []string{"/callback", "/token"}
}

// ServeHTTP dispatches between the fragment-forwarding page and token capture.
func (h *ImplicitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/callback":
		h.serveForwardPage(w)
	case "/token":
		h.captureToken(w, r)
	default:
		http.NotFound(w, r)
	}
}

// serveForwardPage renders the page that moves the URL fragment server-side.
func (h *ImplicitHandler) serveForwardPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Signing in...</title>
</head>
<body>
    <p>Completing sign-in...</p>
    <script>
        var fragment = window.location.hash.slice(1);
        var query = fragment !== "" ? fragment : window.location.search.slice(1);
        window.location.replace("/token?" + query);
    </script>
</body>
</html>
`)
}

// captureToken validates the state parameter and captures the access token.
//
// Only the first capture is processed; the result is sent through the result
// channel exactly once.
func (h *ImplicitHandler) captureToken(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.captureHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.captureHit = true
	h.mu.Unlock()

	state := r.URL.Query().Get("state")
	if state != h.state {
		err := fmt.Errorf("invalid state parameter")
		h.Send(ImplicitResult{err: err})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("access_token")
	if token == "" {
		errParam := r.URL.Query().Get("error")
		err := fmt.Errorf("authorization failed: %s", errParam)
		h.Send(ImplicitResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	h.Send(ImplicitResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Authorization Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`)
}

// Send sends the result through the channel (only once).
func (h *ImplicitHandler) Send(result ImplicitResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *ImplicitHandler) Result() <-chan ImplicitResult {
	return h.resultChan
}
