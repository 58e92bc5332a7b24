package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"pastify/internal/server"
	"pastify/internal/shared"
)

// Login runs the implicit grant flow and activates the session.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// captures the access token from the redirect.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: catalog client not initialized, run 'pastify setup'", shared.ErrServiceUnavailable)
	}

	spotify := r.config.Credentials.Spotify
	if spotify.ClientID == "" {
		return fmt.Errorf("%w: Spotify client_id must be set in %s", shared.ErrMissingCredentials, r.configPath)
	}

	token, err := r.doImplicitAuth()
	if err != nil {
		return err
	}

	if err := r.session.HandleLogin(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlainln("✓ Logged in as %s", r.session.UserID())
	r.writePlain("Found %d playlists\n", len(r.session.Playlists()))

	return nil
}

// Logout discards the stored access token.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil {
		return fmt.Errorf("%w: token store not initialized, run 'pastify setup'", shared.ErrServiceUnavailable)
	}

	if err := r.tokens.Clear(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	return r.writePlain("✓ Logged out\n")
}

// AuthStatus checks the stored credential against the catalog.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.tokens == nil || r.catalog == nil {
		return fmt.Errorf("%w: token store not initialized, run 'pastify setup'", shared.ErrServiceUnavailable)
	}

	if _, err := r.tokens.Load(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("Not logged in. Run 'pastify auth login'.\n")
		}
		return fmt.Errorf("failed to load credential: %w", err)
	}

	userID, err := r.catalog.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			return r.writePlain("Session expired. Run 'pastify auth login'.\n")
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writePlain("✓ Logged in as %s\n", userID)
}

// doImplicitAuth executes the implicit grant flow with a local HTTP server.
func (r *Runner) doImplicitAuth() (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	spotify := r.config.Credentials.Spotify
	oauthConfig := server.NewImplicitConfig(spotify.ClientID, spotify.RedirectURI, strings.Fields(spotify.Scope))
	authURL := server.AuthorizeURL(oauthConfig, state)

	handler := server.NewImplicitHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting login server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify login...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.ImplicitResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return "", fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return "", fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == "" {
		return "", fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
