package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"pastify/internal/models"
	"pastify/internal/services"
	"pastify/internal/shared"
	"pastify/internal/tasks"
)

// Status enumerates the session states.
type Status string

const (
	StatusLoggedOut  Status = "loggedOut"
	StatusReady      Status = "ready"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// allowedStatus is the set of valid states. Anything else fails loudly.
var allowedStatus = map[Status]struct{}{
	StatusLoggedOut:  {},
	StatusReady:      {},
	StatusSubmitting: {},
	StatusSuccess:    {},
	StatusError:      {},
}

// allowedTransitions is the edge allow-list. A token expiry may force
// loggedOut from any state, so loggedOut is reachable from everywhere.
var allowedTransitions = map[Status][]Status{
	StatusLoggedOut:  {StatusReady, StatusLoggedOut},
	StatusReady:      {StatusSubmitting, StatusLoggedOut},
	StatusSubmitting: {StatusSuccess, StatusError, StatusLoggedOut},
	StatusSuccess:    {StatusReady, StatusLoggedOut},
	StatusError:      {StatusReady, StatusLoggedOut},
}

// Valid reports whether the status is a known state.
func (s Status) Valid() bool {
	_, ok := allowedStatus[s]
	return ok
}

func (s Status) canTransitionTo(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Session owns the mutable client state: the current status with its message,
// the authenticated user, and the owned-playlist list.
//
// All remote data flows through the catalog client; the session only decides
// when calls are valid and how outcomes map to states.
type Session struct {
	mu        sync.Mutex
	status    Status
	message   string
	userID    string
	playlists []models.Playlist

	tokens  services.TokenStore
	catalog services.Catalog
	engine  tasks.Reconciler
	logger  *log.Logger

	// refreshGen tags each playlist refresh; a refresh that finishes after a
	// newer one started discards its result instead of clobbering fresh data.
	refreshGen uint64
}

// NewSession creates a logged-out session.
func NewSession(tokens services.TokenStore, catalog services.Catalog, engine tasks.Reconciler, logger *log.Logger) *Session {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Session{
		status:  StatusLoggedOut,
		tokens:  tokens,
		catalog: catalog,
		engine:  engine,
		logger:  logger,
	}
}

// Status returns the current state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Message returns the message attached to a success or error state.
func (s *Session) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// UserID returns the authenticated user's id, empty when logged out.
func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Playlists returns the most recently fetched owned-playlist list.
func (s *Session) Playlists() []models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playlists
}

// transition moves the session to a new status, enforcing the allow-list.
func (s *Session) transition(to Status, message string) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %q", shared.ErrInvalidStatus, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status.canTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", shared.ErrInvalidTransition, s.status, to)
	}

	s.status = to
	s.message = message
	return nil
}

// forceLoggedOut drops the session to loggedOut. Valid from any state.
func (s *Session) forceLoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusLoggedOut
	s.message = ""
	s.userID = ""
	s.playlists = nil
}

// Startup restores the session from a stored credential.
//
// A stored token moves the session to ready and refreshes the playlist list;
// absence leaves it logged out. An expired token surfaces as loggedOut because
// the catalog client clears it on the first 401.
func (s *Session) Startup(ctx context.Context) error {
	if _, err := s.tokens.Load(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil
		}
		return err
	}

	return s.activate(ctx)
}

// HandleLogin consumes the access token from the external login callback.
func (s *Session) HandleLogin(ctx context.Context, token string) error {
	if err := s.tokens.Save(token); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}

	return s.activate(ctx)
}

// activate resolves the current user and enters ready with fresh playlists.
func (s *Session) activate(ctx context.Context) error {
	userID, err := s.catalog.CurrentUserID(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			s.forceLoggedOut()
			return err
		}
		return err
	}

	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	if err := s.transition(StatusReady, ""); err != nil {
		return err
	}

	return s.RefreshPlaylists(ctx)
}

// RefreshPlaylists re-fetches the owned-playlist list.
//
// Refreshes are tagged with a generation counter; a stale refresh discards
// its result so overlapping fetches cannot reorder state.
func (s *Session) RefreshPlaylists(ctx context.Context) error {
	s.mu.Lock()
	s.refreshGen++
	gen := s.refreshGen
	userID := s.userID
	s.mu.Unlock()

	playlists, err := s.catalog.OwnedPlaylists(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrTokenExpired) {
			s.forceLoggedOut()
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.refreshGen {
		s.logger.Debug("discarding stale playlist refresh", "generation", gen)
		return nil
	}
	s.playlists = playlists
	return nil
}

// Submit runs one resolve-and-commit and maps the outcome onto the state machine.
//
// The returned error is nil for every outcome the session absorbed, including
// failed commits; only state-machine misuse (submitting while not ready)
// returns an error to the caller.
func (s *Session) Submit(ctx context.Context, req tasks.CommitRequest, progress chan<- tasks.ProgressUpdate) (*models.CommitResult, error) {
	if err := s.transition(StatusSubmitting, ""); err != nil {
		return nil, err
	}

	if req.UserID == "" {
		req.UserID = s.UserID()
	}

	result, err := s.engine.ResolveAndCommit(ctx, req, progress)

	switch {
	case err != nil && errors.Is(err, shared.ErrTokenExpired):
		s.forceLoggedOut()
		return nil, nil
	case err != nil:
		s.logger.Error("commit failed", "error", err)
		if terr := s.transition(StatusError, "Something went wrong, please try again."); terr != nil {
			return nil, terr
		}
	case result.NoOp:
		if terr := s.transition(StatusError, "No tracks were added."); terr != nil {
			return nil, terr
		}
	default:
		message := fmt.Sprintf("Added %d of %d tracks.", result.AddedCount, result.TotalLines)
		if terr := s.transition(StatusSuccess, message); terr != nil {
			return nil, terr
		}
	}

	// Reflect server-side changes (new playlist, changed counts) regardless
	// of how the commit went.
	if refreshErr := s.RefreshPlaylists(ctx); refreshErr != nil {
		s.logger.Warn("playlist refresh after commit failed", "error", refreshErr)
	}

	return result, nil
}

// ClearMessage acknowledges a success or error message and returns to ready.
//
// This is the one path into ready that skips the playlist refresh: clearing a
// stale message changes nothing server-side.
func (s *Session) ClearMessage() error {
	return s.transition(StatusReady, "")
}
