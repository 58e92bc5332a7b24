package session

import (
	"context"
	"errors"
	"testing"

	"pastify/internal/models"
	"pastify/internal/services"
	"pastify/internal/shared"
	"pastify/internal/tasks"
)

type stubTokenStore struct {
	token string
}

func (s *stubTokenStore) Save(token string) error {
	s.token = token
	return nil
}

func (s *stubTokenStore) Load() (string, error) {
	if s.token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return s.token, nil
}

func (s *stubTokenStore) Clear() error {
	s.token = ""
	return nil
}

// stubCatalog scripts catalog responses for session tests. The release
// channel, when set, blocks OwnedPlaylists until closed so tests can
// interleave refreshes deterministically.
type stubCatalog struct {
	userID       string
	userErr      error
	playlists    []models.Playlist
	playlistsErr error
	started      chan struct{}
	release      chan struct{}
	fetchCount   int
}

func (s *stubCatalog) CurrentUserID(ctx context.Context) (string, error) {
	if s.userErr != nil {
		return "", s.userErr
	}
	return s.userID, nil
}

func (s *stubCatalog) OwnedPlaylists(ctx context.Context, userID string) ([]models.Playlist, error) {
	s.fetchCount++
	if s.release != nil {
		if s.started != nil {
			s.started <- struct{}{}
		}
		<-s.release
	}
	return s.playlists, s.playlistsErr
}

func (s *stubCatalog) PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error) {
	return nil, nil
}

func (s *stubCatalog) CreatePlaylist(ctx context.Context, name, userID string) (string, error) {
	return "", nil
}

func (s *stubCatalog) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	return nil
}

func (s *stubCatalog) SearchTrack(ctx context.Context, query string) (*models.ResolvedTrack, error) {
	return nil, nil
}

func (s *stubCatalog) SearchArtists(ctx context.Context, query string) ([]models.Artist, error) {
	return nil, nil
}

var _ services.Catalog = (*stubCatalog)(nil)

type stubEngine struct {
	result *models.CommitResult
	err    error
	userID string
}

func (s *stubEngine) ResolveAndCommit(ctx context.Context, req tasks.CommitRequest, progress chan<- tasks.ProgressUpdate) (*models.CommitResult, error) {
	s.userID = req.UserID
	return s.result, s.err
}

func newReadySession(t *testing.T, catalog *stubCatalog, engine *stubEngine) *Session {
	t.Helper()
	store := &stubTokenStore{token: "stored_token"}
	s := NewSession(store, catalog, engine, nil)
	if err := s.Startup(context.Background()); err != nil {
		t.Fatalf("startup failed: %v", err)
	}
	if s.Status() != StatusReady {
		t.Fatalf("expected ready after startup, got %s", s.Status())
	}
	return s
}

func TestStatus(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		for _, status := range []Status{StatusLoggedOut, StatusReady, StatusSubmitting, StatusSuccess, StatusError} {
			if !status.Valid() {
				t.Errorf("expected %s to be valid", status)
			}
		}
		if Status("banana").Valid() {
			t.Error("unknown status must be invalid")
		}
	})

	t.Run("Invalid Target Fails Loudly", func(t *testing.T) {
		s := NewSession(&stubTokenStore{}, &stubCatalog{}, &stubEngine{}, nil)
		err := s.transition(Status("banana"), "")
		if !errors.Is(err, shared.ErrInvalidStatus) {
			t.Errorf("expected ErrInvalidStatus, got %v", err)
		}
	})

	t.Run("Disallowed Edge Fails Loudly", func(t *testing.T) {
		s := NewSession(&stubTokenStore{}, &stubCatalog{}, &stubEngine{}, nil)
		// loggedOut -> submitting is not on the allow-list.
		err := s.transition(StatusSubmitting, "")
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestStartup(t *testing.T) {
	ctx := context.Background()

	t.Run("No Stored Credential Stays Logged Out", func(t *testing.T) {
		catalog := &stubCatalog{userID: "alice"}
		s := NewSession(&stubTokenStore{}, catalog, &stubEngine{}, nil)

		if err := s.Startup(ctx); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Status() != StatusLoggedOut {
			t.Errorf("expected loggedOut, got %s", s.Status())
		}
		if catalog.fetchCount != 0 {
			t.Error("no playlist fetch may happen while logged out")
		}
	})

	t.Run("Stored Credential Enters Ready And Refreshes", func(t *testing.T) {
		catalog := &stubCatalog{
			userID:    "alice",
			playlists: []models.Playlist{{ID: "pl1", Name: "Mine"}},
		}
		s := newReadySession(t, catalog, &stubEngine{})

		if s.UserID() != "alice" {
			t.Errorf("expected user 'alice', got %q", s.UserID())
		}
		if len(s.Playlists()) != 1 {
			t.Errorf("expected refreshed playlists, got %v", s.Playlists())
		}
	})

	t.Run("Expired Credential Drops To Logged Out", func(t *testing.T) {
		store := &stubTokenStore{token: "stale"}
		catalog := &stubCatalog{userErr: shared.ErrTokenExpired}
		s := NewSession(store, catalog, &stubEngine{}, nil)

		err := s.Startup(ctx)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
		if s.Status() != StatusLoggedOut {
			t.Errorf("expected loggedOut, got %s", s.Status())
		}
	})
}

func TestHandleLogin(t *testing.T) {
	store := &stubTokenStore{}
	catalog := &stubCatalog{userID: "alice"}
	s := NewSession(store, catalog, &stubEngine{}, nil)

	if err := s.HandleLogin(context.Background(), "fresh_token"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if store.token != "fresh_token" {
		t.Errorf("expected credential saved, got %q", store.token)
	}
	if s.Status() != StatusReady {
		t.Errorf("expected ready, got %s", s.Status())
	}
	if catalog.fetchCount != 1 {
		t.Errorf("expected one playlist refresh after login, got %d", catalog.fetchCount)
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	req := tasks.CommitRequest{Lines: []string{"A"}, Target: models.Playlist{ID: "pl1"}}

	t.Run("Success", func(t *testing.T) {
		catalog := &stubCatalog{userID: "alice"}
		engine := &stubEngine{result: &models.CommitResult{AddedCount: 2, TotalLines: 3}}
		s := newReadySession(t, catalog, engine)
		before := catalog.fetchCount

		result, err := s.Submit(ctx, req, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if s.Status() != StatusSuccess {
			t.Errorf("expected success, got %s", s.Status())
		}
		if s.Message() != "Added 2 of 3 tracks." {
			t.Errorf("unexpected message %q", s.Message())
		}
		if result.AddedCount != 2 {
			t.Errorf("unexpected result %+v", result)
		}
		if engine.userID != "alice" {
			t.Errorf("expected session user forwarded to engine, got %q", engine.userID)
		}
		if catalog.fetchCount != before+1 {
			t.Error("expected a playlist refresh after the commit")
		}
	})

	t.Run("No-Op Becomes Error State", func(t *testing.T) {
		engine := &stubEngine{result: &models.CommitResult{TotalLines: 2, NoOp: true}}
		s := newReadySession(t, &stubCatalog{userID: "alice"}, engine)

		if _, err := s.Submit(ctx, req, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if s.Status() != StatusError {
			t.Errorf("expected error state, got %s", s.Status())
		}
		if s.Message() != "No tracks were added." {
			t.Errorf("unexpected message %q", s.Message())
		}
	})

	t.Run("Engine Failure Becomes Error State", func(t *testing.T) {
		engine := &stubEngine{err: errors.New("boom")}
		s := newReadySession(t, &stubCatalog{userID: "alice"}, engine)

		if _, err := s.Submit(ctx, req, nil); err != nil {
			t.Fatalf("failures below the boundary must be absorbed, got %v", err)
		}
		if s.Status() != StatusError {
			t.Errorf("expected error state, got %s", s.Status())
		}
	})

	t.Run("Token Expiry Forces Logged Out", func(t *testing.T) {
		engine := &stubEngine{err: shared.ErrTokenExpired}
		s := newReadySession(t, &stubCatalog{userID: "alice"}, engine)

		if _, err := s.Submit(ctx, req, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Status() != StatusLoggedOut {
			t.Errorf("expected loggedOut, got %s", s.Status())
		}
		if s.UserID() != "" {
			t.Error("expected user cleared on logout")
		}
	})

	t.Run("Submit While Logged Out Is Rejected", func(t *testing.T) {
		s := NewSession(&stubTokenStore{}, &stubCatalog{}, &stubEngine{}, nil)

		_, err := s.Submit(ctx, req, nil)
		if !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestClearMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns To Ready Without Refresh", func(t *testing.T) {
		catalog := &stubCatalog{userID: "alice"}
		engine := &stubEngine{result: &models.CommitResult{AddedCount: 1, TotalLines: 1}}
		s := newReadySession(t, catalog, engine)

		if _, err := s.Submit(ctx, tasks.CommitRequest{Lines: []string{"A"}, Target: models.Playlist{ID: "pl1"}}, nil); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
		fetches := catalog.fetchCount

		if err := s.ClearMessage(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s.Status() != StatusReady {
			t.Errorf("expected ready, got %s", s.Status())
		}
		if s.Message() != "" {
			t.Errorf("expected message cleared, got %q", s.Message())
		}
		if catalog.fetchCount != fetches {
			t.Error("clearing a message must not refresh playlists")
		}
	})

	t.Run("Invalid From Ready", func(t *testing.T) {
		s := newReadySession(t, &stubCatalog{userID: "alice"}, &stubEngine{})

		if err := s.ClearMessage(); !errors.Is(err, shared.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestRefreshPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("Token Expiry During Refresh Forces Logged Out", func(t *testing.T) {
		catalog := &stubCatalog{userID: "alice"}
		s := newReadySession(t, catalog, &stubEngine{})

		catalog.playlistsErr = shared.ErrTokenExpired
		err := s.RefreshPlaylists(ctx)
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
		if s.Status() != StatusLoggedOut {
			t.Errorf("expected loggedOut, got %s", s.Status())
		}
	})

	t.Run("Stale Refresh Is Discarded", func(t *testing.T) {
		catalog := &stubCatalog{userID: "alice"}
		s := newReadySession(t, catalog, &stubEngine{})

		// First refresh blocks in flight while holding the old playlist view.
		stale := []models.Playlist{{ID: "old"}}
		catalog.playlists = stale
		catalog.started = make(chan struct{})
		catalog.release = make(chan struct{})

		done := make(chan error, 1)
		go func() { done <- s.RefreshPlaylists(ctx) }()
		<-catalog.started

		// A newer refresh starts and finishes first.
		fresh := []models.Playlist{{ID: "new"}}
		release := catalog.release
		catalog.started = nil
		catalog.release = nil
		catalog.playlists = fresh
		if err := s.RefreshPlaylists(ctx); err != nil {
			t.Fatalf("fresh refresh failed: %v", err)
		}

		// Let the stale refresh complete; its result must be discarded.
		catalog.playlists = stale
		close(release)
		if err := <-done; err != nil {
			t.Fatalf("stale refresh errored: %v", err)
		}

		got := s.Playlists()
		if len(got) != 1 || got[0].ID != "new" {
			t.Errorf("expected the newer refresh to win, got %v", got)
		}
	})
}
