package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pastify/internal/shared"
)

// memoryTokenStore is an in-memory TokenStore for tests.
type memoryTokenStore struct {
	token   string
	cleared bool
}

func (m *memoryTokenStore) Save(token string) error {
	m.token = token
	m.cleared = false
	return nil
}

func (m *memoryTokenStore) Load() (string, error) {
	if m.token == "" {
		return "", shared.ErrNotAuthenticated
	}
	return m.token, nil
}

func (m *memoryTokenStore) Clear() error {
	m.token = ""
	m.cleared = true
	return nil
}

func newTestClient(t *testing.T, handler http.Handler) (*SpotifyClient, *memoryTokenStore, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store := &memoryTokenStore{token: "test_token"}
	client := NewSpotifyClient(store, server.Client())
	client.SetBaseURL(server.URL)
	return client, store, server
}

func intPtr(v int) *int { return &v }

func TestSpotifyClient(t *testing.T) {
	ctx := context.Background()

	t.Run("CurrentUserID", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("expected /me, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("expected bearer header, got %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "alice"})
		}))

		id, err := client.CurrentUserID(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "alice" {
			t.Errorf("expected user id 'alice', got %s", id)
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request should be issued without a credential")
		}))
		store.token = ""

		_, err := client.CurrentUserID(ctx)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Unauthorized Clears Credential", func(t *testing.T) {
		operations := map[string]func(*SpotifyClient) error{
			"CurrentUserID": func(c *SpotifyClient) error {
				_, err := c.CurrentUserID(ctx)
				return err
			},
			"OwnedPlaylists": func(c *SpotifyClient) error {
				_, err := c.OwnedPlaylists(ctx, "alice")
				return err
			},
			"PlaylistTrackURIs": func(c *SpotifyClient) error {
				_, err := c.PlaylistTrackURIs(ctx, "pl1")
				return err
			},
			"CreatePlaylist": func(c *SpotifyClient) error {
				_, err := c.CreatePlaylist(ctx, "Road Trip", "alice")
				return err
			},
			"AddTracks": func(c *SpotifyClient) error {
				return c.AddTracks(ctx, "pl1", []string{"spotify:track:1"})
			},
			"SearchTrack": func(c *SpotifyClient) error {
				_, err := c.SearchTrack(ctx, "query")
				return err
			},
			"SearchArtists": func(c *SpotifyClient) error {
				_, err := c.SearchArtists(ctx, "query")
				return err
			},
		}

		for name, op := range operations {
			t.Run(name, func(t *testing.T) {
				client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusUnauthorized)
				}))

				err := op(client)
				if !errors.Is(err, shared.ErrTokenExpired) {
					t.Errorf("expected ErrTokenExpired, got %v", err)
				}
				if !store.cleared {
					t.Error("expected credential to be cleared on 401")
				}
			})
		}
	})

	t.Run("OwnedPlaylists", func(t *testing.T) {
		t.Run("Filters By Owner And Follows Pagination", func(t *testing.T) {
			var server *httptest.Server
			mux := http.NewServeMux()
			mux.HandleFunc("/me/playlists", func(w http.ResponseWriter, r *http.Request) {
				next := server.URL + "/page2"
				json.NewEncoder(w).Encode(SpotifyPaginatedPlaylists{
					Items: []SpotifySimplePlaylist{
						{ID: "pl1", Name: "Mine", Owner: owner{ID: "alice"}, Tracks: playlistTracksField{Total: 3}},
						{ID: "pl2", Name: "Theirs", Owner: owner{ID: "bob"}},
					},
					Next: &next,
				})
			})
			mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(SpotifyPaginatedPlaylists{
					Items: []SpotifySimplePlaylist{
						{ID: "pl3", Name: "Mine Too", Owner: owner{ID: "alice"}, Tracks: playlistTracksField{Total: 7}},
					},
				})
			})

			client, _, srv := newTestClient(t, mux)
			server = srv

			playlists, err := client.OwnedPlaylists(ctx, "alice")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(playlists) != 2 {
				t.Fatalf("expected 2 owned playlists, got %d", len(playlists))
			}
			if playlists[0].ID != "pl1" || playlists[1].ID != "pl3" {
				t.Errorf("unexpected playlist ids: %s, %s", playlists[0].ID, playlists[1].ID)
			}
			if playlists[1].TrackCount != 7 {
				t.Errorf("expected track count 7, got %d", playlists[1].TrackCount)
			}
		})

		t.Run("Thumbnail Selection", func(t *testing.T) {
			tests := []struct {
				name   string
				images []SpotifyImage
				want   string
			}{
				{"width 60", []SpotifyImage{{URL: "wide.jpg", Width: intPtr(640)}, {URL: "thumb.jpg", Width: intPtr(60)}}, "thumb.jpg"},
				{"no declared width", []SpotifyImage{{URL: "any.jpg"}}, "any.jpg"},
				{"no suitable image", []SpotifyImage{{URL: "wide.jpg", Width: intPtr(640)}}, DefaultPlaylistImage},
				{"empty list", nil, DefaultPlaylistImage},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					if got := pickThumbnail(tt.images); got != tt.want {
						t.Errorf("expected %q, got %q", tt.want, got)
					}
				})
			}
		})
	})

	t.Run("PlaylistTrackURIs", func(t *testing.T) {
		var server *httptest.Server
		mux := http.NewServeMux()
		mux.HandleFunc("/playlists/pl1/tracks", func(w http.ResponseWriter, r *http.Request) {
			next := server.URL + "/tracks2"
			fmt.Fprintf(w, `{"items":[{"track":{"uri":"spotify:track:1"}},{"track":{"uri":"spotify:track:2"}}],"next":%q}`, next)
		})
		mux.HandleFunc("/tracks2", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items":[{"track":{"uri":"spotify:track:3"}}],"next":null}`)
		})

		client, _, srv := newTestClient(t, mux)
		server = srv

		uris, err := client.PlaylistTrackURIs(ctx, "pl1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := []string{"spotify:track:1", "spotify:track:2", "spotify:track:3"}
		if len(uris) != len(want) {
			t.Fatalf("expected %d uris, got %d", len(want), len(uris))
		}
		for i, uri := range want {
			if uris[i] != uri {
				t.Errorf("expected uri %q at %d, got %q", uri, i, uris[i])
			}
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if r.URL.Path != "/users/alice/playlists" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}

			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body["name"] != "Road Trip" {
				t.Errorf("expected playlist name 'Road Trip', got %q", body["name"])
			}

			json.NewEncoder(w).Encode(map[string]string{"id": "created123"})
		}))

		id, err := client.CreatePlaylist(ctx, "Road Trip", "alice")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if id != "created123" {
			t.Errorf("expected id 'created123', got %s", id)
		}
	})

	t.Run("AddTracks", func(t *testing.T) {
		var gotURIs string
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			gotURIs = r.URL.Query().Get("uris")
			w.WriteHeader(http.StatusCreated)
		}))

		err := client.AddTracks(ctx, "pl1", []string{"spotify:track:1", "spotify:track:2"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotURIs != "spotify:track:1,spotify:track:2" {
			t.Errorf("expected comma-joined uris, got %q", gotURIs)
		}
	})

	t.Run("SearchTrack", func(t *testing.T) {
		t.Run("Top Hit", func(t *testing.T) {
			client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("type"); got != "track" {
					t.Errorf("expected type=track, got %q", got)
				}
				fmt.Fprint(w, `{"tracks":{"items":[{"type":"track","uri":"spotify:track:top"},{"type":"track","uri":"spotify:track:second"}],"total":2}}`)
			}))

			track, err := client.SearchTrack(ctx, "JID GENERAL")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track == nil || track.URI != "spotify:track:top" {
				t.Errorf("expected top hit, got %+v", track)
			}
		})

		t.Run("No Results", func(t *testing.T) {
			client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks":{"items":[],"total":0}}`)
			}))

			track, err := client.SearchTrack(ctx, "nonsense line")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track != nil {
				t.Errorf("expected nil for no results, got %+v", track)
			}
		})

		t.Run("Top Hit Not A Track", func(t *testing.T) {
			client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks":{"items":[{"type":"episode","uri":"spotify:episode:x"}],"total":1}}`)
			}))

			track, err := client.SearchTrack(ctx, "some podcast")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if track != nil {
				t.Errorf("expected nil for non-track hit, got %+v", track)
			}
		})
	})

	t.Run("SearchArtists", func(t *testing.T) {
		client, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "10" {
				t.Errorf("expected limit=10, got %q", got)
			}
			fmt.Fprint(w, `{"artists":{"items":[{"id":"a1","name":"Kendrick Lamar"},{"id":"a2","name":"Kendrick Scott"}]}}`)
		}))

		artists, err := client.SearchArtists(ctx, "kendrick")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if artists[0].Name != "Kendrick Lamar" {
			t.Errorf("unexpected first artist: %+v", artists[0])
		}
	})

	t.Run("API Error Status", func(t *testing.T) {
		client, store, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.CurrentUserID(ctx)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if store.cleared {
			t.Error("non-401 errors must not clear the credential")
		}
	})

	t.Run("Catalog Interface", func(t *testing.T) {
		var _ Catalog = NewSpotifyClient(&memoryTokenStore{}, nil)
	})
}
