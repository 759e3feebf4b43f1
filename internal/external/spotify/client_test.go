package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"releasewatch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testCredential = model.Credential{AccessToken: "test-token", TokenType: "Bearer"}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Options{BaseURL: server.URL + "/v1/"}, zap.NewNop())
}

func TestClient_SearchArtists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "radiohead", r.URL.Query().Get("q"))
		assert.Equal(t, "artist", r.URL.Query().Get("type"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "US", r.URL.Query().Get("market"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"artists":{"items":[
			{"id":"4Z8W4fKeB5YxbusRsdQVPb","name":"Radiohead","genres":["art rock","alternative rock"]},
			{"id":"0fKbKsJd0hRLSbYuLnqAgD","name":"Radiohead Tribute Band","genres":[]}
		],"total":2}}`))
	})

	candidates, err := client.SearchArtists(context.Background(), "  radiohead ", testCredential)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, model.Candidate{
		ID:     "4Z8W4fKeB5YxbusRsdQVPb",
		Name:   "Radiohead",
		Genres: []string{"Art Rock", "Alternative Rock"},
	}, candidates[0])
	assert.Equal(t, "Radiohead Tribute Band", candidates[1].Name)
	assert.Empty(t, candidates[1].Genres)
}

func TestClient_SearchArtistsEmptyName(t *testing.T) {
	client := NewClient(Options{}, zap.NewNop())

	_, err := client.SearchArtists(context.Background(), " ", testCredential)
	var validationErr model.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestClient_LatestRelease(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/artists/artist-1/albums", r.URL.Path)
		assert.Equal(t, "single", r.URL.Query().Get("include_groups"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "US", r.URL.Query().Get("market"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":"x","name":"Oral","release_date":"2023-11-21",
			"artists":[{"id":"a","name":"Björk"},{"id":"b","name":"Rosalía"}]}],"total":1}`))
	})

	snapshot, err := client.LatestRelease(context.Background(), "artist-1", model.ReleaseKindSingle, testCredential)
	require.NoError(t, err)

	assert.Equal(t, model.ReleaseSnapshot{
		Kind:        model.ReleaseKindSingle,
		Name:        "Oral",
		ReleaseDate: "2023-11-21",
		Artists:     []string{"Björk", "Rosalía"},
	}, snapshot)
}

func TestClient_LatestReleaseNoItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "album", r.URL.Query().Get("include_groups"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[],"total":0}`))
	})

	snapshot, err := client.LatestRelease(context.Background(), "artist-1", model.ReleaseKindAlbum, testCredential)
	require.NoError(t, err)
	assert.True(t, snapshot.IsEmpty())
	assert.Equal(t, model.ReleaseKindAlbum, snapshot.Kind)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAuth   bool
		wantStatus int
	}{
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error":{"status":401,"message":"The access token expired"}}`,
			wantAuth: true,
		},
		{
			name:       "not found",
			status:     http.StatusNotFound,
			body:       `{"error":{"status":404,"message":"non existing id"}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "server error without json",
			status:     http.StatusBadGateway,
			body:       `bad gateway`,
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.LatestRelease(context.Background(), "artist-1", model.ReleaseKindAlbum, testCredential)
			require.Error(t, err)

			if tt.wantAuth {
				assert.ErrorIs(t, err, model.ErrAuthExpired)
				return
			}

			assert.False(t, errors.Is(err, model.ErrAuthExpired))
			var lookupErr *model.LookupFailedError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, tt.wantStatus, lookupErr.Status)
			assert.Contains(t, lookupErr.Body, tt.body)
		})
	}
}

func TestClient_UnsupportedKind(t *testing.T) {
	client := NewClient(Options{}, zap.NewNop())

	_, err := client.LatestRelease(context.Background(), "artist-1", model.ReleaseKind("compilation"), testCredential)
	assert.Error(t, err)
}
