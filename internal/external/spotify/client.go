// Package spotify реализует клиент каталога Spotify Web API.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"releasewatch/internal/model"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Значения по умолчанию
const (
	DefaultMarket      = "US"
	DefaultSearchLimit = 5
	DefaultTimeout     = 15 * time.Second
)

// Options задает параметры клиента каталога
type Options struct {
	// BaseURL переопределяет адрес API (используется в тестах), должен заканчиваться на "/"
	BaseURL     string
	Market      string
	SearchLimit int
	Timeout     time.Duration
	Transport   http.RoundTripper
}

// Client представляет клиент каталога Spotify
type Client struct {
	opts   Options
	logger *zap.Logger
	title  cases.Caser
}

// NewClient создает новый клиент каталога
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Market == "" {
		opts.Market = DefaultMarket
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{
		opts:   opts,
		logger: logger,
		title:  cases.Title(language.English),
	}
}

// createSpotifyClient создает новый Spotify клиент для каждого запроса
func (c *Client) createSpotifyClient(cred model.Credential) (*spotify.Client, *tokenTransport) {
	transport := &tokenTransport{
		base:          c.opts.Transport,
		authorization: cred.AuthorizationHeader(),
	}

	httpClient := &http.Client{
		Timeout:   c.opts.Timeout,
		Transport: transport,
	}

	var clientOpts []spotify.ClientOption
	if c.opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(c.opts.BaseURL))
	}

	return spotify.New(httpClient, clientOpts...), transport
}

// SearchArtists ищет артистов по имени; порядок соответствует ранжированию каталога
func (c *Client) SearchArtists(ctx context.Context, name string, cred model.Credential) ([]model.Candidate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ValidationError{Field: "name", Message: "is required"}
	}

	client, transport := c.createSpotifyClient(cred)

	c.logger.Debug("Searching catalog for artist", zap.String("query", name))

	result, err := client.Search(ctx, name, spotify.SearchTypeArtist,
		spotify.Limit(c.opts.SearchLimit),
		spotify.Market(c.opts.Market))
	if err != nil {
		return nil, fmt.Errorf("search artists %q: %w", name, classifyError(err, transport))
	}

	if result.Artists == nil {
		return []model.Candidate{}, nil
	}

	candidates := make([]model.Candidate, 0, len(result.Artists.Artists))
	for _, artist := range result.Artists.Artists {
		genres := make([]string, 0, len(artist.Genres))
		for _, genre := range artist.Genres {
			genres = append(genres, c.title.String(genre))
		}

		candidates = append(candidates, model.Candidate{
			ID:     string(artist.ID),
			Name:   artist.Name,
			Genres: genres,
		})
	}

	c.logger.Debug("Catalog search completed",
		zap.String("query", name),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}

// LatestRelease возвращает последний релиз указанного типа; отсутствие релизов дает пустой снимок
func (c *Client) LatestRelease(ctx context.Context, artistID string, kind model.ReleaseKind, cred model.Credential) (model.ReleaseSnapshot, error) {
	albumType, err := albumTypeFor(kind)
	if err != nil {
		return model.ReleaseSnapshot{}, err
	}

	client, transport := c.createSpotifyClient(cred)

	page, err := client.GetArtistAlbums(ctx, spotify.ID(artistID), []spotify.AlbumType{albumType},
		spotify.Limit(1),
		spotify.Offset(0),
		spotify.Market(c.opts.Market))
	if err != nil {
		return model.ReleaseSnapshot{}, fmt.Errorf("latest %s for %s: %w", kind, artistID, classifyError(err, transport))
	}

	if page == nil || len(page.Albums) == 0 {
		return model.EmptySnapshot(kind), nil
	}

	album := page.Albums[0]
	artists := make([]string, 0, len(album.Artists))
	for _, artist := range album.Artists {
		artists = append(artists, artist.Name)
	}

	return model.ReleaseSnapshot{
		Kind:        kind,
		Name:        album.Name,
		ReleaseDate: album.ReleaseDate,
		Artists:     artists,
	}, nil
}

func albumTypeFor(kind model.ReleaseKind) (spotify.AlbumType, error) {
	switch kind {
	case model.ReleaseKindAlbum:
		return spotify.AlbumTypeAlbum, nil
	case model.ReleaseKindSingle:
		return spotify.AlbumTypeSingle, nil
	default:
		return 0, fmt.Errorf("unsupported release kind %q", kind)
	}
}

// classifyError приводит ошибку каталога к ErrAuthExpired или LookupFailedError
func classifyError(err error, transport *tokenTransport) error {
	status, body := transport.failure()

	var apiErr spotify.Error
	var apiErrPtr *spotify.Error
	switch {
	case errors.As(err, &apiErr):
		if status == 0 {
			status = apiErr.Status
		}
		if body == "" {
			body = apiErr.Message
		}
	case errors.As(err, &apiErrPtr):
		if status == 0 {
			status = apiErrPtr.Status
		}
		if body == "" {
			body = apiErrPtr.Message
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", model.ErrAuthExpired, body)
	case status != 0:
		return &model.LookupFailedError{Status: status, Body: body}
	default:
		return err
	}
}
