package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"releasewatch/internal/model"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL адрес выдачи токенов Spotify
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// CredentialSource получает токен по Client Credentials Flow
type CredentialSource struct {
	config     clientcredentials.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewCredentialSource создает источник токенов; пустой tokenURL означает адрес Spotify
func NewCredentialSource(clientID, clientSecret, tokenURL string, timeout time.Duration, logger *zap.Logger) (*CredentialSource, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &CredentialSource{
		config: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Acquire запрашивает новый токен; токен не кешируется между запусками
func (s *CredentialSource) Acquire(ctx context.Context) (model.Credential, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)

	token, err := s.config.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return model.Credential{}, fmt.Errorf("failed to get token: %w", &model.LookupFailedError{
				Status: retrieveErr.Response.StatusCode,
				Body:   string(retrieveErr.Body),
			})
		}
		return model.Credential{}, fmt.Errorf("failed to get token: %w", err)
	}

	if token.AccessToken == "" {
		return model.Credential{}, fmt.Errorf("no access token received")
	}

	s.logger.Debug("Catalog credential acquired", zap.Time("expires_at", token.Expiry))

	return model.Credential{
		AccessToken: token.AccessToken,
		TokenType:   token.Type(),
	}, nil
}
