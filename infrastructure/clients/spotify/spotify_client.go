package spotify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	requestTimeout = 15 * time.Second
	tokenKeyPrefix = "spotify_access_token_"
	// MaxPageSize is the largest page the episodes endpoint accepts.
	MaxPageSize = 50
)

type Config struct {
	TokenURL   string
	APIBaseURL string
	Market     string
}

type episodesQuery struct {
	Limit  int    `url:"limit"`
	Offset int    `url:"offset"`
	Market string `url:"market,omitempty"`
}

type apiError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client fetches show episodes with an app-only client-credentials token.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      repository.ITransientCache
	now        func() time.Time

	mu     sync.Mutex
	tokens map[string]model.AccessToken
}

func NewSpotifyClient(config Config, httpClient *http.Client, cache repository.ITransientCache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: requestTimeout}
	}
	return &Client{
		config:     config,
		httpClient: httpClient,
		cache:      cache,
		now:        time.Now,
		tokens:     make(map[string]model.AccessToken),
	}
}

var _ repository.ISpotifyAPI = (*Client)(nil)

func (c *Client) GetShowEpisodes(ctx context.Context, creds model.SpotifyCredentials, showID string, limit, offset int) (*model.EpisodePage, error) {
	token, err := c.accessToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	q, err := query.Values(episodesQuery{Limit: limit, Offset: offset, Market: c.config.Market})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/shows/%s/episodes?%s", strings.TrimRight(c.config.APIBaseURL, "/"), url.PathEscape(showID), q.Encode())

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &model.UpstreamError{Service: "spotify", Message: err.Error()}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading spotify response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if res.StatusCode == http.StatusUnauthorized {
			c.forgetToken(ctx, creds)
		}
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, &model.UpstreamError{Service: "spotify", StatusCode: res.StatusCode, Message: msg}
	}

	var page model.EpisodePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &model.UpstreamError{Service: "spotify", StatusCode: res.StatusCode, Message: "invalid response body: " + err.Error()}
	}
	return &page, nil
}

// accessToken returns a live token from memory, then the transient cache, then the token endpoint.
func (c *Client) accessToken(ctx context.Context, creds model.SpotifyCredentials) (string, error) {
	fingerprint := credentialFingerprint(creds)
	now := c.now()

	c.mu.Lock()
	if tok, ok := c.tokens[fingerprint]; ok && tok.Valid(now) {
		c.mu.Unlock()
		return tok.Token, nil
	}
	c.mu.Unlock()

	if c.cache != nil {
		if raw, ok, err := c.cache.Get(ctx, tokenKeyPrefix+fingerprint); err == nil && ok {
			var tok model.AccessToken
			if json.Unmarshal(raw, &tok) == nil && tok.Valid(now) {
				c.remember(fingerprint, tok)
				return tok.Token, nil
			}
		}
	}

	cc := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     c.config.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	oauthToken, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Spotify token request failed")
		return "", &model.UpstreamError{Service: "spotify", Message: "token request failed: " + err.Error()}
	}

	tok := model.AccessToken{Token: oauthToken.AccessToken, ExpiresAt: oauthToken.Expiry}
	if tok.ExpiresAt.IsZero() {
		tok.ExpiresAt = now.Add(time.Hour)
	}
	c.remember(fingerprint, tok)
	if c.cache != nil {
		if raw, err := json.Marshal(tok); err == nil {
			if ttl := tok.ExpiresAt.Sub(now); ttl > 0 {
				if err := c.cache.Set(ctx, tokenKeyPrefix+fingerprint, raw, ttl); err != nil {
					logger.GetLogger().WithField("error", err).Warn("Caching Spotify token failed")
				}
			}
		}
	}
	return tok.Token, nil
}

func (c *Client) remember(fingerprint string, tok model.AccessToken) {
	c.mu.Lock()
	// Only one credential pair is in use at a time; older tokens are dropped.
	c.tokens = map[string]model.AccessToken{fingerprint: tok}
	c.mu.Unlock()
}

func (c *Client) forgetToken(ctx context.Context, creds model.SpotifyCredentials) {
	fingerprint := credentialFingerprint(creds)
	c.mu.Lock()
	delete(c.tokens, fingerprint)
	c.mu.Unlock()
	if c.cache != nil {
		_ = c.cache.Delete(ctx, tokenKeyPrefix+fingerprint)
	}
}

func credentialFingerprint(creds model.SpotifyCredentials) string {
	sum := sha256.Sum256([]byte(creds.ClientID + ":" + creds.ClientSecret))
	return hex.EncodeToString(sum[:8])
}
