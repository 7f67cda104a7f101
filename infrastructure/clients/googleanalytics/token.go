package googleanalytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"

	"github.com/golang-jwt/jwt"
	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	readonlyScope   = "https://www.googleapis.com/auth/analytics.readonly"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL    = time.Hour
	accessTokenTTL  = 3000 * time.Second
	tokenKeyPrefix  = "ga_access_token_"
	tokenBodyLimit  = 1 << 20
	tokenReqTimeout = 15 * time.Second
)

type tokenRequest struct {
	GrantType string `url:"grant_type"`
	Assertion string `url:"assertion"`
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// serviceAccountTokenSource exchanges a signed JWT assertion for an access
// token and keeps it in the transient cache per property.
type serviceAccountTokenSource struct {
	ctx        context.Context
	account    model.ServiceAccount
	propertyID string
	httpClient *http.Client
	cache      repository.ITransientCache
	now        func() time.Time
}

var _ oauth2.TokenSource = (*serviceAccountTokenSource)(nil)

func (s *serviceAccountTokenSource) cacheKey() string {
	return tokenKeyPrefix + s.propertyID
}

func (s *serviceAccountTokenSource) Token() (*oauth2.Token, error) {
	now := s.now()
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(s.ctx, s.cacheKey()); err == nil && ok {
			var cached model.AccessToken
			if json.Unmarshal(raw, &cached) == nil && cached.Valid(now) {
				return &oauth2.Token{AccessToken: cached.Token, TokenType: "Bearer", Expiry: cached.ExpiresAt}, nil
			}
		}
	}

	assertion, err := s.signAssertion(now)
	if err != nil {
		return nil, err
	}
	accessToken, err := s.exchange(assertion)
	if err != nil {
		return nil, err
	}

	tok := model.AccessToken{Token: accessToken, ExpiresAt: now.Add(accessTokenTTL)}
	if s.cache != nil {
		if raw, err := json.Marshal(tok); err == nil {
			if err := s.cache.Set(s.ctx, s.cacheKey(), raw, accessTokenTTL); err != nil {
				logger.GetLogger().WithField("error", err).Warn("Caching GA access token failed")
			}
		}
	}
	return &oauth2.Token{AccessToken: tok.Token, TokenType: "Bearer", Expiry: tok.ExpiresAt}, nil
}

func (s *serviceAccountTokenSource) signAssertion(now time.Time) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(s.account.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("parsing service account key: %w", err)
	}
	claims := jwt.MapClaims{
		"iss":   s.account.ClientEmail,
		"scope": readonlyScope,
		"aud":   s.account.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if s.account.PrivateKeyID != "" {
		token.Header["kid"] = s.account.PrivateKeyID
	}
	return token.SignedString(key)
}

func (s *serviceAccountTokenSource) exchange(assertion string) (string, error) {
	form, err := query.Values(tokenRequest{GrantType: jwtBearerGrant, Assertion: assertion})
	if err != nil {
		return "", err
	}
	tokenURL := s.account.TokenURI
	if tokenURL == "" {
		tokenURL = google.Endpoint.TokenURL
	}

	ctx, cancel := context.WithTimeout(s.ctx, tokenReqTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return "", &model.UpstreamError{Service: "google", Message: "token request failed: " + err.Error()}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, tokenBodyLimit))
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}

	var parsed tokenResponse
	_ = json.Unmarshal(body, &parsed)
	if parsed.AccessToken == "" {
		msg := parsed.ErrorDescription
		if msg == "" {
			msg = parsed.Error
		}
		if msg == "" {
			msg = "no access token in response"
		}
		return "", &model.UpstreamError{Service: "google", StatusCode: res.StatusCode, Message: msg}
	}
	return parsed.AccessToken, nil
}
