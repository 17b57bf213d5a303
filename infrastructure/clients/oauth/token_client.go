package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"
	"yt-analytics/domain/repository"
	"yt-analytics/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const (
	GrantRefreshToken      = "refresh_token"
	GrantAuthorizationCode = "authorization_code"
)

// Client posts grants to an OAuth 2.0 token endpoint
type Client struct {
	tokenURL   string
	httpClient *http.Client
}

// NewTokenClient creates a token endpoint client. A nil httpClient gets one with the given timeout.
func NewTokenClient(tokenURL string, httpClient *http.Client, timeout time.Duration) repository.ITokenExchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{tokenURL: tokenURL, httpClient: httpClient}
}

// ExchangeRefreshToken trades the stored refresh token for an access token
func (c *Client) ExchangeRefreshToken(ctx context.Context, cred model.Credential) (*oauth2.Token, error) {
	res, err := c.post(ctx, dto.TokenRequest{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		GrantType:    GrantRefreshToken,
		RefreshToken: cred.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	if res.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response has no access_token", model.ErrResponseShape)
	}
	return toToken(res, cred.RefreshToken), nil
}

// ExchangeAuthorizationCode trades a one-time authorization code for an access/refresh token pair
func (c *Client) ExchangeAuthorizationCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is empty", model.ErrConfiguration)
	}
	res, err := c.post(ctx, dto.TokenRequest{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantType:    GrantAuthorizationCode,
		Code:         code,
		RedirectURI:  redirectURI,
	})
	if err != nil {
		return nil, err
	}
	if res.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token response has no refresh_token (was consent granted with offline access?)", model.ErrResponseShape)
	}
	return toToken(res, res.RefreshToken), nil
}

func (c *Client) post(ctx context.Context, body dto.TokenRequest) (*dto.TokenResponse, error) {
	form, err := query.Values(body)
	if err != nil {
		return nil, fmt.Errorf("encode token request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request (%s): %w", body.GrantType, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.GetLogger().WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"grant":  body.GrantType,
		}).Error("Token exchange rejected")
		return nil, &model.UpstreamError{Endpoint: "oauth token", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var res dto.TokenResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("%w: decode token response: %v", model.ErrResponseShape, err)
	}
	return &res, nil
}

func toToken(res *dto.TokenResponse, refreshToken string) *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  res.AccessToken,
		RefreshToken: refreshToken,
		TokenType:    res.TokenType,
	}
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}
	if res.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(res.ExpiresIn) * time.Second)
	}
	return token
}
