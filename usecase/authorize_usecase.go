package usecase

import (
	"context"
	"fmt"
	"time"

	"yt-analytics/domain/model"
	"yt-analytics/domain/repository"
	"yt-analytics/infrastructure/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
	"google.golang.org/api/youtubeanalytics/v2"
)

// AuthorizationScopes are the read-only scopes the snapshot pipeline needs.
var AuthorizationScopes = []string{
	youtubeanalytics.YtAnalyticsReadonlyScope,
	youtube.YoutubeReadonlyScope,
}

// IAuthorizeUsecase mints a refresh token through the authorization-code grant
type IAuthorizeUsecase interface {
	AuthCodeURL(redirectURI string) (string, error)
	VerifyState(state string) error
	ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
}

// AuthorizeUsecase implements IAuthorizeUsecase
type AuthorizeUsecase struct {
	clientID     string
	clientSecret string
	authURL      string
	tokens       repository.ITokenExchanger
	signingKey   []byte
	now          func() time.Time
}

// NewAuthorizeUsecase creates the authorization helper use case. An empty authURL means Google's.
func NewAuthorizeUsecase(clientID, clientSecret, authURL string, tokens repository.ITokenExchanger, signingKey []byte) (*AuthorizeUsecase, error) {
	var missing []string
	if clientID == "" {
		missing = append(missing, "YOUTUBE_CLIENT_ID")
	}
	if clientSecret == "" {
		missing = append(missing, "YOUTUBE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %v", model.ErrConfiguration, missing)
	}
	if authURL == "" {
		authURL = google.Endpoint.AuthURL
	}
	return &AuthorizeUsecase{
		clientID:     clientID,
		clientSecret: clientSecret,
		authURL:      authURL,
		tokens:       tokens,
		signingKey:   signingKey,
		now:          time.Now,
	}, nil
}

// AuthCodeURL returns the consent URL for redirectURI with a signed state
func (u *AuthorizeUsecase) AuthCodeURL(redirectURI string) (string, error) {
	state, err := utils.GenerateStateToken(u.signingKey, u.now())
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	cfg := &oauth2.Config{
		ClientID:     u.clientID,
		ClientSecret: u.clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       AuthorizationScopes,
		Endpoint:     oauth2.Endpoint{AuthURL: u.authURL},
	}
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// VerifyState checks a state echoed back by the authorization server
func (u *AuthorizeUsecase) VerifyState(state string) error {
	return utils.VerifyStateToken(state, u.signingKey)
}

// ExchangeCode trades the authorization code for tokens; the result always carries a refresh token
func (u *AuthorizeUsecase) ExchangeCode(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	token, err := u.tokens.ExchangeAuthorizationCode(ctx, u.clientID, u.clientSecret, code, redirectURI)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}
