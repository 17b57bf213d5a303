package repository

import (
	"context"

	"yt-analytics/domain/dto"
	"yt-analytics/domain/model"

	"golang.org/x/oauth2"
)

// ITokenExchanger trades OAuth grants for tokens at the token endpoint
type ITokenExchanger interface {
	// ExchangeRefreshToken returns a fresh access token for the credential.
	ExchangeRefreshToken(ctx context.Context, cred model.Credential) (*oauth2.Token, error)
	// ExchangeAuthorizationCode returns the token pair minted for an authorization code.
	ExchangeAuthorizationCode(ctx context.Context, clientID, clientSecret, code, redirectURI string) (*oauth2.Token, error)
}

// IYouTubeAnalytics defines the reports endpoint of YouTube Analytics
type IYouTubeAnalytics interface {
	QueryReport(ctx context.Context, accessToken string, query dto.ReportQuery) (*dto.AnalyticsReport, error)
}

// IVideoMetadata defines the videos.list endpoint of YouTube Data.
// ListVideos serves a single batch; callers chunk.
type IVideoMetadata interface {
	ListVideos(ctx context.Context, accessToken string, ids []string) ([]model.VideoMetadata, error)
}
