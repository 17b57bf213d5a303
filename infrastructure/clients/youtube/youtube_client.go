package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"yt-analytics/domain/model"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// MaxIDsPerRequest is the videos.list batch limit.
const MaxIDsPerRequest = 50

// Client talks to YouTube Analytics v2 and YouTube Data v3 with a caller supplied bearer token
type Client struct {
	analyticsEndpoint string
	dataEndpoint      string
	timeout           time.Duration
	transport         http.RoundTripper
	limiter           *rate.Limiter
}

// Config represents YouTube API client configuration
type Config struct {
	// AnalyticsEndpoint and DataEndpoint override the Google base URLs when set.
	AnalyticsEndpoint string
	DataEndpoint      string
	Timeout           time.Duration
	// RequestsPerSecond paces videos.list calls; zero disables pacing.
	RequestsPerSecond float64
	// Transport is the base round tripper under the bearer transport; nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// NewYouTubeClient creates a new YouTube API client
func NewYouTubeClient(config *Config) *Client {
	c := &Client{
		analyticsEndpoint: config.AnalyticsEndpoint,
		dataEndpoint:      config.DataEndpoint,
		timeout:           config.Timeout,
		transport:         config.Transport,
	}
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}
	if config.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return c
}

// authorizedClient returns an HTTP client that sends the access token as a bearer credential
func (c *Client) authorizedClient(accessToken string) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
			Base:   c.transport,
		},
	}
}

func (c *Client) options(accessToken, endpoint string) []option.ClientOption {
	opts := []option.ClientOption{option.WithHTTPClient(c.authorizedClient(accessToken))}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	return opts
}

// toUpstreamError maps googleapi errors onto the domain error carrying status and body
func toUpstreamError(endpoint string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		body := apiErr.Body
		if body == "" {
			body = apiErr.Message
		}
		return &model.UpstreamError{Endpoint: endpoint, StatusCode: apiErr.Code, Body: body}
	}
	return fmt.Errorf("%s: %w", endpoint, err)
}
