package configuration

import (
	"fmt"
	"os"
	"strings"
	"time"

	"yt-analytics/domain/model"

	"golang.org/x/oauth2/google"
)

// OutOfBandRedirectURI is used for manual code exchange when no redirect URI is given.
const OutOfBandRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// YouTubeConfig represents YouTube API configuration
type YouTubeConfig struct {
	ClientID          string        `mapstructure:"client_id"`
	ClientSecret      string        `mapstructure:"client_secret"`
	RefreshToken      string        `mapstructure:"refresh_token"`
	RedirectURL       string        `mapstructure:"redirect_url"`
	TokenURL          string        `mapstructure:"token_url"`
	AnalyticsEndpoint string        `mapstructure:"analytics_endpoint"`
	DataEndpoint      string        `mapstructure:"data_endpoint"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// GetYouTubeConfig returns YouTube configuration from JSON config with environment variable precedence
func GetYouTubeConfig() *YouTubeConfig {
	timeout := time.Duration(C.YouTube.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &YouTubeConfig{
		ClientID:          getConfigValue(C.YouTube.ClientID, "YOUTUBE_CLIENT_ID", ""),
		ClientSecret:      getConfigValue(C.YouTube.ClientSecret, "YOUTUBE_CLIENT_SECRET", ""),
		RefreshToken:      getConfigValue(C.YouTube.RefreshToken, "YOUTUBE_REFRESH_TOKEN", ""),
		RedirectURL:       getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL", ""),
		TokenURL:          getConfigValue(C.YouTube.TokenURL, "YOUTUBE_TOKEN_URL", google.Endpoint.TokenURL),
		AnalyticsEndpoint: getConfigValue(C.YouTube.AnalyticsEndpoint, "YOUTUBE_ANALYTICS_ENDPOINT", ""),
		DataEndpoint:      getConfigValue(C.YouTube.DataEndpoint, "YOUTUBE_DATA_ENDPOINT", ""),
		Timeout:           timeout,
		RequestsPerSecond: C.YouTube.RequestsPerSecond,
	}
}

// Credential validates and returns the refresh credential needed by the snapshot run.
func (c *YouTubeConfig) Credential() (model.Credential, error) {
	if err := requireValues(map[string]string{
		"YOUTUBE_CLIENT_ID":     c.ClientID,
		"YOUTUBE_CLIENT_SECRET": c.ClientSecret,
		"YOUTUBE_REFRESH_TOKEN": c.RefreshToken,
	}); err != nil {
		return model.Credential{}, err
	}
	return model.Credential{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RefreshToken: c.RefreshToken,
	}, nil
}

// ValidateClient checks the OAuth client pair needed by the authorization helper.
func (c *YouTubeConfig) ValidateClient() error {
	return requireValues(map[string]string{
		"YOUTUBE_CLIENT_ID":     c.ClientID,
		"YOUTUBE_CLIENT_SECRET": c.ClientSecret,
	})
}

func requireValues(values map[string]string) error {
	var missing []string
	for _, key := range []string{"YOUTUBE_CLIENT_ID", "YOUTUBE_CLIENT_SECRET", "YOUTUBE_REFRESH_TOKEN"} {
		v, ok := values[key]
		if ok && v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", model.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// getConfigValue gets value from config first, then environment variable, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	// Environment variable takes precedence when provided
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
