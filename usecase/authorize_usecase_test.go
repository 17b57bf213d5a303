package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"yt-analytics/domain/model"
	"yt-analytics/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

func TestNewAuthorizeUsecase_MissingClient(t *testing.T) {
	_, err := usecase.NewAuthorizeUsecase("", "", "", new(MockTokenExchanger), testSigningKey)

	assert.True(t, errors.Is(err, model.ErrConfiguration))
	assert.Contains(t, err.Error(), "YOUTUBE_CLIENT_ID")
	assert.Contains(t, err.Error(), "YOUTUBE_CLIENT_SECRET")
}

func TestAuthorizeUsecase_AuthCodeURL(t *testing.T) {
	uc, err := usecase.NewAuthorizeUsecase("cid", "secret", "", new(MockTokenExchanger), testSigningKey)
	require.NoError(t, err)

	raw, err := uc.AuthCodeURL("http://127.0.0.1:5555/oauth2callback")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://127.0.0.1:5555/oauth2callback", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t,
		"https://www.googleapis.com/auth/yt-analytics.readonly https://www.googleapis.com/auth/youtube.readonly",
		q.Get("scope"))
	assert.NoError(t, uc.VerifyState(q.Get("state")))
	assert.Error(t, uc.VerifyState("forged"))
}

func TestAuthorizeUsecase_ExchangeCode(t *testing.T) {
	tokens := new(MockTokenExchanger)
	tokens.On("ExchangeAuthorizationCode", mock.Anything, "cid", "secret", "4/abc", "urn:ietf:wg:oauth:2.0:oob").
		Return(&oauth2.Token{AccessToken: "a", RefreshToken: "r"}, nil).Once()
	uc, err := usecase.NewAuthorizeUsecase("cid", "secret", "", tokens, testSigningKey)
	require.NoError(t, err)

	token, err := uc.ExchangeCode(context.Background(), "4/abc", "urn:ietf:wg:oauth:2.0:oob")

	require.NoError(t, err)
	assert.Equal(t, "r", token.RefreshToken)
	tokens.AssertExpectations(t)
}

func TestAuthorizeUsecase_ExchangeCode_Upstream(t *testing.T) {
	tokens := new(MockTokenExchanger)
	tokens.On("ExchangeAuthorizationCode", mock.Anything, "cid", "secret", "bad", "uri").
		Return(nil, &model.UpstreamError{Endpoint: "oauth token", StatusCode: 400, Body: `{"error":"invalid_grant"}`}).Once()
	uc, err := usecase.NewAuthorizeUsecase("cid", "secret", "", tokens, testSigningKey)
	require.NoError(t, err)

	_, err = uc.ExchangeCode(context.Background(), "bad", "uri")

	var upstream *model.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "invalid_grant")
}
