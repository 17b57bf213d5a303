package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	oauthclient "yt-analytics/infrastructure/clients/oauth"
	"yt-analytics/infrastructure/configuration"
	"yt-analytics/infrastructure/logger"
	"yt-analytics/infrastructure/utils"
	httpHandler "yt-analytics/interfaces/http"
	"yt-analytics/server"
	"yt-analytics/usecase"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	code := pflag.String("code", "", "authorization code to exchange directly")
	redirectURI := pflag.String("redirect-uri", configuration.OutOfBandRedirectURI, "redirect URI the code was issued for")
	timeout := pflag.Duration("timeout", 5*time.Minute, "how long to wait for the authorization callback")
	configName := pflag.String("config", "", "config file base name (default config or config-$ENV)")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configuration.LoadEnvFromFile("config.env", ".env")
	if err := configuration.LoadConfig(*configName); err != nil {
		logger.GetLogger().WithField("error", err).Error("Configuration failed")
		return 1
	}
	youtubeConfig := configuration.GetYouTubeConfig()
	if err := youtubeConfig.ValidateClient(); err != nil {
		logger.GetLogger().WithField("error", err).Error("OAuth client not configured")
		return 1
	}

	signingKey, err := utils.NewSigningKey()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot create state signing key")
		return 1
	}
	authorizeUsecase, err := usecase.NewAuthorizeUsecase(
		youtubeConfig.ClientID,
		youtubeConfig.ClientSecret,
		"",
		oauthclient.NewTokenClient(youtubeConfig.TokenURL, nil, youtubeConfig.Timeout),
		signingKey,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Authorization setup failed")
		return 1
	}

	if *code != "" {
		return exchange(ctx, authorizeUsecase, *code, *redirectURI)
	}

	gin.SetMode(gin.ReleaseMode)
	callbackServer, err := server.NewCallbackServer("127.0.0.1:0", httpHandler.NewOAuthCallbackHandler(authorizeUsecase))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot start callback listener")
		return 1
	}
	uri := callbackServer.RedirectURI()
	authURL, err := authorizeUsecase.AuthCodeURL(uri)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Cannot build authorization URL")
		return 1
	}
	fmt.Println("Open this URL in a browser and approve access:")
	fmt.Println(authURL)
	logger.GetLogger().WithFields(map[string]interface{}{
		"redirectURI": uri,
		"timeout":     timeout.String(),
	}).Info("Waiting for authorization callback")

	receivedCode, err := callbackServer.Await(ctx, *timeout)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Authorization failed")
		return 1
	}
	return exchange(ctx, authorizeUsecase, receivedCode, uri)
}

func exchange(ctx context.Context, authorizeUsecase usecase.IAuthorizeUsecase, code, redirectURI string) int {
	token, err := authorizeUsecase.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Code exchange failed")
		return 1
	}
	fmt.Println("Refresh token:")
	fmt.Println(token.RefreshToken)
	return 0
}
