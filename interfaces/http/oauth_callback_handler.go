package http

import (
	"fmt"
	"net/http"
	"sync"

	"yt-analytics/domain/model"
	"yt-analytics/infrastructure/logger"

	"github.com/gin-gonic/gin"
)

// CallbackPath is the redirect path registered for the local listener
const CallbackPath = "/oauth2callback"

// CallbackResult is what the single accepted callback carried
type CallbackResult struct {
	Code string
	Err  error
}

// IStateVerifier checks the state echoed back by the authorization server
type IStateVerifier interface {
	VerifyState(state string) error
}

// IOAuthCallbackHandler defines the interface for the authorization callback
type IOAuthCallbackHandler interface {
	Callback(ctx *gin.Context)
	Results() <-chan CallbackResult
}

// OAuthCallbackHandler accepts exactly one callback and forwards its outcome
type OAuthCallbackHandler struct {
	verifier IStateVerifier
	results  chan CallbackResult
	once     sync.Once
}

// NewOAuthCallbackHandler creates a handler whose result channel receives one value
func NewOAuthCallbackHandler(verifier IStateVerifier) *OAuthCallbackHandler {
	return &OAuthCallbackHandler{
		verifier: verifier,
		results:  make(chan CallbackResult, 1),
	}
}

func (h *OAuthCallbackHandler) Results() <-chan CallbackResult {
	return h.results
}

// Callback handles GET /oauth2callback
func (h *OAuthCallbackHandler) Callback(ctx *gin.Context) {
	accepted := false
	h.once.Do(func() {
		accepted = true
		result := h.evaluate(ctx)
		h.results <- result
		if result.Err != nil {
			logger.GetLogger().WithField("error", result.Err).Error("Authorization callback rejected")
			ctx.String(http.StatusBadRequest, "Authorization failed: %v\nReturn to the terminal.\n", result.Err)
			return
		}
		ctx.String(http.StatusOK, "Authorization received. You can close this window and return to the terminal.\n")
	})
	if !accepted {
		ctx.String(http.StatusGone, "This authorization listener has already handled its callback.\n")
	}
}

func (h *OAuthCallbackHandler) evaluate(ctx *gin.Context) CallbackResult {
	if errorParam := ctx.Query("error"); errorParam != "" {
		desc := ctx.Query("error_description")
		if desc != "" {
			return CallbackResult{Err: fmt.Errorf("authorization server returned %s: %s", errorParam, desc)}
		}
		return CallbackResult{Err: fmt.Errorf("authorization server returned %s", errorParam)}
	}
	if h.verifier != nil {
		if err := h.verifier.VerifyState(ctx.Query("state")); err != nil {
			return CallbackResult{Err: err}
		}
	}
	code := ctx.Query("code")
	if code == "" {
		return CallbackResult{Err: fmt.Errorf("%w: callback carried neither code nor error", model.ErrConfiguration)}
	}
	return CallbackResult{Code: code}
}
