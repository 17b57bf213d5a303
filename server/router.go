package server

import (
	httpHandler "yt-analytics/interfaces/http"

	"github.com/gin-gonic/gin"
)

// InitiateRouter registers the single authorization callback route
func InitiateRouter(callbackHandler httpHandler.IOAuthCallbackHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(httpHandler.CallbackPath, callbackHandler.Callback)

	return router
}
