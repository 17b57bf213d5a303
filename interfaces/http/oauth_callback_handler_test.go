package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStateVerifier struct {
	mock.Mock
}

func (m *MockStateVerifier) VerifyState(state string) error {
	args := m.Called(state)
	return args.Error(0)
}

func newCallbackRouter(h *OAuthCallbackHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(CallbackPath, h.Callback)
	return router
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestOAuthCallbackHandler_Code(t *testing.T) {
	verifier := new(MockStateVerifier)
	verifier.On("VerifyState", "good-state").Return(nil).Once()
	h := NewOAuthCallbackHandler(verifier)
	router := newCallbackRouter(h)

	w := serve(router, CallbackPath+"?code=4%2Fabc&state=good-state")

	assert.Equal(t, http.StatusOK, w.Code)
	result := <-h.Results()
	require.NoError(t, result.Err)
	assert.Equal(t, "4/abc", result.Code)

	second := serve(router, CallbackPath+"?code=again&state=good-state")
	assert.Equal(t, http.StatusGone, second.Code)
	verifier.AssertExpectations(t)
}

func TestOAuthCallbackHandler_ErrorParam(t *testing.T) {
	h := NewOAuthCallbackHandler(new(MockStateVerifier))

	w := serve(newCallbackRouter(h), CallbackPath+"?error=access_denied")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := <-h.Results()
	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "access_denied")
}

func TestOAuthCallbackHandler_BadState(t *testing.T) {
	verifier := new(MockStateVerifier)
	verifier.On("VerifyState", "forged").Return(errors.New("invalid oauth state")).Once()
	h := NewOAuthCallbackHandler(verifier)

	w := serve(newCallbackRouter(h), CallbackPath+"?code=abc&state=forged")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	result := <-h.Results()
	assert.EqualError(t, result.Err, "invalid oauth state")
	assert.Empty(t, result.Code)
}

func TestOAuthCallbackHandler_MissingCode(t *testing.T) {
	verifier := new(MockStateVerifier)
	verifier.On("VerifyState", "s").Return(nil).Once()
	h := NewOAuthCallbackHandler(verifier)

	w := serve(newCallbackRouter(h), CallbackPath+"?state=s")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Error(t, (<-h.Results()).Err)
}
