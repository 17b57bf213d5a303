package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"yt-analytics/infrastructure/logger"
	httpHandler "yt-analytics/interfaces/http"

	"golang.org/x/sync/errgroup"
)

// ErrCallbackTimeout is returned when no callback arrived in time
var ErrCallbackTimeout = errors.New("timed out waiting for the authorization callback")

// CallbackServer is a loopback listener that serves exactly one authorization callback
type CallbackServer struct {
	listener   net.Listener
	httpServer *http.Server
	handler    httpHandler.IOAuthCallbackHandler
}

// NewCallbackServer binds addr; use "127.0.0.1:0" to let the OS pick a free port
func NewCallbackServer(addr string, handler httpHandler.IOAuthCallbackHandler) (*CallbackServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &CallbackServer{
		listener: listener,
		httpServer: &http.Server{
			Handler:           InitiateRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		},
		handler: handler,
	}, nil
}

// RedirectURI is the callback URL to register with the authorization request
func (s *CallbackServer) RedirectURI() string {
	return fmt.Sprintf("http://%s%s", s.listener.Addr().String(), httpHandler.CallbackPath)
}

// Await serves until the first callback, ctx cancellation or timeout, then shuts the listener down
func (s *CallbackServer) Await(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	var result httpHandler.CallbackResult

	g.Go(func() error {
		if err := s.httpServer.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case result = <-s.handler.Results():
		case <-gctx.Done():
			if errors.Is(gctx.Err(), context.DeadlineExceeded) {
				result = httpHandler.CallbackResult{Err: ErrCallbackTimeout}
			} else {
				result = httpHandler.CallbackResult{Err: gctx.Err()}
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Callback listener shutdown")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", fmt.Errorf("callback listener: %w", err)
	}
	if result.Err != nil {
		return "", result.Err
	}
	return result.Code, nil
}
