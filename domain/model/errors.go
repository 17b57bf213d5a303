package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks missing environment, config or arguments. Raised before any network call.
	ErrConfiguration = errors.New("configuration error")
	// ErrResponseShape marks a 2xx response that lacks a field the caller needs.
	ErrResponseShape = errors.New("unexpected response shape")
)

// UpstreamError is a non-2xx answer from one of the remote endpoints.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
