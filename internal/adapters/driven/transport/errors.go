// Package transport classifies failed HTTP calls to model and vector
// backends into domain errors the pipeline can retry on.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/custodia-labs/paperqa/internal/core/domain"
)

// SendError wraps a failure to get any response from a backend.
// Deadlines become domain.ErrBackendTimeout; everything else becomes
// unavailable, e.g. domain.ErrLLMUnavailable.
func SendError(err error, unavailable error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("send request: %w: %w", domain.ErrBackendTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("send request: %w", err)
	}
	return fmt.Errorf("send request: %w: %w", unavailable, err)
}

// StatusError describes a non-success response. Gateway timeouts map to
// domain.ErrBackendTimeout and server errors to unavailable; client errors
// are returned as plain errors.
func StatusError(service string, status int, body []byte, unavailable error) error {
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%s error (status %d): %w: %s", service, status, domain.ErrBackendTimeout, string(body))
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return fmt.Errorf("%s error (status %d): %w: %s", service, status, unavailable, string(body))
	default:
		return fmt.Errorf("%s error (status %d): %s", service, status, string(body))
	}
}
