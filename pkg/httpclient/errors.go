package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/nicofzzn/ecommerce/pkg/errors"
)

// downstreamError is the flat {code, message} error body our services write.
type downstreamError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseResponseError consumes and closes a non-2xx response and translates it
// into an AppError. Bodies that are not a structured error keep the status
// with a generic message.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", serviceName, resp.StatusCode, err)
	}

	var de downstreamError
	if json.Unmarshal(body, &de) != nil || de.Message == "" {
		de = downstreamError{Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	return mapDownstreamError(resp.StatusCode, de, serviceName)
}

func mapDownstreamError(status int, de downstreamError, serviceName string) error {
	msg := fmt.Sprintf("%s: %s", serviceName, de.Message)

	var appErr *apperrors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = apperrors.New("NOT_FOUND", msg, status, apperrors.ErrNotFound)
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		appErr = apperrors.InvalidInput(msg)
	case status == http.StatusConflict:
		appErr = apperrors.Conflict(msg)
	case status == http.StatusUnauthorized:
		appErr = apperrors.Unauthorized(msg)
	case status == http.StatusForbidden:
		appErr = apperrors.Forbidden(msg)
	case status == http.StatusServiceUnavailable:
		appErr = apperrors.ServiceUnavailable(msg, nil)
	default:
		return fmt.Errorf("%s returned status %d: %s", serviceName, status, de.Message)
	}
	if de.Code != "" {
		appErr.Code = de.Code
	}
	return appErr
}

// TransportError classifies a failed call through a CircuitBreakerClient.
// An open breaker and exhausted 5xx or network retries both become 503.
func TransportError(err error, serviceName string) error {
	var se *serverError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperrors.ServiceUnavailable(serviceName+" is temporarily unavailable", err)
	case errors.As(err, &se):
		return apperrors.ServiceUnavailable(fmt.Sprintf("%s failed with status %d", serviceName, se.status), err)
	default:
		return apperrors.ServiceUnavailable(serviceName+" is unreachable", err)
	}
}
