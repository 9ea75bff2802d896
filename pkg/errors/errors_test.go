package errors_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

func TestAPIError(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		rateLimited bool
		unavailable bool
		notFound    bool
		timeout     bool
	}{
		{name: "too_many_requests", status: 429, rateLimited: true},
		{name: "not_found", status: 404, notFound: true},
		{name: "server_error", status: 500, unavailable: true},
		{name: "bad_gateway", status: 502, unavailable: true},
		{name: "gateway_timeout", status: 504, unavailable: true, timeout: true},
		{name: "forbidden", status: 403},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("reconcile: %w", pkgerrors.NewAPIError("ocre", tc.status, "failed"))
			assert.Equal(t, tc.rateLimited, pkgerrors.IsRateLimited(err))
			assert.Equal(t, tc.unavailable, pkgerrors.IsProviderUnavailable(err))
			assert.Equal(t, tc.notFound, pkgerrors.IsNotFound(err))
			assert.Equal(t, tc.timeout, pkgerrors.IsTimeout(err))
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	err := pkgerrors.NewAPIError("crro", 503, "maintenance")
	assert.Contains(t, err.Error(), "crro")
	assert.Contains(t, err.Error(), "503")

	wrapped := &pkgerrors.APIError{Service: "rpc", Message: "dial failed", Err: context.DeadlineExceeded}
	assert.Equal(t, "API error from rpc: dial failed", wrapped.Error())
	assert.True(t, pkgerrors.IsTimeout(wrapped))
}

func TestParseError(t *testing.T) {
	err := pkgerrors.NewParseError("json", "", "unexpected EOF", errors.New("eof"))
	assert.Equal(t, "json parse error: unexpected EOF", err.Error())
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))

	err = pkgerrors.NewParseError("reference", "RIC XII 5", "volume out of range", nil)
	assert.Contains(t, err.Error(), `"RIC XII 5"`)
}

func TestRateLimitError(t *testing.T) {
	err := &pkgerrors.RateLimitError{Service: "ric", Limit: 30, Window: time.Minute, RetryAfter: 12 * time.Second}
	assert.True(t, pkgerrors.IsRateLimited(err))
	assert.Contains(t, err.Error(), "30 requests per 1m0s")
	assert.Contains(t, err.Error(), "retry after 12s")
}

func TestUnsupportedError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &pkgerrors.UnsupportedError{System: "sear"})
	assert.True(t, pkgerrors.IsUnsupported(err))
	assert.Contains(t, err.Error(), "sear")
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, pkgerrors.IsTimeout(nil))
	assert.True(t, pkgerrors.IsTimeout(pkgerrors.ErrTimeout))
	assert.True(t, pkgerrors.IsTimeout(fmt.Errorf("fetch: %w", context.DeadlineExceeded)))
	assert.True(t, pkgerrors.IsTimeout(&net.OpError{Op: "read", Err: timeoutError{}}))
	assert.False(t, pkgerrors.IsTimeout(context.Canceled))
	assert.False(t, pkgerrors.IsTimeout(errors.New("connection refused")))
}
