package sportmonks

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"

	crerr "github.com/cockroachdb/errors"
)

// Failure kinds returned by the client. Every error wraps one of them and
// stays matchable with the standard errors.Is.
var (
	ErrMissingCredentials = crerr.New("sportmonks api token is not configured")
	ErrHTTP               = crerr.New("sportmonks http error")
	ErrConnection         = crerr.New("sportmonks connection error")
	ErrTimeout            = crerr.New("sportmonks request timed out")
	ErrMalformedResponse  = crerr.New("sportmonks malformed response")
)

// HTTPError is a non-2xx answer from the provider.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("sportmonks status=%d body=%s", e.StatusCode, e.Body)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrHTTP
}

// IsTransport reports failures that a later run may not hit again.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, ErrConnection) || stderrors.Is(err, ErrTimeout) {
		return true
	}
	var httpErr *HTTPError
	if stderrors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

// classifySendError keeps the token out of the message; the raw transport
// error embeds the full request URL.
func classifySendError(err error, token string) error {
	detail := sanitizeSensitiveText(err.Error(), token)

	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return crerr.Wrapf(ErrTimeout, "send request: %s", detail)
	}
	return crerr.Wrapf(ErrConnection, "send request: %s", detail)
}
