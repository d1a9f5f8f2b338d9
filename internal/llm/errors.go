package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNoProvider is returned by the selector when neither a local nor a
// remote provider is usable.
var ErrNoProvider = errors.New("no summarization provider available")

// CallError wraps a failed provider call with the provider name and a
// timeout flag, so handlers can map timeouts and upstream failures to
// distinct status codes.
type CallError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *CallError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s call timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Provider, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a provider call that timed out.
func IsTimeout(err error) bool {
	var callErr *CallError
	if errors.As(err, &callErr) && callErr.Timeout {
		return true
	}
	return false
}

// wrapCallError classifies err as a timeout when it stems from a context
// deadline or a network timeout.
func wrapCallError(provider string, err error) error {
	timeout := errors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if !timeout && errors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return &CallError{Provider: provider, Timeout: timeout, Err: err}
}
