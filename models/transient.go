package models

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/rickchristie/lessongraph"
)

// IsTransient reports whether a model error is worth retrying: timeouts, rate limits,
// server errors and dropped connections.
//
// Errors wrapping lessongraph.ErrTransient are always transient. Typed SDK errors are
// classified by status code. Errors from providers that only expose text (langchaingo)
// fall back to matching well-known fragments of the message.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, lessongraph.ErrTransient) {
		return true
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return transientStatus(oaErr.StatusCode)
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return transientStatus(antErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range transientFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

var transientFragments = []string{
	"429",
	"rate limit",
	"too many requests",
	"500 internal server error",
	"502",
	"503",
	"504",
	"status code: 500",
	"connection reset",
	"econnreset",
	"etimedout",
	"timeout",
	"temporarily unavailable",
	"overloaded",
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusRequestTimeout ||
		code >= http.StatusInternalServerError
}

// markTransient wraps err with lessongraph.ErrTransient when IsTransient says so.
// Adapters call it so callers other than Client can classify errors with errors.Is.
func markTransient(err error) error {
	if err == nil || errors.Is(err, lessongraph.ErrTransient) || !IsTransient(err) {
		return err
	}
	return fmt.Errorf("%w: %w", lessongraph.ErrTransient, err)
}
