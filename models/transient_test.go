package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"

	"github.com/rickchristie/lessongraph"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected bool
	}{
		{name: "nil", input: nil, expected: false},
		{name: "marked", input: fmt.Errorf("wrap: %w", lessongraph.ErrTransient), expected: true},
		{name: "connection reset", input: fmt.Errorf("read: %w", syscall.ECONNRESET), expected: true},
		{name: "unexpected eof", input: io.ErrUnexpectedEOF, expected: true},
		{name: "rate limit text", input: errors.New("API returned unexpected status code: 429"), expected: true},
		{name: "bad gateway text", input: errors.New("status 502 bad gateway"), expected: true},
		{name: "auth failure", input: errors.New("401 unauthorized: invalid api key"), expected: false},
		{name: "caller cancellation", input: context.Canceled, expected: false},
		{name: "bad request", input: errors.New("invalid tool schema"), expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsTransient(tc.input))
		})
	}
}

func TestMarkTransient(t *testing.T) {
	base := errors.New("503 service unavailable")
	marked := markTransient(base)
	assert.ErrorIs(t, marked, lessongraph.ErrTransient)
	assert.ErrorIs(t, marked, base)

	permanent := errors.New("invalid request")
	assert.Same(t, permanent, markTransient(permanent))
	assert.Nil(t, markTransient(nil))
}
