package transport

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StatusError{Code: 500}))
	assert.True(t, IsRetryable(&StatusError{Code: 503}))
	assert.False(t, IsRetryable(&StatusError{Code: 403}))
	assert.False(t, IsRetryable(&StatusError{Code: 404}))
	assert.False(t, IsRetryable(errors.New("plain failure")))

	netErr := &net.DNSError{Err: "no such host", IsTemporary: true}
	assert.True(t, IsRetryable(netErr))

	// Classification survives wrapping.
	assert.True(t, IsRetryable(fmt.Errorf("upload: %w", &StatusError{Code: 502})))
	assert.False(t, IsRetryable(fmt.Errorf("upload: %w", &StatusError{Code: 400})))
}

func TestStatusErrorMessage(t *testing.T) {
	assert.Equal(t, "remote error 503: overloaded", (&StatusError{Code: 503, Status: "overloaded"}).Error())
	assert.Equal(t, "remote error 500", (&StatusError{Code: 500}).Error())
}
