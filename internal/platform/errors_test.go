package platform

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	server := &ServerError{Op: "list_new", Status: 503, Err: errors.New("service unavailable")}

	assert.True(t, IsTransient(server))
	assert.True(t, IsTransient(fmt.Errorf("cycle: %w", server)), "wrapping preserves the class")
	assert.False(t, IsTransient(errors.New("bad request")))
	assert.False(t, IsTransient(nil))
}

func TestServerError_Message(t *testing.T) {
	withStatus := &ServerError{Op: "remove", Status: 502, Err: errors.New("bad gateway")}
	assert.Contains(t, withStatus.Error(), "remove")
	assert.Contains(t, withStatus.Error(), "502")

	network := &ServerError{Op: "approve", Err: errors.New("connection refused")}
	assert.Contains(t, network.Error(), "connection refused")
	assert.NotContains(t, network.Error(), "0")
}
