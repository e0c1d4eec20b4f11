// ABOUTME: Error types for the kuma client package
// ABOUTME: Sentinel errors for transport faults plus typed validation and remote errors

package kuma

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is returned when a call acknowledgement or a list refresh
	// does not arrive within the client's wait bound.
	ErrTimeout = errors.New("timed out waiting for server response")

	// ErrAuthentication is returned when the server rejects credentials.
	ErrAuthentication = errors.New("authentication rejected")

	// ErrNotConnected is returned when an operation is attempted on a
	// closed or never-opened session.
	ErrNotConnected = errors.New("not connected to server")
)

// ValidationError reports required payload fields that were not supplied
// for an entity. It is raised before any remote call is issued.
type ValidationError struct {
	Entity  string
	Missing []string
}

func (e *ValidationError) Error() string {
	quoted := make([]string, len(e.Missing))
	for i, field := range e.Missing {
		quoted[i] = fmt.Sprintf("'%s'", field)
	}
	return fmt.Sprintf("missing required field(s) for '%s': %s", e.Entity, strings.Join(quoted, ", "))
}

// RemoteError reports a call the server acknowledged with ok=false.
// The server's message is relayed verbatim.
type RemoteError struct {
	Event   string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server rejected '%s' call", e.Event)
	}
	return fmt.Sprintf("server rejected '%s' call: %s", e.Event, e.Message)
}
