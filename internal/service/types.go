package service

import (
	"errors"
	"time"
)

// MessageNotFound is reported when a search exhausts its frontiers or budget.
const MessageNotFound = "No connection found within search depth or timed out"

var (
	// ErrQueryRequired is returned by Search for a blank query.
	ErrQueryRequired = errors.New("query parameter required")
	// ErrEndpointsRequired is returned by Connect when start or end is blank.
	ErrEndpointsRequired = errors.New("start and end parameters required")
)

// ConnectParams describes a connect request. Zero MaxDepth and Timeout fall
// back to the configured defaults.
type ConnectParams struct {
	Start    string
	End      string
	MaxDepth int
	Timeout  time.Duration
}
