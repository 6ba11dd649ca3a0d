package graph

import (
	"context"
	"errors"
	"fmt"
)

// Client is the contract the page repository needs from a graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// String returns the string stored under key, or "" when the key is absent
// or null.
func (r Record) String(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T, want string", ErrUnexpectedValue, key, v)
	}
	return s, nil
}

// Strings returns the list stored under key. The driver hands lists back as
// []any; []string is accepted for in-memory results.
func (r Record) Strings(key string) ([]string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return []string{}, nil
	}
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %q[%d] is %T, want string", ErrUnexpectedValue, key, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q is %T, want list", ErrUnexpectedValue, key, v)
	}
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrUnexpectedValue is returned when a record field has the wrong type.
	ErrUnexpectedValue = errors.New("unexpected record value")
)
