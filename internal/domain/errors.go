package domain

import "errors"

var (
	// ErrPageMissing indicates the knowledge service has no exact page for a title.
	ErrPageMissing = errors.New("page missing")
	// ErrNoPages indicates the knowledge service answered without any addressable page.
	ErrNoPages = errors.New("no pages in response")
)
