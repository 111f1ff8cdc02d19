package common

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrTimedOut   = errors.New("timed out")
	ErrAborted    = errors.New("aborted by operator")
	ErrEmptyName  = errors.New("title has no filesystem-safe characters")
	ErrNoParts    = errors.New("no part links found")
	ErrIncomplete = errors.New("some parts did not download")
)
