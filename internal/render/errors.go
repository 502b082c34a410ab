package render

import "errors"

var (
	// ErrSourceNotFound is returned when the master image is missing or
	// cannot be decoded.
	ErrSourceNotFound = errors.New("render: source image not found")

	// ErrMissingRules is returned when the jurisdiction has no rule entry.
	ErrMissingRules = errors.New("render: no rules for jurisdiction")
)
