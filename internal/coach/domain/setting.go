package domain

import "time"

// Setting is an application-level key/value row.
type Setting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
