package decoder

import (
	"errors"
	"fmt"

	"tricoach/internal/activity"
)

var (
	ErrNoActivity        = errors.New("no activity found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file too large")
)

// UserMessage is the message shown to users for any ParseError
const UserMessage = "unsupported or corrupt file"

// ParseError is returned when a file cannot be decoded. No partial record
// accompanies it.
type ParseError struct {
	Format activity.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
