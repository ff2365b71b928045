package errs

import (
	cr "github.com/cockroachdb/errors"
)

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// Mark makes err match markErr under stdlib errors.Is while keeping its own
// message. Join puts both errors in the Unwrap chain; cr.Mark alone is only
// visible to cockroachdb's own Is and callers here match with the stdlib.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Join(err, markErr)
}
