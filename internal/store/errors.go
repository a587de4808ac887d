package store

import "github.com/stockroomapp/stockroom-server/internal/errors"

// Sentinel errors shared by store operations. These alias the domain
// error package so callers can match with errors.Is against either.
var (
	ErrNotFound      = errors.ErrNotFound
	ErrAlreadyExists = errors.ErrAlreadyExists
)

// storageErr wraps a low-level persistence failure as a domain
// storage error.
func storageErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, errors.CodeStorage, msg)
}
