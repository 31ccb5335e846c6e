package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrIOFailure     = errors.New("io failure")
	ErrReadDecode    = errors.New("content is not valid utf-8")
	ErrInvalidName   = errors.New("invalid name")
)

// KindOf names the store error kind carried by err, or "" when err does not
// come from the store.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrReadDecode):
		return "read_decode"
	case errors.Is(err, ErrIOFailure):
		return "io_failure"
	}
	return ""
}

// classify wraps an os error with the store kind it belongs to.
func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
	case errors.Is(err, fs.ErrExist):
		return fmt.Errorf("%s %s: %w", op, path, ErrAlreadyExists)
	}
	return fmt.Errorf("%s %s: %w: %w", op, path, ErrIOFailure, err)
}
