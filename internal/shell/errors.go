package shell

import "errors"

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrNameCollision   = errors.New("already exists")
	ErrNoArchive       = errors.New("sample archive unavailable")
)
