package domain

import "errors"

var (
	ErrNotFound        = errors.New("domain: not found")
	ErrInvalidArgument = errors.New("domain: invalid argument")
	ErrDuplicateTrack  = errors.New("domain: duplicate track")
	ErrIndexOutOfRange = errors.New("domain: track index out of range")
)
