package domain

import "errors"

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrNameTooLong   = errors.New("name too long")
	ErrDateRequired  = errors.New("date required")
	ErrDateInPast    = errors.New("date in past")
	ErrInvalidStatus = errors.New("invalid status")
)
