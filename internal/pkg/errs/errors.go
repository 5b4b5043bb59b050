package errs

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrConflict      = errors.New("conflict")
	ErrUnavailable   = errors.New("unavailable")
	ErrInternal      = errors.New("internal")
	ErrIllegalFormat = errors.New("illegal format")
	ErrUnknownType   = errors.New("unknown type")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid) || errors.Is(err, ErrIllegalFormat) || errors.Is(err, ErrUnknownType)
}
