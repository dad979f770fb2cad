package contract

import "errors"

// Error kinds returned by every transaction. Callers match them with errors.Is;
// the wrapped message is what the gateway shows to clients.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientUnits = errors.New("insufficient units")
	ErrAlreadyExists     = errors.New("already exists")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
