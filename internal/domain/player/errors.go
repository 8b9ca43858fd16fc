package player

import "errors"

// Source failures. Client implementations mark their errors with these so callers
// can branch with errors.Is regardless of the wrapping library.
var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrParse             = errors.New("source payload could not be parsed")
	ErrProfileNotFound   = errors.New("profile not found at source")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) && !errors.Is(err, ErrParse) && !errors.Is(err, ErrProfileNotFound)
}
