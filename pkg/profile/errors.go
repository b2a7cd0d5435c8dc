package profile

import "errors"

var (
	// ErrMissingExternalID is returned when the raw profile has no numeric
	// provider id and therefore cannot be linked to a local account.
	ErrMissingExternalID = errors.New("profile: missing facebook id")

	// ErrInvalidBirthDate is returned when the birthday field is present
	// but cannot be parsed as MM/DD/YYYY.
	ErrInvalidBirthDate = errors.New("profile: invalid birth date")
)
