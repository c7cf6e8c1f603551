package rating

import "errors"

var (
	// ErrConfigInvalid means the profile failed validation and must not
	// be used for any computation.
	ErrConfigInvalid = errors.New("rating config is invalid")

	// ErrInvalidInput means a ResultInput is malformed (non-positive
	// position, field smaller than two, position beyond the field).
	ErrInvalidInput = errors.New("result input is invalid")

	// ErrInsufficientField means the tournament has fewer participants
	// than min_players_for_rating and is excluded from rating.
	ErrInsufficientField = errors.New("field too small for rating")

	// ErrProfileNotFound means no active rating profile exists.
	ErrProfileNotFound = errors.New("rating profile not found")
)
