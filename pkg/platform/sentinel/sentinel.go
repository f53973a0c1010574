package sentinel

import "errors"

// Infrastructure facts returned by stores, optionally wrapped. Services translate
// them into domain errors; stores never build HTTP-facing messages.
//   - ErrNotFound: no record with that identity
//   - ErrConflict: a unique field is already taken
//   - ErrInvalidState: a guarded mutation was refused by the record's current state
//   - ErrUnavailable: the backing system could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)

// ConflictError names the unique field that collided so services can report it.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return "conflict on " + e.Field
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict builds an ErrConflict carrying the colliding field.
func Conflict(field string) error {
	return &ConflictError{Field: field}
}

// ConflictField extracts the colliding field, if err carries one.
func ConflictField(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}
