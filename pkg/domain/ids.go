package domain

import (
	"github.com/google/uuid"

	dErrors "frontdesk/pkg/domain-errors"
)

// ParseID parses a record identifier from a path or payload. label names the
// field in the error message.
func ParseID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil || parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label)
	}
	return parsed, nil
}
