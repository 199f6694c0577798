package ledger

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/deliberate.thinking/internal/platform/errors"
)

// minimumSequence is the lowest accepted value for every sequence field.
const minimumSequence = 1

// Validate rejects thoughts whose sequence fields fall below 1. It performs
// no cross-field checks; an unknown revision target is handled by the
// revision upsert, not rejected here.
func Validate(t Thought) error {
	if err := validateMin("thoughtNumber", t.Number, minimumSequence); err != nil {
		return err
	}
	if err := validateMin("totalThoughts", t.Total, minimumSequence); err != nil {
		return err
	}
	if t.RevisesThought != nil {
		if err := validateMin("revisesThought", *t.RevisesThought, minimumSequence); err != nil {
			return err
		}
	}
	if t.BranchFromThought != nil {
		if err := validateMin("branchFromThought", *t.BranchFromThought, minimumSequence); err != nil {
			return err
		}
	}
	return nil
}

func validateMin(field string, value, min int) error {
	if value >= min {
		return nil
	}
	return apperrors.WithMetadata(
		apperrors.CodeInvalidParameter,
		fmt.Sprintf("%s must be at least %d", field, min),
		map[string]string{
			"field":   field,
			"minimum": strconv.Itoa(min),
		},
	)
}
