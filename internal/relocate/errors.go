package relocate

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Relocate and RelocateFile.
var (
	// ErrMarkerNotFound is returned when a delimiter substring is absent
	// from the document.
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrInvalidBlockOrdering is returned when an end marker resolves before
	// its start marker or when the two blocks overlap.
	ErrInvalidBlockOrdering = errors.New("invalid block ordering")

	// ErrEmptyMarker is returned when a marker is the empty string.
	ErrEmptyMarker = errors.New("marker is empty")
)

// MarkerNotFoundError lists every marker that could not be resolved.
type MarkerNotFoundError struct {
	Markers []Role
	Text    map[Role]Marker
}

func (e *MarkerNotFoundError) Error() string {
	parts := make([]string, 0, len(e.Markers))
	for _, r := range e.Markers {
		parts = append(parts, fmt.Sprintf("%s %q", r, e.Text[r]))
	}
	return fmt.Sprintf("%s: %s", ErrMarkerNotFound, strings.Join(parts, ", "))
}

func (e *MarkerNotFoundError) Unwrap() error { return ErrMarkerNotFound }

// InvalidOrderingError describes resolved positions that cannot be relocated.
type InvalidOrderingError struct {
	Positions Positions
	Reason    string
}

func (e *InvalidOrderingError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrInvalidBlockOrdering, e.Reason, e.Positions)
}

func (e *InvalidOrderingError) Unwrap() error { return ErrInvalidBlockOrdering }
