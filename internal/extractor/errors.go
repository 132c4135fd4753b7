package extractor

import (
	"errors"
	"fmt"
	"strings"
)

// Field-level causes carried by MalformedRecordError.
var (
	ErrMissingField = errors.New("required field is missing")
	ErrWrongShape   = errors.New("field has the wrong shape")
	ErrNotInteger   = errors.New("field is not an integer")
)

// MalformedRecordError reports an item whose required fields are missing or
// cannot be transformed. It aborts the whole document.
type MalformedRecordError struct {
	// Index is the item's position in the "Items" array.
	Index int

	// ItemID is the item's id when it could be read before the failure.
	ItemID string

	// Field is the path of the offending field, e.g. "Bids[1].Bid.Time".
	Field string

	// Err is the cause: one of the sentinels above or a transform error.
	Err error
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "malformed item #%d", e.Index)
	if e.ItemID != "" {
		fmt.Fprintf(&b, " (ItemID %s)", e.ItemID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %s", e.Field)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

// Unwrap returns the cause.
func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
