// =============================================================================
// Auction JSON to DAT Converter - JSON Document Loader
// =============================================================================
//
// This module loads one source document into memory. A document is a JSON
// object whose "Items" member is an array of auction listings:
//
//   {
//     "Items": [
//       {
//         "ItemID": "1043374545",
//         "Name": "...",
//         "Category": ["Collectibles", "Kitchenware"],
//         "Currently": "$30.00",
//         "First_Bid": "$30.00",
//         "Number_of_Bids": "0",
//         "Bids": null,
//         "Location": "...", "Country": "USA",
//         "Started": "Dec-03-01 18:10:40",
//         "Ends": "Dec-13-01 18:10:40",
//         "Seller": {"UserID": "...", "Rating": "1035"},
//         "Description": "..."
//       }
//     ]
//   }
//
// The whole file is read and the envelope decoded up front. Individual items
// are kept as raw JSON and decoded one at a time by DecodeItem, so that a badly
// shaped item can be reported by index instead of failing the whole decode
// with an anonymous error.
//
// =============================================================================

package jsonparser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is one loaded source file.
type Document struct {
	// SourceFile is the path the document was read from.
	SourceFile string

	// Items holds each element of the "Items" array, still encoded.
	Items []json.RawMessage
}

// ItemCount returns the number of items in the document.
func (d *Document) ItemCount() int {
	return len(d.Items)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrMissingItems is returned when the top-level "Items" array is absent,
// null, or not an array.
var ErrMissingItems = errors.New(`document has no "Items" array`)

// DocumentError reports a document that could not be read or decoded.
type DocumentError struct {
	// Path is the source file.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *DocumentError) Unwrap() error {
	return e.Err
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads and decodes the document at filePath.
func Parse(filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &DocumentError{Path: filePath, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	return Decode(data, filePath)
}

// Decode decodes an in-memory document. source is only used in errors.
func Decode(data []byte, source string) (*Document, error) {
	// Some exports carry a UTF-8 byte order mark.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var envelope struct {
		Items json.RawMessage `json:"Items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &DocumentError{Path: source, Err: fmt.Errorf("failed to decode JSON: %w", err)}
	}

	raw := bytes.TrimSpace(envelope.Items)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, &DocumentError{Path: source, Err: ErrMissingItems}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DocumentError{Path: source, Err: fmt.Errorf("%w: %v", ErrMissingItems, err)}
	}

	return &Document{
		SourceFile: source,
		Items:      items,
	}, nil
}

// DecodeItem decodes one raw element of the "Items" array. Scalar fields never
// fail to decode (see Text); a nested object or list of the wrong shape
// returns a *json.UnmarshalTypeError naming the field.
func DecodeItem(raw json.RawMessage) (*Item, error) {
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, err
	}
	return &item, nil
}
