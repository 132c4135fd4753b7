package jsonparser

import (
	"bytes"
	"encoding/json"
)

// Item is one decoded element of the "Items" array.
type Item struct {
	ItemID       Text          `json:"ItemID"`
	Name         Text          `json:"Name"`
	Category     []Text        `json:"Category"`
	Currently    Text          `json:"Currently"`
	FirstBid     Text          `json:"First_Bid"`
	NumberOfBids Text          `json:"Number_of_Bids"`
	BuyPrice     Text          `json:"Buy_Price"`
	Bids         []BidEnvelope `json:"Bids"`
	Location     Text          `json:"Location"`
	Country      Text          `json:"Country"`
	Started      Text          `json:"Started"`
	Ends         Text          `json:"Ends"`
	Seller       *Seller       `json:"Seller"`
	Description  Text          `json:"Description"`
}

// Seller is the nested seller object of an item.
type Seller struct {
	UserID Text `json:"UserID"`
	Rating Text `json:"Rating"`
}

// BidEnvelope is one element of an item's "Bids" list.
type BidEnvelope struct {
	Bid *Bid `json:"Bid"`
}

// Bid is a single bid event.
type Bid struct {
	Bidder *Bidder `json:"Bidder"`
	Time   Text    `json:"Time"`
	Amount Text    `json:"Amount"`
}

// Bidder is the nested bidder object of a bid. Location and Country are
// optional.
type Bidder struct {
	UserID   Text `json:"UserID"`
	Rating   Text `json:"Rating"`
	Location Text `json:"Location"`
	Country  Text `json:"Country"`
}

// =============================================================================
// SCALAR FIELDS
// =============================================================================

// Kind describes the JSON shape a scalar field was found in.
type Kind string

const (
	KindMissing Kind = ""
	KindNull    Kind = "null"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBool    Kind = "boolean"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
)

// Text is a scalar source field. Strings and numbers are accepted and kept in
// Value (numbers in their literal JSON spelling). Any other shape is recorded
// in Kind instead of failing the decode, so the extractor can name the field.
type Text struct {
	Value string
	Kind  Kind
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}

	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t.Value, t.Kind = s, KindString
	case c == '-' || (c >= '0' && c <= '9'):
		t.Value, t.Kind = string(data), KindNumber
	case c == 'n':
		t.Value, t.Kind = "", KindNull
	case c == 't' || c == 'f':
		t.Value, t.Kind = "", KindBool
	case c == '{':
		t.Value, t.Kind = "", KindObject
	case c == '[':
		t.Value, t.Kind = "", KindArray
	}
	return nil
}

// Present reports whether the field holds a string or number.
func (t Text) Present() bool {
	return t.Kind == KindString || t.Kind == KindNumber
}

// Absent reports whether the field is missing or null.
func (t Text) Absent() bool {
	return t.Kind == KindMissing || t.Kind == KindNull
}
