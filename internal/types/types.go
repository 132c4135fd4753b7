// =============================================================================
// Auction JSON to DAT Converter - Shared Types
// =============================================================================
//
// This package contains the record types shared by the extractor, the
// materializer and the workbook exporter. Keeping them here avoids import
// cycles between those packages.
//
// TABLES:
//   item      - one row per auction listing
//   category  - one row per (item, category) pair
//   user      - one row per seller/bidder appearance, deduplicated by content
//   bid       - one row per bid event, deduplicated by content
//
// Every record is a comparable struct, so a table can be deduplicated by
// using the record itself as a map key.
//
// =============================================================================

package types

// =============================================================================
// FIELD VALUES
// =============================================================================

// Value is a single field of an output row. It is either text (already
// normalized or escaped by the extractor) or absent.
type Value struct {
	// Text is the rendered field content. Ignored when Valid is false.
	Text string

	// Valid is false for a missing or null source value.
	Valid bool
}

// Text returns a present field value.
func Text(s string) Value {
	return Value{Text: s, Valid: true}
}

// Null returns the absent field value.
func Null() Value {
	return Value{}
}

// Render returns the field as it appears in a flat file: the text itself, or
// nullMarker when the value is absent.
func (v Value) Render(nullMarker string) string {
	if !v.Valid {
		return nullMarker
	}
	return v.Text
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// Item is one auction listing.
type Item struct {
	ID           Value
	Name         Value
	Currently    Value
	FirstBid     Value
	NumberOfBids Value
	BuyPrice     Value
	SellerID     Value
	Ends         Value
	Started      Value
	Description  Value
}

// Category ties an item to one of its category tags.
type Category struct {
	ItemID   Value
	Category Value
}

// User is a seller or bidder as seen at one appearance in the source.
type User struct {
	UserID   Value
	Country  Value
	Location Value
	Rating   Value
}

// Bid is one bidder's offer on one item at a point in time.
type Bid struct {
	BidderID Value
	ItemID   Value
	Time     Value
	Amount   Value
}

// =============================================================================
// TABLE DECLARATIONS
// =============================================================================

// Column is one named field of a table together with its accessor.
type Column[R any] struct {
	// Name is the column name used in workbook headers and logs.
	Name string

	// Value extracts the column's field from a record.
	Value func(R) Value
}

// Table declares a table's name and its fixed field order.
type Table[R comparable] struct {
	// Name is used for the output file suffix (<stem>-<name>.dat) and the
	// workbook sheet name.
	Name string

	// Columns lists the fields in output order.
	Columns []Column[R]
}

// Header returns the column names in declared order.
func (t Table[R]) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Fields returns the record's values in declared order.
func (t Table[R]) Fields(record R) []Value {
	values := make([]Value, len(t.Columns))
	for i, c := range t.Columns {
		values[i] = c.Value(record)
	}
	return values
}

// ItemTable is the item table's field order.
var ItemTable = Table[Item]{
	Name: "item",
	Columns: []Column[Item]{
		{Name: "id", Value: func(r Item) Value { return r.ID }},
		{Name: "name", Value: func(r Item) Value { return r.Name }},
		{Name: "currently", Value: func(r Item) Value { return r.Currently }},
		{Name: "first_bid", Value: func(r Item) Value { return r.FirstBid }},
		{Name: "number_of_bids", Value: func(r Item) Value { return r.NumberOfBids }},
		{Name: "buy_price", Value: func(r Item) Value { return r.BuyPrice }},
		{Name: "seller_id", Value: func(r Item) Value { return r.SellerID }},
		{Name: "ends", Value: func(r Item) Value { return r.Ends }},
		{Name: "started", Value: func(r Item) Value { return r.Started }},
		{Name: "description", Value: func(r Item) Value { return r.Description }},
	},
}

// CategoryTable is the category table's field order.
var CategoryTable = Table[Category]{
	Name: "category",
	Columns: []Column[Category]{
		{Name: "item_id", Value: func(r Category) Value { return r.ItemID }},
		{Name: "category", Value: func(r Category) Value { return r.Category }},
	},
}

// UserTable is the user table's field order.
var UserTable = Table[User]{
	Name: "user",
	Columns: []Column[User]{
		{Name: "user_id", Value: func(r User) Value { return r.UserID }},
		{Name: "country", Value: func(r User) Value { return r.Country }},
		{Name: "location", Value: func(r User) Value { return r.Location }},
		{Name: "rating", Value: func(r User) Value { return r.Rating }},
	},
}

// BidTable is the bid table's field order.
var BidTable = Table[Bid]{
	Name: "bid",
	Columns: []Column[Bid]{
		{Name: "bidder_id", Value: func(r Bid) Value { return r.BidderID }},
		{Name: "item_id", Value: func(r Bid) Value { return r.ItemID }},
		{Name: "time", Value: func(r Bid) Value { return r.Time }},
		{Name: "amount", Value: func(r Bid) Value { return r.Amount }},
	},
}

// TableNames lists the four tables in the order they are written.
var TableNames = []string{
	ItemTable.Name,
	CategoryTable.Name,
	UserTable.Name,
	BidTable.Name,
}

// =============================================================================
// TABLE SET
// =============================================================================

// Tables holds the four record lists extracted from one document.
type Tables struct {
	Items      []Item
	Categories []Category
	Users      []User
	Bids       []Bid
}

// Append adds every record of other to t.
func (t *Tables) Append(other *Tables) {
	t.Items = append(t.Items, other.Items...)
	t.Categories = append(t.Categories, other.Categories...)
	t.Users = append(t.Users, other.Users...)
	t.Bids = append(t.Bids, other.Bids...)
}

// Unique returns a copy of t with every table deduplicated.
func (t *Tables) Unique() *Tables {
	return &Tables{
		Items:      Unique(t.Items),
		Categories: Unique(t.Categories),
		Users:      Unique(t.Users),
		Bids:       Unique(t.Bids),
	}
}

// Counts returns the row count per table name.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		ItemTable.Name:     len(t.Items),
		CategoryTable.Name: len(t.Categories),
		UserTable.Name:     len(t.Users),
		BidTable.Name:      len(t.Bids),
	}
}

// Unique removes duplicate records, keeping the first occurrence of each.
// Two records are duplicates when every field is equal.
func Unique[R comparable](records []R) []R {
	seen := make(map[R]struct{}, len(records))
	out := make([]R, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
