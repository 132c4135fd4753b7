// =============================================================================
// Auction JSON to DAT Converter - Record Extractor
// =============================================================================
//
// This module walks the items of one loaded document and decomposes each item
// into rows of the four output tables.
//
// PER ITEM:
//   - 1 item row
//   - 1 category row per category tag
//   - 1 user row for the seller (seller id and rating, item location/country)
//   - per bid: 1 bid row and 1 user row for the bidder
//
// FAILURE MODEL:
//   The first malformed item aborts the document. Nothing extracted from the
//   document is returned, so the four tables always describe the same items.
//
// =============================================================================

package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/transform"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
)

// Options controls value transforms during extraction.
type Options struct {
	// MonthPolicy decides how timestamps with unknown month names are handled.
	// Default: transform.MonthReject
	MonthPolicy transform.MonthPolicy
}

// =============================================================================
// EXTRACTION
// =============================================================================

// Extract produces the four record lists of a document. Records are returned
// as extracted; deduplication happens when the tables are materialized.
func Extract(doc *jsonparser.Document, opts Options) (*types.Tables, error) {
	tables := &types.Tables{}
	for i, raw := range doc.Items {
		part, err := ExtractItem(i, raw, opts)
		if err != nil {
			return nil, err
		}
		tables.Append(part)
	}
	return tables, nil
}

// ExtractItem produces the rows contributed by the item at position index.
// Any failure is a *MalformedRecordError.
func ExtractItem(index int, raw json.RawMessage, opts Options) (*types.Tables, error) {
	w := &walker{index: index, opts: opts}

	src, err := jsonparser.DecodeItem(raw)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, w.fail(typeErr.Field, fmt.Errorf("%w: got JSON %s", ErrWrongShape, typeErr.Value))
		}
		return nil, w.fail("", err)
	}

	return w.item(src)
}

// walker carries the position of the item being extracted so every error can
// name it.
type walker struct {
	index  int
	itemID string
	opts   Options
}

func (w *walker) item(src *jsonparser.Item) (*types.Tables, error) {
	id, err := w.integer("ItemID", src.ItemID)
	if err != nil {
		return nil, err
	}
	w.itemID = id
	itemID := types.Text(id)

	name, err := w.required("Name", src.Name)
	if err != nil {
		return nil, err
	}
	description, err := w.optional("Description", src.Description)
	if err != nil {
		return nil, err
	}
	if description.Valid {
		description = types.Text(transform.Escape(strings.TrimSpace(description.Text)))
	}

	currently, err := w.money("Currently", src.Currently)
	if err != nil {
		return nil, err
	}
	firstBid, err := w.money("First_Bid", src.FirstBid)
	if err != nil {
		return nil, err
	}
	buyPrice, err := w.money("Buy_Price", src.BuyPrice)
	if err != nil {
		return nil, err
	}
	numberOfBids, err := w.count("Number_of_Bids", src.NumberOfBids)
	if err != nil {
		return nil, err
	}

	started, err := w.timestamp("Started", src.Started)
	if err != nil {
		return nil, err
	}
	ends, err := w.timestamp("Ends", src.Ends)
	if err != nil {
		return nil, err
	}

	if src.Seller == nil {
		return nil, w.fail("Seller", ErrMissingField)
	}
	sellerID, err := w.required("Seller.UserID", src.Seller.UserID)
	if err != nil {
		return nil, err
	}
	sellerRating, err := w.required("Seller.Rating", src.Seller.Rating)
	if err != nil {
		return nil, err
	}
	country, err := w.optional("Country", src.Country)
	if err != nil {
		return nil, err
	}
	location, err := w.optional("Location", src.Location)
	if err != nil {
		return nil, err
	}

	out := &types.Tables{}
	out.Items = append(out.Items, types.Item{
		ID:           itemID,
		Name:         types.Text(transform.Escape(strings.TrimSpace(name))),
		Currently:    currently,
		FirstBid:     firstBid,
		NumberOfBids: numberOfBids,
		BuyPrice:     buyPrice,
		SellerID:     types.Text(sellerID),
		Ends:         ends,
		Started:      started,
		Description:  description,
	})

	for j, c := range src.Category {
		category, err := w.required(fmt.Sprintf("Category[%d]", j), c)
		if err != nil {
			return nil, err
		}
		out.Categories = append(out.Categories, types.Category{
			ItemID:   itemID,
			Category: types.Text(category),
		})
	}

	// Sellers carry only id and rating; location and country live on the item.
	out.Users = append(out.Users, types.User{
		UserID:   types.Text(sellerID),
		Country:  country,
		Location: location,
		Rating:   types.Text(sellerRating),
	})

	for j, envelope := range src.Bids {
		bid, bidder, err := w.bid(j, envelope, itemID)
		if err != nil {
			return nil, err
		}
		out.Bids = append(out.Bids, bid)
		out.Users = append(out.Users, bidder)
	}

	return out, nil
}

// bid extracts one element of the "Bids" list into a bid row and the bidder's
// user row.
func (w *walker) bid(j int, envelope jsonparser.BidEnvelope, itemID types.Value) (types.Bid, types.User, error) {
	prefix := fmt.Sprintf("Bids[%d].Bid", j)
	if envelope.Bid == nil {
		return types.Bid{}, types.User{}, w.fail(prefix, ErrMissingField)
	}
	src := envelope.Bid
	if src.Bidder == nil {
		return types.Bid{}, types.User{}, w.fail(prefix+".Bidder", ErrMissingField)
	}

	bidderID, err := w.required(prefix+".Bidder.UserID", src.Bidder.UserID)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}
	rating, err := w.required(prefix+".Bidder.Rating", src.Bidder.Rating)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}
	country, err := w.optional(prefix+".Bidder.Country", src.Bidder.Country)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}
	location, err := w.optional(prefix+".Bidder.Location", src.Bidder.Location)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}
	when, err := w.timestamp(prefix+".Time", src.Time)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}
	amount, err := w.required(prefix+".Amount", src.Amount)
	if err != nil {
		return types.Bid{}, types.User{}, err
	}

	bid := types.Bid{
		BidderID: types.Text(bidderID),
		ItemID:   itemID,
		Time:     when,
		Amount:   types.Text(transform.CurrencyString(amount)),
	}
	user := types.User{
		UserID:   types.Text(bidderID),
		Country:  country,
		Location: location,
		Rating:   types.Text(rating),
	}
	return bid, user, nil
}

// =============================================================================
// FIELD HELPERS
// =============================================================================

func (w *walker) fail(field string, err error) error {
	return &MalformedRecordError{
		Index:  w.index,
		ItemID: w.itemID,
		Field:  field,
		Err:    err,
	}
}

// required returns the text of a field that must be a string or number.
func (w *walker) required(field string, t jsonparser.Text) (string, error) {
	switch {
	case t.Present():
		return t.Value, nil
	case t.Absent():
		return "", w.fail(field, ErrMissingField)
	default:
		return "", w.fail(field, fmt.Errorf("%w: got JSON %s", ErrWrongShape, t.Kind))
	}
}

// optional returns a present value, or the absent value for missing/null.
func (w *walker) optional(field string, t jsonparser.Text) (types.Value, error) {
	switch {
	case t.Present():
		return types.Text(t.Value), nil
	case t.Absent():
		return types.Null(), nil
	default:
		return types.Null(), w.fail(field, fmt.Errorf("%w: got JSON %s", ErrWrongShape, t.Kind))
	}
}

// money is an optional currency field.
func (w *walker) money(field string, t jsonparser.Text) (types.Value, error) {
	v, err := w.optional(field, t)
	if err != nil {
		return v, err
	}
	return transform.Currency(v), nil
}

// integer is a required field holding a base-10 integer. The canonical
// spelling is returned, so "0042" becomes "42".
func (w *walker) integer(field string, t jsonparser.Text) (string, error) {
	s, err := w.required(field, t)
	if err != nil {
		return "", err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return "", w.fail(field, fmt.Errorf("%w: %q", ErrNotInteger, s))
	}
	return strconv.FormatInt(n, 10), nil
}

// count is a required integer that may be money-formatted, e.g. "1,024".
func (w *walker) count(field string, t jsonparser.Text) (types.Value, error) {
	s, err := w.required(field, t)
	if err != nil {
		return types.Null(), err
	}
	n, err := strconv.ParseInt(transform.CurrencyString(s), 10, 64)
	if err != nil {
		return types.Null(), w.fail(field, fmt.Errorf("%w: %q", ErrNotInteger, s))
	}
	return types.Text(strconv.FormatInt(n, 10)), nil
}

// timestamp is a required "Mon-DD-YY HH:MM:SS" field.
func (w *walker) timestamp(field string, t jsonparser.Text) (types.Value, error) {
	s, err := w.required(field, t)
	if err != nil {
		return types.Null(), err
	}
	out, err := transform.Timestamp(s, w.opts.MonthPolicy)
	if err != nil {
		return types.Null(), w.fail(field, err)
	}
	return types.Text(out), nil
}
