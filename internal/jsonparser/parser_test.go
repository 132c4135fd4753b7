package jsonparser

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ReadsItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items-0.json")
	body := "\xef\xbb\xbf" + `{"Items": [{"ItemID": "1"}, {"ItemID": "2"}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.SourceFile)
	assert.Equal(t, 2, doc.ItemCount())
}

func TestParse_MissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecode_Envelope(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		missingItems bool
	}{
		{name: "not_json", body: `{"Items": [`},
		{name: "no_items_member", body: `{"Listings": []}`, missingItems: true},
		{name: "null_items", body: `{"Items": null}`, missingItems: true},
		{name: "items_not_array", body: `{"Items": {"ItemID": "1"}}`, missingItems: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.body), "doc.json")
			require.Error(t, err)

			var docErr *DocumentError
			require.True(t, errors.As(err, &docErr))
			assert.Equal(t, "doc.json", docErr.Path)
			assert.Equal(t, tc.missingItems, errors.Is(err, ErrMissingItems))
		})
	}
}

func TestDecode_EmptyItems(t *testing.T) {
	doc, err := Decode([]byte(`{"Items": []}`), "empty.json")
	require.NoError(t, err)
	assert.Zero(t, doc.ItemCount())
}

func TestDecodeItem_ScalarKinds(t *testing.T) {
	raw := json.RawMessage(`{
		"ItemID": 1043374545,
		"Name": "Pot \"A\"",
		"Buy_Price": null,
		"Location": {"City": "x"},
		"Country": ["USA"],
		"Description": true,
		"Category": ["A", null],
		"Seller": {"UserID": "s1", "Rating": 1035},
		"Bids": [{"Bid": {"Bidder": {"UserID": "b1", "Rating": "7"}, "Time": "Dec-04-01 08:00:00", "Amount": "$1.00"}}]
	}`)

	item, err := DecodeItem(raw)
	require.NoError(t, err)

	assert.Equal(t, Text{Value: "1043374545", Kind: KindNumber}, item.ItemID)
	assert.Equal(t, Text{Value: `Pot "A"`, Kind: KindString}, item.Name)
	assert.Equal(t, KindNull, item.BuyPrice.Kind)
	assert.True(t, item.BuyPrice.Absent())
	assert.Equal(t, KindObject, item.Location.Kind)
	assert.Equal(t, KindArray, item.Country.Kind)
	assert.Equal(t, KindBool, item.Description.Kind)
	assert.True(t, item.Currently.Absent())
	assert.Equal(t, KindMissing, item.Currently.Kind)

	require.Len(t, item.Category, 2)
	assert.True(t, item.Category[0].Present())
	assert.True(t, item.Category[1].Absent())

	require.NotNil(t, item.Seller)
	assert.Equal(t, "1035", item.Seller.Rating.Value)

	require.Len(t, item.Bids, 1)
	require.NotNil(t, item.Bids[0].Bid)
	require.NotNil(t, item.Bids[0].Bid.Bidder)
	assert.Equal(t, "b1", item.Bids[0].Bid.Bidder.UserID.Value)
	assert.True(t, item.Bids[0].Bid.Bidder.Location.Absent())
}

func TestDecodeItem_WrongNestedShape(t *testing.T) {
	_, err := DecodeItem(json.RawMessage(`{"ItemID": "1", "Seller": "someone"}`))
	require.Error(t, err)

	var typeErr *json.UnmarshalTypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "Seller", typeErr.Field)
}
