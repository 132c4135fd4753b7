package validation

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) *jsonparser.Document {
	t.Helper()
	doc, err := jsonparser.Decode([]byte(body), "doc.json")
	require.NoError(t, err)
	return doc
}

func TestValidate_CleanDocument(t *testing.T) {
	doc := decode(t, `{"Items": [`+
		`{"ItemID": "1", "Name": "Bowl", "Number_of_Bids": "0", "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}},`+
		`{"ItemID": "2", "Name": "Cup", "Number_of_Bids": "0", "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}}`+
		`]}`)

	result := Validate(doc, extractor.Options{})
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.ItemsValidated)
}

func TestValidate_CollectsEveryMalformedItem(t *testing.T) {
	doc := decode(t, `{"Items": [
		{"Name": "no id", "Number_of_Bids": "0", "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}},
		{"ItemID": "2", "Name": "ok", "Number_of_Bids": "0", "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}},
		{"ItemID": "3", "Name": "bad month", "Number_of_Bids": "0", "Started": "Foo-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}}
	]}`)

	result := Validate(doc, extractor.Options{})
	assert.False(t, result.IsValid)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 3, result.ItemsValidated)
	require.Len(t, result.Errors, 2)

	first := result.Errors[0]
	assert.Equal(t, SeverityError, first.Severity)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "ItemID", first.Field)
	assert.ErrorIs(t, first, extractor.ErrMissingField)

	second := result.Errors[1]
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "3", second.ItemID)
	assert.Equal(t, "Started", second.Field)
	var monthErr *transform.UnrecognizedMonthError
	assert.True(t, errors.As(second, &monthErr))
	assert.Contains(t, second.Error(), "[ERROR] Item #2 (ItemID 3), Field 'Started'")
}

func TestValidate_PassThroughMonthIsClean(t *testing.T) {
	doc := decode(t, `{"Items": [
		{"ItemID": "3", "Name": "x", "Number_of_Bids": "0", "Started": "Foo-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}}
	]}`)

	result := Validate(doc, extractor.Options{MonthPolicy: transform.MonthPassThrough})
	assert.True(t, result.IsValid)
}

func TestValidate_Warnings(t *testing.T) {
	doc := decode(t, `{"Items": [
		{"ItemID": "7", "Name": "x", "Number_of_Bids": "2", "Bids": [
			{"Bid": {"Bidder": {"UserID": "b", "Rating": "1"}, "Time": "Dec-04-01 08:00:00", "Amount": "$1.00"}}
		], "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}},
		{"ItemID": "7", "Name": "y", "Number_of_Bids": "0", "Started": "Dec-03-01 18:10:40", "Ends": "Dec-13-01 18:10:40", "Seller": {"UserID": "s1", "Rating": "10"}}
	]}`)

	result := Validate(doc, extractor.Options{})
	assert.True(t, result.IsValid)
	assert.Equal(t, 2, result.WarningCount)
	assert.Zero(t, result.ErrorCount)

	fields := []string{result.Errors[0].Field, result.Errors[1].Field}
	assert.ElementsMatch(t, []string{"Number_of_Bids", "ItemID"}, fields)

	strict := NewValidatorWithOptions(ValidationOptions{TreatWarningsAsErrors: true}).ValidateDocument(doc)
	assert.False(t, strict.IsValid)
}

func TestValidator_StopOnFirstError(t *testing.T) {
	doc := decode(t, `{"Items": [{"Name": "a"}, {"Name": "b"}]}`)

	result := NewValidatorWithOptions(ValidationOptions{StopOnFirstError: true}).ValidateDocument(doc)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 1, result.ItemsValidated)

	all := NewValidator().ValidateDocument(doc)
	assert.Equal(t, 2, all.ErrorCount)
}
