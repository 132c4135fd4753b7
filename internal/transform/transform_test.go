package transform

import (
	"errors"
	"testing"

	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencyString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "dollars_with_thousands", input: "$3,453.23", want: "3453.23"},
		{name: "plain_amount", input: "12.50", want: "12.50"},
		{name: "empty", input: "", want: ""},
		{name: "integer_count", input: "12", want: "12"},
		{name: "spaces_and_symbols", input: " $ 1,000,000 ", want: "1000000"},
		{name: "sign_is_dropped", input: "-$5.00", want: "5.00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, CurrencyString(tc.input))
		})
	}
}

func TestCurrency_AbsentStaysAbsent(t *testing.T) {
	assert.Equal(t, types.Null(), Currency(types.Null()))
	assert.Equal(t, types.Text("3453.23"), Currency(types.Text("$3,453.23")))
	assert.Equal(t, types.Text(""), Currency(types.Text("")))
}

func TestTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		policy MonthPolicy
		want   string
	}{
		{name: "december", input: "Dec-21-01 12:05:00", want: "2001-12-21 12:05:00"},
		{name: "january", input: "Jan-02-00 00:00:01", want: "2000-01-02 00:00:01"},
		{name: "surrounding_space", input: "  Sep-30-01 23:59:59 ", want: "2001-09-30 23:59:59"},
		{name: "passthrough_unknown", input: "Foo-21-01 12:05:00", policy: MonthPassThrough, want: "2001-Foo-21 12:05:00"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Timestamp(tc.input, tc.policy)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTimestamp_UnrecognizedMonth(t *testing.T) {
	_, err := Timestamp("Dez-21-01 12:05:00", MonthReject)
	require.Error(t, err)

	var monthErr *UnrecognizedMonthError
	require.True(t, errors.As(err, &monthErr))
	assert.Equal(t, "Dez", monthErr.Token)
	assert.Contains(t, err.Error(), `"Dez"`)
}

func TestTimestamp_BadLayout(t *testing.T) {
	for _, input := range []string{"", "Dec-21-01", "Dec-21 12:05:00", "Dec--01 12:05:00", "Dec-21-01 12:05:00 PM"} {
		_, err := Timestamp(input, MonthReject)
		require.ErrorIs(t, err, ErrTimestampLayout, input)
	}
}

func TestEscape(t *testing.T) {
	assert.Equal(t, `"O'Brien's ""Lot"""`, Escape(`O'Brien's "Lot"`))
	assert.Equal(t, `""`, Escape(""))
	assert.Equal(t, `"a|b"`, Escape("a|b"))
}

func TestParseMonthPolicy(t *testing.T) {
	p, err := ParseMonthPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MonthReject, p)

	p, err = ParseMonthPolicy("PassThrough")
	require.NoError(t, err)
	assert.Equal(t, MonthPassThrough, p)
	assert.Equal(t, "passthrough", p.String())

	_, err = ParseMonthPolicy("ignore")
	require.Error(t, err)
}

func TestMonth(t *testing.T) {
	m, ok := Month("Feb")
	require.True(t, ok)
	assert.Equal(t, "02", m)

	_, ok = Month("feb")
	assert.False(t, ok)
}
