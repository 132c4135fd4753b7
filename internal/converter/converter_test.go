package converter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/auction-json-to-dat/internal/extractor"
	"github.com/ginjaninja78/auction-json-to-dat/internal/jsonparser"
	"github.com/ginjaninja78/auction-json-to-dat/internal/materializer"
	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_WritesFourTables(t *testing.T) {
	stem := filepath.Join(t.TempDir(), "items-0")
	sink := materializer.NewWriter(materializer.DefaultOptions(), nil)

	result := New("testdata/items-0.json", stem, Options{}, nil, sink).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Len(t, result.OutputFiles, 4)
	assert.Equal(t, 2, result.Stats.ItemsRead)
	assert.Equal(t, map[string]int{"item": 2, "category": 3, "user": 3, "bid": 2}, result.Stats.Rows)

	assert.Equal(t,
		`1043374545|"Pyrex ""Butterprint"" Bowl"|1030.00|30.00|2|NULL|seller1|2001-12-13 18:10:40|2001-12-03 18:10:40|"Mint."`+"\n"+
			`1043374546|"Spoon"|5.00|5.00|0|9.99|seller1|2002-01-09 10:00:00|2002-01-02 10:00:00|NULL`+"\n",
		readLines(t, stem+"-item.dat"))

	assert.Equal(t,
		"1043374545|Collectibles\n1043374545|Kitchenware\n1043374546|Kitchenware\n",
		readLines(t, stem+"-category.dat"))

	assert.Equal(t,
		"seller1|USA|Dallas, TX|1035\nbidder1|France|Paris|12\nbidder2|NULL|NULL|3\n",
		readLines(t, stem+"-user.dat"))

	assert.Equal(t,
		"bidder1|1043374545|2001-12-04 08:00:00|31.00\nbidder2|1043374545|2001-12-05 09:30:00|1030.00\n",
		readLines(t, stem+"-bid.dat"))
}

func TestRun_MalformedDocumentWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No EXPECT: any call to the sink fails the test.
	sink := NewMockSink(ctrl)

	result := New("testdata/malformed.json", "out/malformed", Options{}, nil, sink).Run()
	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.False(t, result.Aborts())
	assert.Empty(t, result.OutputFiles)

	var malformed *extractor.MalformedRecordError
	require.True(t, errors.As(result.Error, &malformed))
	assert.Equal(t, 1, malformed.Index)
	assert.Equal(t, "ItemID", malformed.Field)
}

func TestRun_MissingDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	result := New(filepath.Join(t.TempDir(), "gone.json"), "gone", Options{}, nil, NewMockSink(ctrl)).Run()
	require.Error(t, result.Error)
	assert.False(t, result.Aborts())

	var docErr *jsonparser.DocumentError
	assert.True(t, errors.As(result.Error, &docErr))
}

func TestRun_DryRunSkipsSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	result := New("testdata/items-0.json", "items-0", Options{DryRun: true}, nil, NewMockSink(ctrl)).Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Empty(t, result.OutputFiles)
	assert.Equal(t, 2, result.Stats.Rows["item"])
}

func TestRun_SinksReceiveDeduplicatedTables(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	first := NewMockSink(ctrl)
	second := NewMockSink(ctrl)

	gomock.InOrder(
		first.EXPECT().Write("out/items-0", gomock.Any()).DoAndReturn(
			func(stem string, tables *types.Tables) ([]string, error) {
				assert.Len(t, tables.Categories, 3)
				assert.Len(t, tables.Users, 3)
				return []string{"a.dat"}, nil
			}),
		second.EXPECT().Write("out/items-0", gomock.Any()).Return([]string{"b.xlsx"}, nil),
	)

	result := New("testdata/items-0.json", "out/items-0", Options{}, nil, first, second).Run()
	require.NoError(t, result.Error)
	assert.Equal(t, []string{"a.dat", "b.xlsx"}, result.OutputFiles)
}

func TestRun_IOErrorAbortsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	failing := NewMockSink(ctrl)
	never := NewMockSink(ctrl)

	ioErr := &materializer.IOError{Op: "create", Path: "out/items-0-item.dat", Err: os.ErrPermission}
	failing.EXPECT().Write(gomock.Any(), gomock.Any()).Return(nil, ioErr)

	result := New("testdata/items-0.json", "out/items-0", Options{}, nil, failing, never).Run()
	require.Error(t, result.Error)
	assert.True(t, result.Aborts())
	assert.ErrorIs(t, result.Error, os.ErrPermission)
}
