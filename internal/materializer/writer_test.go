package materializer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/auction-json-to-dat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTables() *types.Tables {
	seller := types.User{UserID: types.Text("seller1"), Country: types.Text("USA"), Location: types.Text("Dallas, TX"), Rating: types.Text("1035")}
	return &types.Tables{
		Items: []types.Item{{
			ID:           types.Text("1043374545"),
			Name:         types.Text(`"Pot ""A"""`),
			Currently:    types.Text("30.00"),
			FirstBid:     types.Text("30.00"),
			NumberOfBids: types.Text("0"),
			BuyPrice:     types.Null(),
			SellerID:     types.Text("seller1"),
			Ends:         types.Text("2001-12-13 18:10:40"),
			Started:      types.Text("2001-12-03 18:10:40"),
			Description:  types.Text(`"Mint."`),
		}},
		Categories: []types.Category{
			{ItemID: types.Text("1043374545"), Category: types.Text("Collectibles")},
			{ItemID: types.Text("1043374545"), Category: types.Text("Kitchenware")},
			{ItemID: types.Text("1043374545"), Category: types.Text("Collectibles")},
		},
		Users: []types.User{seller, seller},
	}
}

func TestRender_ItemLine(t *testing.T) {
	lines := Render(types.ItemTable, sampleTables().Items, DefaultOptions())

	require.Len(t, lines, 1)
	assert.Equal(t,
		`1043374545|"Pot ""A"""|30.00|30.00|0|NULL|seller1|2001-12-13 18:10:40|2001-12-03 18:10:40|"Mint."`,
		lines[0])
}

func TestRender_NullAndEmptyDiffer(t *testing.T) {
	users := []types.User{
		{UserID: types.Text("u1"), Country: types.Null(), Location: types.Text(""), Rating: types.Text("5")},
	}

	lines := Render(types.UserTable, users, Options{Delimiter: ",", NullMarker: `\N`})
	assert.Equal(t, []string{`u1,\N,,5`}, lines)
}

func TestRender_DeduplicatesInFirstOccurrenceOrder(t *testing.T) {
	lines := Render(types.CategoryTable, sampleTables().Categories, DefaultOptions())
	assert.Equal(t, []string{
		"1043374545|Collectibles",
		"1043374545|Kitchenware",
	}, lines)

	// Rendering already-unique rows changes nothing.
	again := Render(types.CategoryTable, types.Unique(sampleTables().Categories), DefaultOptions())
	assert.Equal(t, lines, again)
}

func TestRender_DropsRecordsThatRenderAlike(t *testing.T) {
	users := []types.User{
		{UserID: types.Text("u"), Country: types.Null(), Location: types.Null(), Rating: types.Text("1")},
		{UserID: types.Text("u"), Country: types.Text("NULL"), Location: types.Null(), Rating: types.Text("1")},
		{UserID: types.Text("v"), Country: types.Text("NULL"), Location: types.Null(), Rating: types.Text("1")},
	}

	lines := Render(types.UserTable, users, DefaultOptions())
	assert.Equal(t, []string{"u|NULL|NULL|1", "v|NULL|NULL|1"}, lines)
}

func TestRenderAll_TableOrder(t *testing.T) {
	rendered := RenderAll(sampleTables(), DefaultOptions())

	names := make([]string, len(rendered))
	for i, r := range rendered {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"item", "category", "user", "bid"}, names)
	assert.Empty(t, rendered[3].Lines)
	assert.Len(t, rendered[2].Lines, 1)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "items-0-bid.dat"), OutputPath(filepath.Join("out", "items-0"), "bid"))
}

func TestWriter_WritesFourFiles(t *testing.T) {
	dir := t.TempDir()
	stem := filepath.Join(dir, "nested", "items-0")

	paths, err := NewWriter(DefaultOptions(), nil).Write(stem, sampleTables())
	require.NoError(t, err)
	assert.Equal(t, []string{
		stem + "-item.dat",
		stem + "-category.dat",
		stem + "-user.dat",
		stem + "-bid.dat",
	}, paths)

	category, err := os.ReadFile(stem + "-category.dat")
	require.NoError(t, err)
	assert.Equal(t, "1043374545|Collectibles\n1043374545|Kitchenware\n", string(category))

	user, err := os.ReadFile(stem + "-user.dat")
	require.NoError(t, err)
	assert.Equal(t, "seller1|USA|Dallas, TX|1035\n", string(user))

	// A table with no rows is still written, empty.
	bid, err := os.ReadFile(stem + "-bid.dat")
	require.NoError(t, err)
	assert.Empty(t, bid)

	entries, err := os.ReadDir(filepath.Dir(stem))
	require.NoError(t, err)
	assert.Len(t, entries, 4, "temp files should not be left behind")
}

func TestWriter_OverwritesPreviousOutput(t *testing.T) {
	stem := filepath.Join(t.TempDir(), "items-0")
	require.NoError(t, os.WriteFile(stem+"-item.dat", []byte("stale\n"), 0644))

	_, err := NewWriter(DefaultOptions(), nil).Write(stem, &types.Tables{})
	require.NoError(t, err)

	item, err := os.ReadFile(stem + "-item.dat")
	require.NoError(t, err)
	assert.Empty(t, item)
}

func TestWriter_IOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	// The parent of the stem is a regular file, so nothing can be created.
	paths, err := NewWriter(DefaultOptions(), nil).Write(filepath.Join(blocker, "items-0"), sampleTables())
	require.Error(t, err)
	assert.Nil(t, paths)

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "mkdir", ioErr.Op)
	assert.Equal(t, blocker, ioErr.Path)
}
