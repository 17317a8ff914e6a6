package query

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionWithoutReservedKeysIsIdentity(t *testing.T) {
	t.Parallel()

	tests := []map[string]string{
		{},
		{"name": "Devworks"},
		{"tuition[gt]": "1000", "careers[in]": "Business,Other", "housing": "true"},
		{"selected": "x", "sorted": "y", "pages": "2"},
	}

	for _, raw := range tests {
		spec, _ := Partition(raw)
		assert.Equal(t, FilterSpec(raw), spec)
	}
}

func TestPartitionStripsReservedKeys(t *testing.T) {
	t.Parallel()

	raw := map[string]string{
		"select":      "name,description",
		"sort":        "-name",
		"page":        "2",
		"limit":       "5",
		"tuition[gt]": "1000",
	}

	spec, opts := Partition(raw)

	assert.Equal(t, FilterSpec{"tuition[gt]": "1000"}, spec)
	assert.Equal(t, []string{"name", "description"}, opts.Select)
	assert.Equal(t, []SortField{{Field: "name", Descending: true}}, opts.Sort)
	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 5, opts.Limit)
	assert.Len(t, raw, 5, "input must not be modified")
}

func TestParseOptionsDefaults(t *testing.T) {
	t.Parallel()

	opts := ParseOptions(map[string]string{})

	assert.Nil(t, opts.Select)
	assert.Equal(t, []SortField{{Field: "createdAt", Descending: true}}, opts.Sort)
	assert.Equal(t, "-createdAt", opts.Sort[0].String())
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 1, opts.Limit)
	assert.Equal(t, 0, opts.StartIndex())
	assert.Equal(t, 1, opts.EndIndex())
}

func TestParseOptionsMalformedNumbersFallBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"abc", "xyz", 1, 1},
		{"0", "0", 1, 1},
		{"-2", "-10", 1, 1},
		{"2.5", "1e3", 1, 1},
		{" 3 ", "25", 3, 25},
	}

	for _, tc := range tests {
		opts := ParseOptions(map[string]string{"page": tc.page, "limit": tc.limit})
		assert.Equal(t, tc.wantPage, opts.Page, "page %q", tc.page)
		assert.Equal(t, tc.wantLimit, opts.Limit, "limit %q", tc.limit)
	}
}

func TestParseOptionsClampsHugePage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		page, limit string
	}{
		{strconv.Itoa(math.MaxInt), "10"},
		{strconv.Itoa(math.MaxInt), "1"},
		{strconv.Itoa(math.MaxInt / 10), "10"},
		{"2", strconv.Itoa(math.MaxInt)},
	}

	for _, tc := range tests {
		opts := ParseOptions(map[string]string{"page": tc.page, "limit": tc.limit})
		assert.Equal(t, MaxPage(opts.Limit), opts.Page, "page %s limit %s", tc.page, tc.limit)
		assert.GreaterOrEqual(t, opts.Skip(), 0)
		assert.Greater(t, opts.EndIndex(), opts.StartIndex())

		pg := Pipeline{LegacyPrevPage: true}.Paginate(opts, math.MaxInt)
		if pg.Next != nil {
			assert.Greater(t, pg.Next.Page, opts.Page)
		}
		if pg.Prev != nil {
			assert.Greater(t, pg.Prev.Page, opts.Page)
		}
	}
}

func TestPipelineOptionsClampsPageAfterLimitCap(t *testing.T) {
	t.Parallel()

	opts := Pipeline{MaxLimit: 100}.Options(map[string]string{
		"page":  strconv.Itoa(math.MaxInt),
		"limit": "10",
	})

	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, MaxPage(10), opts.Page)
	assert.Equal(t, (MaxPage(10)-1)*10, opts.Skip())

	pg := Pipeline{}.Paginate(opts, math.MaxInt)
	require.NotNil(t, pg.Prev)
	assert.Equal(t, opts.Page-1, pg.Prev.Page)
	require.NotNil(t, pg.Next)
	assert.Equal(t, opts.Page+1, pg.Next.Page)
}

func TestParseSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want []SortField
	}{
		{"", DefaultSort},
		{",", DefaultSort},
		{"name", []SortField{{Field: "name"}}},
		{"-averageCost,name", []SortField{{Field: "averageCost", Descending: true}, {Field: "name"}}},
		{"+weeks", []SortField{{Field: "weeks"}}},
		{"-", DefaultSort},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseSort(tc.raw), "sort %q", tc.raw)
	}
}

func TestParseSortDoesNotAliasDefault(t *testing.T) {
	t.Parallel()

	fields := ParseSort("")
	fields[0].Field = "name"
	assert.Equal(t, "createdAt", DefaultSort[0].Field)
}

func TestOptionsIndices(t *testing.T) {
	t.Parallel()

	for p := 1; p <= 6; p++ {
		for l := 1; l <= 6; l++ {
			opts := Options{Page: p, Limit: l}
			assert.Equal(t, (p-1)*l, opts.StartIndex())
			assert.Equal(t, (p-1)*l, opts.Skip())
			assert.Equal(t, p*l, opts.EndIndex())
		}
	}
}
