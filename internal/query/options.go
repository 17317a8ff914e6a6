package query

import (
	"math"
	"strconv"
	"strings"
)

// Reserved parameter names. They control the pipeline and never reach the filter.
const (
	ParamSelect = "select"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

// Defaults applied when a control parameter is missing or malformed.
const (
	DefaultPage  = 1
	DefaultLimit = 1
)

// DefaultSort orders newest first.
var DefaultSort = []SortField{{Field: "createdAt", Descending: true}}

// IsReserved reports whether key is a control parameter.
func IsReserved(key string) bool {
	switch key {
	case ParamSelect, ParamSort, ParamPage, ParamLimit:
		return true
	}
	return false
}

// SortField is one sort key. The first field of a list is the primary key.
type SortField struct {
	Field      string
	Descending bool
}

// String renders the field the way it is written in a sort parameter.
func (s SortField) String() string {
	if s.Descending {
		return "-" + s.Field
	}
	return s.Field
}

// Options are the control parameters of a list request.
type Options struct {
	Select []string
	Sort   []SortField
	Page   int
	Limit  int
}

// Skip is the number of matching items before the page.
func (o Options) Skip() int {
	return (o.Page - 1) * o.Limit
}

// StartIndex is the zero-based index of the first item on the page.
func (o Options) StartIndex() int {
	return o.Skip()
}

// EndIndex is the index one past the last item the page can hold.
func (o Options) EndIndex() int {
	return o.Page * o.Limit
}

// Partition splits raw request parameters into the filter mapping and the
// parsed control options. raw is not modified.
func Partition(raw map[string]string) (FilterSpec, Options) {
	spec := make(FilterSpec, len(raw))
	for k, v := range raw {
		if !IsReserved(k) {
			spec[k] = v
		}
	}
	return spec, ParseOptions(raw)
}

// ParseOptions reads the reserved keys of raw. Missing or malformed values
// fall back to defaults rather than failing.
func ParseOptions(raw map[string]string) Options {
	limit := positiveInt(raw[ParamLimit], DefaultLimit)
	return Options{
		Select: parseSelect(raw[ParamSelect]),
		Sort:   ParseSort(raw[ParamSort]),
		Page:   min(positiveInt(raw[ParamPage], DefaultPage), MaxPage(limit)),
		Limit:  limit,
	}
}

// MaxPage is the largest page whose indices and neighbouring page numbers
// fit in an int for the given limit. Larger pages are clamped to it.
func MaxPage(limit int) int {
	if limit < 1 {
		limit = 1
	}
	return max(1, math.MaxInt/limit-1)
}

// ParseSort parses a comma-separated sort list; "-field" sorts descending.
// An empty list yields DefaultSort.
func ParseSort(raw string) []SortField {
	var fields []SortField
	for _, name := range splitList(raw) {
		desc := strings.HasPrefix(name, "-")
		name = strings.TrimLeft(name, "-+")
		if name == "" {
			continue
		}
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	if len(fields) == 0 {
		return append([]SortField(nil), DefaultSort...)
	}
	return fields
}

func parseSelect(raw string) []string {
	fields := splitList(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}
