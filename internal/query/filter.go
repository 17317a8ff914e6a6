package query

import (
	"sort"
	"strings"
)

// Operator is a comparison applied by a filter condition.
type Operator string

// Supported operators. OpEq is implied when a key carries no operator suffix.
const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// operatorTokens are the tokens accepted in bracket position, e.g. tuition[gt].
var operatorTokens = map[string]Operator{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// ParseOperator resolves a bracket token to an Operator.
func ParseOperator(token string) (Operator, bool) {
	op, ok := operatorTokens[token]
	return op, ok
}

// FilterSpec is the raw filter mapping: request parameters minus the
// reserved control keys.
type FilterSpec map[string]string

// Condition constrains one (possibly nested) field.
type Condition struct {
	// Path is the field path, e.g. [location city] for location[city].
	Path   []string
	Op     Operator
	Values []string
}

// Field returns the dotted field name, e.g. "location.city".
func (c Condition) Field() string {
	return strings.Join(c.Path, ".")
}

// Value returns the first value, which is the only value for every operator but OpIn.
func (c Condition) Value() string {
	if len(c.Values) == 0 {
		return ""
	}
	return c.Values[0]
}

// Filter is a conjunction of conditions, ordered by field key.
type Filter struct {
	Conditions []Condition
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return len(f.Conditions) == 0
}

// ParseFilter translates a FilterSpec into a Filter. Keys are parsed with
// bracket syntax:
//
//	tuition[gt]=1000        -> tuition > 1000
//	location[city]=Boston   -> location.city = Boston
//	careers[in]=UI/UX,Other -> careers IN (UI/UX, Other)
//
// Malformed keys are kept whole as literal field names.
func ParseFilter(spec FilterSpec) Filter {
	keys := make([]string, 0, len(spec))
	for k := range spec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := Filter{Conditions: make([]Condition, 0, len(keys))}
	for _, k := range keys {
		f.Conditions = append(f.Conditions, parseCondition(k, spec[k]))
	}
	return f
}

func parseCondition(key, raw string) Condition {
	segments, ok := newKeyParser(key).parse()
	if !ok {
		return Condition{Path: []string{key}, Op: OpEq, Values: []string{raw}}
	}

	cond := Condition{Path: segments, Op: OpEq}
	if len(segments) > 1 {
		if op, isOp := ParseOperator(segments[len(segments)-1]); isOp {
			cond.Path = segments[:len(segments)-1]
			cond.Op = op
		}
	}

	if cond.Op == OpIn {
		cond.Values = splitList(raw)
	} else {
		cond.Values = []string{raw}
	}
	return cond
}

// keyParser is a recursive-descent parser for the grammar
//
//	key     = ident { "[" ident "]" }
//	ident   = 1*( any char except "[" and "]" )
type keyParser struct {
	input string
	pos   int
}

func newKeyParser(input string) *keyParser {
	return &keyParser{input: input}
}

func (p *keyParser) parse() ([]string, bool) {
	head, ok := p.ident()
	if !ok {
		return nil, false
	}
	return p.brackets([]string{head})
}

func (p *keyParser) brackets(path []string) ([]string, bool) {
	if p.pos == len(p.input) {
		return path, true
	}
	if !p.accept('[') {
		return nil, false
	}
	seg, ok := p.ident()
	if !ok || !p.accept(']') {
		return nil, false
	}
	return p.brackets(append(path, seg))
}

func (p *keyParser) ident() (string, bool) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != '[' && p.input[p.pos] != ']' {
		p.pos++
	}
	if p.pos == start {
		return "", false
	}
	return p.input[start:p.pos], true
}

func (p *keyParser) accept(c byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
