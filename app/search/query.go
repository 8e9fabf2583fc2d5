package search

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Term is one lexeme of an item. Offset is its distance from the first lexeme
// of the item, so a multi-term item only matches adjacent words.
type Term struct {
	Lexeme string
	Offset int
}

// Item is a single operand of a query: a lexeme or a phrase, possibly negated.
type Item struct {
	Negated bool
	Terms   []Term
}

// IsPhrase reports whether the item needs positional matching.
func (it Item) IsPhrase() bool {
	return len(it.Terms) > 1
}

// Clause is a conjunction of items.
type Clause []Item

// Operator is the root operator of a parsed query.
type Operator int

const (
	OpNone Operator = iota
	OpValue
	OpNot
	OpAnd
	OpPhrase
	OpOr
)

// Query is a disjunction of clauses, the normal form produced by web search
// syntax where AND binds tighter than OR.
type Query struct {
	Raw     string
	Clauses []Clause
}

type rawToken struct {
	text    string
	negated bool
	or      bool
}

// ParseWebSearch parses text with the rules of websearch_to_tsquery: quoted
// text is a phrase, a leading '-' negates, the word "or" separates
// alternatives and everything else is joined with AND.
func ParseWebSearch(cfg *Config, text string) Query {
	q := Query{Raw: text}
	var current Clause
	for _, tok := range scanWebSearch(text) {
		if tok.or {
			if len(current) > 0 {
				q.Clauses = append(q.Clauses, current)
				current = nil
			}
			continue
		}
		item, ok := buildItem(cfg, tok.text)
		if !ok {
			continue
		}
		item.Negated = tok.negated
		current = append(current, item)
	}
	if len(current) > 0 {
		q.Clauses = append(q.Clauses, current)
	}
	return q
}

func scanWebSearch(text string) []rawToken {
	runes := []rune(text)
	var tokens []rawToken
	negate := false
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			negate = false
			i++
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			tokens = append(tokens, rawToken{text: string(runes[i+1 : j]), negated: negate})
			negate = false
			i = j + 1
		case r == '-' && !negate:
			negate = true
			i++
		default:
			j := i
			for j < len(runes) && !unicode.IsSpace(runes[j]) && runes[j] != '"' {
				j++
			}
			word := string(runes[i:j])
			if strings.EqualFold(word, "or") && !negate {
				tokens = append(tokens, rawToken{or: true})
			} else {
				tokens = append(tokens, rawToken{text: word, negated: negate})
			}
			negate = false
			i = j
		}
	}
	return tokens
}

func buildItem(cfg *Config, text string) (Item, bool) {
	lexemes := cfg.Lexemes(text)
	if len(lexemes) == 0 {
		return Item{}, false
	}
	base := lexemes[0].Pos
	terms := make([]Term, len(lexemes))
	for i, lx := range lexemes {
		terms[i] = Term{Lexeme: lx.Word, Offset: lx.Pos - base}
	}
	return Item{Terms: terms}, true
}

// Empty reports whether nothing but stop words was given.
func (q Query) Empty() bool {
	return len(q.Clauses) == 0
}

// Root returns the operator at the top of the equivalent tsquery tree.
func (q Query) Root() Operator {
	switch {
	case len(q.Clauses) == 0:
		return OpNone
	case len(q.Clauses) > 1:
		return OpOr
	case len(q.Clauses[0]) > 1:
		return OpAnd
	}
	item := q.Clauses[0][0]
	switch {
	case item.Negated:
		return OpNot
	case item.IsPhrase():
		return OpPhrase
	default:
		return OpValue
	}
}

// Operands returns the distinct lexemes of the query, negated ones included.
func (q Query) Operands() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, clause := range q.Clauses {
		for _, item := range clause {
			for _, t := range item.Terms {
				if _, ok := seen[t.Lexeme]; ok {
					continue
				}
				seen[t.Lexeme] = struct{}{}
				out = append(out, t.Lexeme)
			}
		}
	}
	sort.Strings(out)
	return out
}

// String renders q in tsquery text form.
func (q Query) String() string {
	clauses := make([]string, 0, len(q.Clauses))
	for _, clause := range q.Clauses {
		items := make([]string, 0, len(clause))
		for _, item := range clause {
			items = append(items, item.String())
		}
		clauses = append(clauses, strings.Join(items, " & "))
	}
	return strings.Join(clauses, " | ")
}

func (it Item) String() string {
	var b strings.Builder
	if it.Negated {
		b.WriteByte('!')
		if it.IsPhrase() {
			b.WriteByte('(')
		}
	}
	for i, t := range it.Terms {
		if i > 0 {
			dist := t.Offset - it.Terms[i-1].Offset
			if dist == 1 {
				b.WriteString(" <-> ")
			} else {
				b.WriteString(" <")
				b.WriteString(strconv.Itoa(dist))
				b.WriteString("> ")
			}
		}
		b.WriteByte('\'')
		b.WriteString(t.Lexeme)
		b.WriteByte('\'')
	}
	if it.Negated && it.IsPhrase() {
		b.WriteByte(')')
	}
	return b.String()
}
