package search

// Matches reports whether v satisfies q, the in-process equivalent of v @@ q.
// A query made only of stop words matches nothing.
func (v Vector) Matches(q Query) bool {
	for _, clause := range q.Clauses {
		if v.matchesClause(clause) {
			return true
		}
	}
	return false
}

func (v Vector) matchesClause(clause Clause) bool {
	for _, item := range clause {
		if v.matchesItem(item) == item.Negated {
			return false
		}
	}
	return true
}

func (v Vector) matchesItem(item Item) bool {
	first := item.Terms[0]
	for _, start := range v[first.Lexeme] {
		ok := true
		for _, t := range item.Terms[1:] {
			if !v.Has(t.Lexeme, start.Pos+t.Offset) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
