package search

import (
	"fmt"
	"sort"
	"strings"
)

// Weight labels a lexeme position. D is the default.
type Weight uint8

const (
	WeightD Weight = iota
	WeightC
	WeightB
	WeightA
)

func (w Weight) String() string {
	return [...]string{"D", "C", "B", "A"}[w&3]
}

const (
	maxPosition        = 16383
	maxPositionsPerLex = 256
)

// Position is one occurrence of a lexeme.
type Position struct {
	Pos    int
	Weight Weight
}

// Vector maps lexemes to their sorted positions, like a tsvector.
type Vector map[string][]Position

// ToVector builds a vector of text with every position weighted D.
func ToVector(cfg *Config, text string) Vector {
	v := make(Vector)
	for _, lx := range cfg.Lexemes(text) {
		pos := lx.Pos
		if pos > maxPosition {
			pos = maxPosition
		}
		positions := v[lx.Word]
		if len(positions) >= maxPositionsPerLex {
			continue
		}
		if n := len(positions); n > 0 && positions[n-1].Pos == pos {
			continue
		}
		v[lx.Word] = append(positions, Position{Pos: pos})
	}
	return v
}

// SetWeight returns a copy of v with every position relabelled to w.
func (v Vector) SetWeight(w Weight) Vector {
	out := make(Vector, len(v))
	for lex, positions := range v {
		cp := make([]Position, len(positions))
		for i, p := range positions {
			cp[i] = Position{Pos: p.Pos, Weight: w}
		}
		out[lex] = cp
	}
	return out
}

// MaxPos returns the largest position in v.
func (v Vector) MaxPos() int {
	max := 0
	for _, positions := range v {
		for _, p := range positions {
			if p.Pos > max {
				max = p.Pos
			}
		}
	}
	return max
}

// Concat appends other to v, shifting other's positions past v's last one.
func (v Vector) Concat(other Vector) Vector {
	shift := v.MaxPos()
	out := make(Vector, len(v)+len(other))
	for lex, positions := range v {
		out[lex] = append([]Position(nil), positions...)
	}
	for lex, positions := range other {
		merged := out[lex]
		for _, p := range positions {
			pos := p.Pos + shift
			if pos > maxPosition {
				pos = maxPosition
			}
			merged = append(merged, Position{Pos: pos, Weight: p.Weight})
		}
		sort.SliceStable(merged, func(i, j int) bool { return merged[i].Pos < merged[j].Pos })
		if len(merged) > maxPositionsPerLex {
			merged = merged[:maxPositionsPerLex]
		}
		out[lex] = merged
	}
	return out
}

// Has reports whether lexeme occurs at pos.
func (v Vector) Has(lexeme string, pos int) bool {
	for _, p := range v[lexeme] {
		if p.Pos == pos {
			return true
		}
	}
	return false
}

// String renders v in tsvector text form, e.g. 'python':1A,4B.
func (v Vector) String() string {
	lexemes := make([]string, 0, len(v))
	for lex := range v {
		lexemes = append(lexemes, lex)
	}
	sort.Strings(lexemes)

	parts := make([]string, 0, len(lexemes))
	for _, lex := range lexemes {
		positions := make([]string, 0, len(v[lex]))
		for _, p := range v[lex] {
			if p.Weight == WeightD {
				positions = append(positions, fmt.Sprint(p.Pos))
			} else {
				positions = append(positions, fmt.Sprintf("%d%s", p.Pos, p.Weight))
			}
		}
		parts = append(parts, fmt.Sprintf("'%s':%s", lex, strings.Join(positions, ",")))
	}
	return strings.Join(parts, " ")
}

// DocumentVector weights the title A and the body B and concatenates them.
func DocumentVector(cfg *Config, title, body string) Vector {
	return ToVector(cfg, title).SetWeight(WeightA).Concat(ToVector(cfg, body).SetWeight(WeightB))
}
