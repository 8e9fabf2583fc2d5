// Package search implements the lexical ranking and trigram similarity used to
// answer blog search queries when the backing store cannot compute them itself.
// The arithmetic follows PostgreSQL's ts_rank and pg_trgm similarity so that the
// embedded store and the SQL store agree on which posts a query returns.
package search

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/ru"
	unicodetokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/snowballstem"
	"github.com/blevesearch/snowballstem/english"
	"github.com/blevesearch/snowballstem/russian"
)

// Names of the supported text search configurations.
const (
	ConfigRussian = "russian"
	ConfigEnglish = "english"
	ConfigSimple  = "simple"
)

// DefaultConfig is used when no configuration name is given.
const DefaultConfig = ConfigRussian

var ErrUnknownConfig = errors.New("unknown text search configuration")

var (
	englishStopWords = mustTokenMap(en.EnglishStopWords)
	russianStopWords = mustTokenMap(ru.RussianStopWords)
	tokenizer        = unicodetokenizer.NewUnicodeTokenizer()
)

func mustTokenMap(data []byte) analysis.TokenMap {
	m := analysis.NewTokenMap()
	if err := m.LoadBytes(data); err != nil {
		panic(fmt.Sprintf("search: loading stop words: %v", err))
	}
	return m
}

// Lexeme is a normalized word together with its 1-based position in the text.
// Stop words are dropped but still consume a position.
type Lexeme struct {
	Word string
	Pos  int
}

// Config turns raw text into lexemes the way a PostgreSQL text search
// configuration of the same name does.
type Config struct {
	name      string
	normalize func(word string) (string, bool)
}

// LookupConfig returns the configuration registered under name. An empty name
// selects DefaultConfig.
func LookupConfig(name string) (*Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ConfigRussian:
		return &Config{name: ConfigRussian, normalize: normalizeRussian}, nil
	case ConfigEnglish:
		return &Config{name: ConfigEnglish, normalize: normalizeEnglish}, nil
	case ConfigSimple:
		return &Config{name: ConfigSimple, normalize: normalizeSimple}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownConfig, name)
	}
}

// Name returns the configuration name, usable as a regconfig in SQL.
func (c *Config) Name() string {
	return c.name
}

// Lexemes tokenizes text and normalizes each token.
func (c *Config) Lexemes(text string) []Lexeme {
	var out []Lexeme
	pos := 0
	for _, tok := range tokenizer.Tokenize([]byte(text)) {
		word := strings.ToLower(string(tok.Term))
		if !hasWordRune(word) {
			continue
		}
		pos++
		lexeme, ok := c.normalize(word)
		if !ok || lexeme == "" {
			continue
		}
		out = append(out, Lexeme{Word: lexeme, Pos: pos})
	}
	return out
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func normalizeSimple(word string) (string, bool) {
	return word, true
}

func normalizeEnglish(word string) (string, bool) {
	if isNumber(word) {
		return word, true
	}
	if englishStopWords[word] {
		return "", false
	}
	env := snowballstem.NewEnv(word)
	english.Stem(env)
	return env.Current(), true
}

// normalizeRussian mirrors the stock "russian" configuration: ASCII words go
// through the English dictionary, everything else through the Russian one.
func normalizeRussian(word string) (string, bool) {
	if isASCII(word) {
		return normalizeEnglish(word)
	}
	if russianStopWords[word] {
		return "", false
	}
	env := snowballstem.NewEnv(word)
	russian.Stem(env)
	return env.Current(), true
}
