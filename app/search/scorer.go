package search

// Thresholds are the conjunctive cut-offs a post must pass to be returned.
// Rank is inclusive, similarity is strict.
type Thresholds struct {
	MinRank       float64 `mapstructure:"min_rank"`
	MinSimilarity float64 `mapstructure:"min_similarity"`
}

// DefaultThresholds are rank >= 0.3 and similarity > 0.1.
var DefaultThresholds = Thresholds{MinRank: 0.3, MinSimilarity: 0.1}

// Score is the evaluation of one document against a query. Matched records
// whether the document satisfies the query; it does not gate acceptance.
type Score struct {
	Matched    bool
	Rank       float64
	Similarity float64
}

// Accept reports whether s passes both thresholds.
func (t Thresholds) Accept(s Score) bool {
	return s.Rank >= t.MinRank && s.Similarity > t.MinSimilarity
}

// Scorer evaluates documents against one parsed query.
type Scorer struct {
	cfg     *Config
	query   Query
	weights Weights
}

// NewScorer parses raw with cfg.
func NewScorer(cfg *Config, raw string) *Scorer {
	return &Scorer{
		cfg:     cfg,
		query:   ParseWebSearch(cfg, raw),
		weights: DefaultWeights,
	}
}

// Query returns the parsed query.
func (s *Scorer) Query() Query {
	return s.query
}

// Score ranks the title/body document and computes the title similarity.
func (s *Scorer) Score(title, body string) Score {
	v := DocumentVector(s.cfg, title, body)
	return Score{
		Matched:    v.Matches(s.query),
		Rank:       Rank(v, s.query, s.weights),
		Similarity: Similarity(title, s.query.Raw),
	}
}
