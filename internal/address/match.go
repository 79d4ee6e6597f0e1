package address

import "strings"

// Token-overlap acceptance thresholds.
const (
	BothSidesThreshold = 0.6
	OneSideThreshold   = 0.8
)

// MatchStage is the fuzzy strategy that accepted a pair of texts.
type MatchStage string

const (
	StageNone           MatchStage = ""
	StageContains       MatchStage = "contains"
	StageFoldedContains MatchStage = "folded_contains"
	StageSynonym        MatchStage = "synonym"
	StageTokenOverlap   MatchStage = "token_overlap"
)

// TextMatch is the outcome of comparing a stored text with an input text.
type TextMatch struct {
	Stage MatchStage
	// Score is overlap over stored tokens plus overlap over input tokens, in [0, 2].
	Score float64
	// Synonym is the canonical place when Stage is StageSynonym.
	Synonym string
}

// Matched reports whether any stage accepted.
func (m TextMatch) Matched() bool {
	return m.Stage != StageNone
}

// Matcher compares free-text addresses. It is pure and safe for concurrent use.
type Matcher struct {
	synonyms *SynonymTable
}

// NewMatcher creates a matcher; a nil table uses DefaultSynonyms.
func NewMatcher(synonyms *SynonymTable) *Matcher {
	if synonyms == nil {
		synonyms = DefaultSynonyms
	}
	return &Matcher{synonyms: synonyms}
}

// Match runs the stages in order and returns the first that accepts.
func (m *Matcher) Match(stored, input string) TextMatch {
	storedNorm, inputNorm := Normalize(stored), Normalize(input)
	if storedNorm == "" || inputNorm == "" {
		return TextMatch{}
	}

	routeRatio, inputRatio := Overlap(Tokens(stored), Tokens(input))
	score := routeRatio + inputRatio

	storedClean, inputClean := Clean(stored), Clean(input)
	if containsPhrase(storedClean, inputClean) || containsPhrase(inputClean, storedClean) {
		return TextMatch{Stage: StageContains, Score: score}
	}

	if containsPhrase(storedNorm, inputNorm) || containsPhrase(inputNorm, storedNorm) {
		return TextMatch{Stage: StageFoldedContains, Score: score}
	}

	if canonical, ok := m.synonyms.Shared(storedNorm, inputNorm); ok {
		return TextMatch{Stage: StageSynonym, Score: score, Synonym: canonical}
	}

	if OverlapAccepts(routeRatio, inputRatio) {
		return TextMatch{Stage: StageTokenOverlap, Score: score}
	}

	return TextMatch{Score: score}
}

// Overlap returns |stored ∩ input| / |stored| and |stored ∩ input| / |input| over distinct tokens.
func Overlap(stored, input []string) (storedRatio, inputRatio float64) {
	s := toSet(stored)
	in := toSet(input)
	if len(s) == 0 || len(in) == 0 {
		return 0, 0
	}

	common := 0
	for tok := range s {
		if _, ok := in[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(len(s)), float64(common) / float64(len(in))
}

// OverlapAccepts applies the token-overlap thresholds.
func OverlapAccepts(storedRatio, inputRatio float64) bool {
	return (storedRatio >= BothSidesThreshold && inputRatio >= BothSidesThreshold) ||
		storedRatio >= OneSideThreshold || inputRatio >= OneSideThreshold
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// containsPhrase reports whether phrase occurs in text on token boundaries.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}
