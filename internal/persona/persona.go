// Package persona defines the move-selection biases layered on top of raw
// engine evaluations. Scoring functions are pure: a candidate plus the mean
// score of its candidate set map to a scalar utility.
package persona

import (
	"math"

	"github.com/acelab/ace/internal/engine"
)

// #region kind

// Kind identifies a persona scoring mode. The set is closed; dispatch is an
// exhaustive switch, not an open lookup table.
type Kind string

const (
	KindPure        Kind = "pure"
	KindAggressive  Kind = "aggressive"
	KindDefensive   Kind = "defensive"
	KindCalculative Kind = "calculative"
	KindRandom      Kind = "random"
	KindFallback    Kind = "fallback"
)

// ParseKind resolves a style name to a Kind. "hesitant" and "cautious" are
// aliases for calculative. Unknown names report false; callers fall back to
// pure.
func ParseKind(name string) (Kind, bool) {
	switch name {
	case "pure":
		return KindPure, true
	case "aggressive":
		return KindAggressive, true
	case "defensive":
		return KindDefensive, true
	case "calculative", "hesitant", "cautious":
		return KindCalculative, true
	case "random":
		return KindRandom, true
	case "fallback":
		return KindFallback, true
	}
	return KindPure, false
}

// Deterministic reports whether the kind selects by utility argmax.
func (k Kind) Deterministic() bool {
	switch k {
	case KindAggressive, KindDefensive, KindCalculative:
		return true
	}
	return false
}

// #endregion kind

// #region persona

// DefaultTemperature is the softmax temperature for the random persona.
const DefaultTemperature = 150.0

// Persona is a named selection bias, immutable for an engine session.
type Persona struct {
	Name        string
	Kind        Kind
	Temperature float64 // random kind only
}

// #endregion persona

// #region scoring

// MissingScore substitutes for an absent centipawn score in all persona
// arithmetic. The collision with a genuinely extreme evaluation is accepted;
// downstream code depends on this exact constant.
const MissingScore = -10000

// ScoreCP returns a candidate's centipawn score with sentinel substitution.
func ScoreCP(c engine.Candidate) float64 {
	if c.ScoreCP == nil {
		return MissingScore
	}
	return float64(*c.ScoreCP)
}

// MeanScore is the arithmetic mean of ScoreCP across a candidate set.
// Returns 0 for an empty set.
func MeanScore(cands []engine.Candidate) float64 {
	if len(cands) == 0 {
		return 0
	}
	var sum float64
	for _, c := range cands {
		sum += ScoreCP(c)
	}
	return sum / float64(len(cands))
}

// Score maps a candidate plus its set's mean score to a utility for a
// deterministic persona. Pure, random, and fallback kinds score as the raw
// engine evaluation so the function stays total.
func Score(k Kind, c engine.Candidate, mean float64) float64 {
	cp := ScoreCP(c)
	spread := math.Abs(cp - mean)

	switch k {
	case KindAggressive:
		u := cp + 0.02*spread
		if c.IsCapture {
			u += 80
		}
		if c.GivesCheck {
			u += 50
		}
		return u
	case KindDefensive:
		u := cp - 0.03*spread
		if c.IsCastle {
			u += 50
		}
		if !c.IsCapture {
			u += 20
		}
		if c.GivesCheck {
			u -= 15
		}
		return u
	case KindCalculative:
		u := cp - 0.03*spread + 0.5*float64(c.Depth)
		if (c.IsCapture || c.GivesCheck) && cp < 50 {
			u -= 8
		}
		return u
	case KindPure, KindRandom, KindFallback:
		return cp
	}
	return cp
}

// #endregion scoring
