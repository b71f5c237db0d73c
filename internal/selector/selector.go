// Package selector picks one move per ply by combining engine candidates
// with a persona bias, and produces the decision record that gets embedded
// in the game annotation.
package selector

import (
	"math"
	"math/rand"
	"time"

	"github.com/notnil/chess"

	"github.com/acelab/ace/internal/annotation"
	"github.com/acelab/ace/internal/engine"
	"github.com/acelab/ace/internal/persona"
)

// #region decision

// DefaultCandidates is the candidate count requested per ply.
const DefaultCandidates = 4

// Decision is the outcome of one ply's selection. Move is nil only when
// the position has no legal move at all.
type Decision struct {
	Move           *chess.Move
	Ply            int
	CandidateCount int
	Record         annotation.Record
}

// #endregion decision

// #region selector

// Selector binds a candidate provider to a persona. All randomness (random
// persona draws, fallback picks) flows through the injected rand source.
type Selector struct {
	provider engine.CandidateProvider
	persona  persona.Persona
	k        int
	rng      *rand.Rand
}

// New creates a selector. k <= 0 uses DefaultCandidates; a nil rng gets a
// time-seeded source; a random persona without a temperature gets the
// default one, so directly constructed personas behave like loaded ones.
func New(provider engine.CandidateProvider, p persona.Persona, k int, rng *rand.Rand) *Selector {
	if k <= 0 {
		k = DefaultCandidates
	}
	if p.Kind == persona.KindRandom && p.Temperature <= 0 {
		p.Temperature = persona.DefaultTemperature
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{provider: provider, persona: p, k: k, rng: rng}
}

// Persona returns the persona the selector plays as.
func (s *Selector) Persona() persona.Persona {
	return s.persona
}

// #endregion selector

// #region select

// Select picks a move for the position. With no candidates and no legal
// moves the returned Decision has a nil Move and an all-absent fallback
// record; with legal moves but no candidates it picks uniformly at random
// and labels the record style "fallback" so statistics can tell safety-net
// picks from genuine persona decisions.
func (s *Selector) Select(pos *chess.Position, ply int) Decision {
	cands := s.provider.Candidates(pos, s.k)
	if len(cands) == 0 {
		return s.fallback(pos, ply)
	}

	best := cands[0]
	mean := persona.MeanScore(cands)

	var idx int
	switch {
	case s.persona.Kind == persona.KindRandom:
		values := make([]float64, len(cands))
		for i, c := range cands {
			values[i] = persona.ScoreCP(c)
		}
		idx = softmaxDraw(values, s.persona.Temperature, s.rng)
	case s.persona.Kind.Deterministic():
		idx = argmaxUtility(s.persona.Kind, cands, mean)
	default:
		// pure (and anything that resolves to it) takes the engine's top line
		idx = 0
	}

	chosen := cands[idx]
	delta := int(persona.ScoreCP(chosen) - persona.ScoreCP(best))

	return Decision{
		Move:           chosen.Move,
		Ply:            ply,
		CandidateCount: len(cands),
		Record: annotation.Record{
			EvalCP:   chosen.ScoreCP,
			Style:    string(s.persona.Kind),
			Best:     best.UCI(),
			BestCP:   best.ScoreCP,
			Chosen:   chosen.UCI(),
			ChosenCP: chosen.ScoreCP,
			DeltaCP:  &delta,
			Feat:     annotation.NewFeat(chosen.IsCapture, chosen.GivesCheck, chosen.IsCastle),
		},
	}
}

// argmaxUtility returns the index of the highest-utility candidate. Ties go
// to the lowest index, i.e. the candidate the engine ranked higher.
func argmaxUtility(k persona.Kind, cands []engine.Candidate, mean float64) int {
	best := 0
	bestU := persona.Score(k, cands[0], mean)
	for i := 1; i < len(cands); i++ {
		if u := persona.Score(k, cands[i], mean); u > bestU {
			best = i
			bestU = u
		}
	}
	return best
}

// fallback handles provider exhaustion. No legal move means game over, not
// an error.
func (s *Selector) fallback(pos *chess.Position, ply int) Decision {
	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return Decision{
			Ply:    ply,
			Record: annotation.Record{Style: string(persona.KindFallback)},
		}
	}
	mv := legal[s.rng.Intn(len(legal))]
	return Decision{
		Move: mv,
		Ply:  ply,
		Record: annotation.Record{
			Style:  string(persona.KindFallback),
			Chosen: mv.String(),
			Feat: annotation.NewFeat(
				mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
				mv.HasTag(chess.Check),
				mv.HasTag(chess.KingSideCastle) || mv.HasTag(chess.QueenSideCastle),
			),
		},
	}
}

// #endregion select

// #region softmax

// softmaxDraw samples an index with probability proportional to
// exp(v_i / T). Weights are computed relative to the maximum value so
// extreme value/temperature ratios stay finite; as T → 0 the draw
// degenerates to argmax and as T → ∞ to a uniform pick.
func softmaxDraw(values []float64, temp float64, rng *rand.Rand) int {
	const eps = 1e-9
	t := temp
	if t < eps {
		t = eps
	}

	maxV := values[0]
	for _, v := range values[1:] {
		if v > maxV {
			maxV = v
		}
	}

	weights := make([]float64, len(values))
	var total float64
	for i, v := range values {
		w := math.Exp((v - maxV) / t)
		weights[i] = w
		total += w
	}

	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if cum >= r {
			return i
		}
	}
	// floating-point edge: fall back to the last index
	return len(values) - 1
}

// #endregion softmax
