// Package stats reduces game records into summary statistics. Everything
// here is a pure fold over decoded annotations: missing data degrades to
// zero values or nil, never an error, so an annotation-free game still
// summarizes cleanly.
package stats

import (
	"math"

	"github.com/acelab/ace/internal/annotation"
	"github.com/acelab/ace/internal/pgn"
)

// #region summary

// Summary is the per-game statistical report. DeltaAvg is nil with no
// delta samples; DeltaStd needs at least two.
type Summary struct {
	Result             string         `json:"result"`
	Plies              int            `json:"plies"`
	CapturesPct        float64        `json:"captures_pct"`
	ChecksPct          float64        `json:"checks_pct"`
	CastlesPct         float64        `json:"castles_pct"`
	DeltaAvg           *float64       `json:"delta_avg"`
	DeltaStd           *float64       `json:"delta_std"`
	EngineAgreementPct float64        `json:"engine_agreement_pct"`
	StyleCounts        map[string]int `json:"styles_counts"`
}

// Summarize computes the full summary in a single pass over the game.
func Summarize(g *pgn.Game) Summary {
	s := Summary{
		Result:      g.Result(),
		StyleCounts: map[string]int{},
	}

	var caps, chks, cast, agree int
	var deltas []float64

	for _, ply := range g.Plies {
		s.Plies++
		f := annotation.Decode(ply.Comment)

		if feat := f.Str("feat"); len(feat) == 3 {
			if feat[0] == 'C' {
				caps++
			}
			if feat[1] == 'K' {
				chks++
			}
			if feat[2] == 'O' {
				cast++
			}
		}

		if d, ok := f.Int("delta_cp"); ok {
			deltas = append(deltas, float64(d))
		}

		best, bestOK := f.Move("best")
		chosen, chosenOK := f.Move("chosen")
		if bestOK && chosenOK && best == chosen {
			agree++
		}

		if style := f.Str("style"); style != "" {
			s.StyleCounts[style]++
		}
	}

	s.CapturesPct = round1(pct(caps, s.Plies))
	s.ChecksPct = round1(pct(chks, s.Plies))
	s.CastlesPct = round1(pct(cast, s.Plies))
	s.EngineAgreementPct = round1(pct(agree, s.Plies))

	if len(deltas) > 0 {
		avg := round1(mean(deltas))
		s.DeltaAvg = &avg
	}
	if len(deltas) > 1 {
		std := round1(pstdev(deltas))
		s.DeltaStd = &std
	}
	return s
}

// #endregion summary

// #region extraction

// EvalCurve extracts the eval_cp series across plies, skipping plies
// without one.
func EvalCurve(g *pgn.Game) []int {
	var out []int
	for _, ply := range g.Plies {
		if v, ok := annotation.Decode(ply.Comment).Int("eval_cp"); ok {
			out = append(out, v)
		}
	}
	return out
}

// Deltas extracts the delta_cp series across plies.
func Deltas(g *pgn.Game) []int {
	var out []int
	for _, ply := range g.Plies {
		if v, ok := annotation.Decode(ply.Comment).Int("delta_cp"); ok {
			out = append(out, v)
		}
	}
	return out
}

// Agreement reports how often the chosen move matched the engine's best,
// counting only plies where both fields are present. The percentage is
// over that count, unlike the summary which divides by total plies.
func Agreement(g *pgn.Game) (agree, total int, percent float64) {
	for _, ply := range g.Plies {
		f := annotation.Decode(ply.Comment)
		best, bestOK := f.Move("best")
		chosen, chosenOK := f.Move("chosen")
		if !bestOK || !chosenOK {
			continue
		}
		total++
		if best == chosen {
			agree++
		}
	}
	return agree, total, pct(agree, total)
}

// OutcomeCounts tallies result strings across many games.
func OutcomeCounts(games []*pgn.Game) map[string]int {
	counts := map[string]int{}
	for _, g := range games {
		counts[g.Result()]++
	}
	return counts
}

// #endregion extraction

// #region math-helpers

func pct(x, n int) float64 {
	if n == 0 {
		return 0
	}
	return 100 * float64(x) / float64(n)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// pstdev is the population standard deviation.
func pstdev(xs []float64) float64 {
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// #endregion math-helpers
