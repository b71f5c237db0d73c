// Package engine wraps a UCI chess engine process as a CandidateProvider.
// Multipv-style candidate lists are built by running repeated searches, each
// restricted (via searchmoves) to the moves not yet ranked, so the k-th
// search yields the engine's k-th choice.
package engine

import (
	"fmt"
	"log"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
)

// #region uci-provider

// UCIProvider drives an external UCI engine bound to a fixed search depth.
type UCIProvider struct {
	eng   *uci.Engine
	depth int
}

// New launches the engine binary and applies session options. Option
// failures are logged and skipped, matching the tolerance of the engines
// this has been run against; only process startup is fatal.
func New(cfg Config) (*UCIProvider, error) {
	eng, err := uci.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("launch engine %s: %w", cfg.Path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady); err != nil {
		eng.Close()
		return nil, fmt.Errorf("uci handshake: %w", err)
	}

	opts := map[string]string{
		"Threads":     fmt.Sprint(cfg.Threads),
		"Hash":        fmt.Sprint(cfg.HashMB),
		"Skill Level": fmt.Sprint(cfg.SkillLevel),
	}
	for k, v := range cfg.Options {
		opts[k] = v
	}
	for name, value := range opts {
		if err := eng.Run(uci.CmdSetOption{Name: name, Value: value}); err != nil {
			log.Printf("engine: could not set option %s=%s: %v", name, value, err)
		}
	}

	return &UCIProvider{eng: eng, depth: cfg.Depth}, nil
}

// Depth returns the search depth the provider is bound to.
func (p *UCIProvider) Depth() int {
	return p.depth
}

// NewGame resets the engine's internal game state.
func (p *UCIProvider) NewGame() error {
	if err := p.eng.Run(uci.CmdUCINewGame, uci.CmdIsReady); err != nil {
		return fmt.Errorf("ucinewgame: %w", err)
	}
	return nil
}

// Close shuts the engine process down. Failures are returned, not
// swallowed; the caller decides whether to log them.
func (p *UCIProvider) Close() error {
	return p.eng.Close()
}

// #endregion uci-provider

// #region candidates

// Candidates returns up to k candidates for the position, best first.
// Engine failures degrade to whatever was collected so far (possibly
// nothing); per the provider contract this never reports an error.
func (p *UCIProvider) Candidates(pos *chess.Position, k int) []Candidate {
	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return nil
	}

	remaining := make([]*chess.Move, len(legal))
	copy(remaining, legal)

	var out []Candidate
	for len(out) < k && len(remaining) > 0 {
		err := p.eng.Run(
			uci.CmdPosition{Position: pos},
			uci.CmdGo{Depth: p.depth, SearchMoves: remaining},
		)
		if err != nil {
			log.Printf("engine: search failed at candidate %d: %v", len(out), err)
			break
		}
		res := p.eng.SearchResults()
		if res.BestMove == nil {
			break
		}
		mv := matchLegal(legal, res.BestMove)
		if mv == nil {
			log.Printf("engine: bestmove %s not among legal moves", res.BestMove)
			break
		}
		out = append(out, newCandidate(mv, res.Info, p.depth))
		remaining = removeMove(remaining, mv)
	}
	return out
}

// newCandidate builds a Candidate from a tagged legal move and the final
// search info line.
func newCandidate(mv *chess.Move, info uci.Info, depth int) Candidate {
	c := Candidate{
		Move:       mv,
		Depth:      info.Depth,
		PV:         info.PV,
		IsCapture:  mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
		GivesCheck: mv.HasTag(chess.Check),
		IsCastle:   mv.HasTag(chess.KingSideCastle) || mv.HasTag(chess.QueenSideCastle),
	}
	if c.Depth == 0 {
		c.Depth = depth
	}
	if info.Score.Mate != 0 {
		mate := info.Score.Mate
		c.ScoreMate = &mate
		cp := mateToCP(mate)
		c.ScoreCP = &cp
	} else {
		cp := info.Score.CP
		c.ScoreCP = &cp
	}
	return c
}

// mateScore anchors mate-to-centipawn conversion.
const mateScore = 100000

// mateToCP converts a mate-in-n score to centipawns, ±(mateScore−|n|), so
// shorter mates rank higher and mating lines always outrank quiet moves.
func mateToCP(mate int) int {
	if mate > 0 {
		return mateScore - mate
	}
	return -mateScore - mate
}

// matchLegal resolves an engine-reported move to the tagged move from
// ValidMoves, so capture/check/castle flags are populated.
func matchLegal(legal []*chess.Move, mv *chess.Move) *chess.Move {
	want := mv.String()
	for _, m := range legal {
		if m.String() == want {
			return m
		}
	}
	return nil
}

func removeMove(moves []*chess.Move, mv *chess.Move) []*chess.Move {
	out := moves[:0]
	for _, m := range moves {
		if m != mv {
			out = append(out, m)
		}
	}
	return out
}

// #endregion candidates
