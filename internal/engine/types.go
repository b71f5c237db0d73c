package engine

import (
	"github.com/notnil/chess"
)

// #region candidate

// Candidate is one move option for a position, as reported by the engine.
// Rank is implied by position in the returned slice: index 0 is the
// provider's own best move. ScoreCP and ScoreMate are side-to-move POV;
// at most one of them is set.
type Candidate struct {
	Move       *chess.Move
	ScoreCP    *int
	ScoreMate  *int
	Depth      int
	PV         []*chess.Move
	IsCapture  bool
	GivesCheck bool
	IsCastle   bool
}

// UCI returns the candidate move in coordinate notation (e.g. "e2e4").
func (c Candidate) UCI() string {
	if c.Move == nil {
		return ""
	}
	return c.Move.String()
}

// #endregion candidate

// #region provider

// CandidateProvider returns an ordered list of move candidates for a
// position. Implementations must return an empty slice, never an error,
// when no evaluation is possible.
type CandidateProvider interface {
	Candidates(pos *chess.Position, k int) []Candidate
}

// #endregion provider

// #region config

// Config holds engine session settings. It is constructed once in main and
// passed to New; there is no package-level default instance.
type Config struct {
	Path       string
	Depth      int
	Threads    int
	HashMB     int
	SkillLevel int
	// Options holds extra UCI options, typically from a persona config.
	Options map[string]string
}

// DefaultConfig returns the baseline engine settings.
func DefaultConfig() Config {
	return Config{
		Path:       "stockfish",
		Depth:      12,
		Threads:    1,
		HashMB:     256,
		SkillLevel: 20,
		Options:    map[string]string{},
	}
}

// #endregion config
