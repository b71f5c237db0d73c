package game

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/notnil/chess"

	"github.com/acelab/ace/internal/archive"
	"github.com/acelab/ace/internal/engine"
	"github.com/acelab/ace/internal/integrity"
	"github.com/acelab/ace/internal/persona"
	"github.com/acelab/ace/internal/pgn"
	"github.com/acelab/ace/internal/selector"
)

// legalProvider fakes an engine by ranking the first k legal moves with
// descending scores. Deterministic, so games are reproducible in tests.
type legalProvider struct{}

func (legalProvider) Candidates(pos *chess.Position, k int) []engine.Candidate {
	legal := pos.ValidMoves()
	if len(legal) == 0 {
		return nil
	}
	if k > len(legal) {
		k = len(legal)
	}
	out := make([]engine.Candidate, 0, k)
	for i := 0; i < k; i++ {
		mv := legal[i]
		cp := 50 - 10*i
		out = append(out, engine.Candidate{
			Move:       mv,
			ScoreCP:    &cp,
			Depth:      6,
			IsCapture:  mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
			GivesCheck: mv.HasTag(chess.Check),
			IsCastle:   mv.HasTag(chess.KingSideCastle) || mv.HasTag(chess.QueenSideCastle),
		})
	}
	return out
}

// countingProvider wraps legalProvider and tallies how often it is asked.
type countingProvider struct {
	legalProvider
	calls int
}

func (c *countingProvider) Candidates(pos *chess.Position, k int) []engine.Candidate {
	c.calls++
	return c.legalProvider.Candidates(pos, k)
}

func testPlayer(t *testing.T, name string) *Player {
	t.Helper()
	p := persona.Persona{Name: name, Kind: persona.KindPure}
	return &Player{
		Selector: selector.New(legalProvider{}, p, 4, rand.New(rand.NewSource(1))),
		Depth:    6,
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxPlies = 12
	cfg.OutDir = t.TempDir()
	return cfg
}

func TestPlaySelfProducesAnnotatedGame(t *testing.T) {
	cfg := testConfig(t)
	res, err := PlaySelf(cfg, testPlayer(t, "pure"), testPlayer(t, "pure"), nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}

	if res.Plies == 0 || res.Plies > cfg.MaxPlies {
		t.Fatalf("plies: %d", res.Plies)
	}
	if len(res.Decisions) != res.Plies {
		t.Fatalf("decisions %d != plies %d", len(res.Decisions), res.Plies)
	}
	if res.GameID == "" {
		t.Fatal("missing game id")
	}
	if res.Record.Tag("White") != "Stockfish(d6, pure)" {
		t.Fatalf("white header: %q", res.Record.Tag("White"))
	}
	if res.Record.Result() != res.Outcome {
		t.Fatalf("result tag %q != outcome %q", res.Record.Result(), res.Outcome)
	}

	// Every ply carries a comment, and plies are numbered 1..N in order.
	for i, p := range res.Record.Plies {
		if p.Comment == "" {
			t.Fatalf("ply %d has no annotation", i+1)
		}
		if res.Decisions[i].Ply != i+1 {
			t.Fatalf("decision %d has ply %d", i, res.Decisions[i].Ply)
		}
	}
}

func TestPlaySelfPassesIntegrityCheck(t *testing.T) {
	cfg := testConfig(t)
	res, err := PlaySelf(cfg, testPlayer(t, "aggressive"), testPlayer(t, "defensive"), nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}

	rep := integrity.Check(res.Record)
	if rep.Failed() {
		t.Fatalf("integrity errors: %v", rep.Errors)
	}
	if rep.Plies != res.Plies {
		t.Fatalf("report plies %d != %d", rep.Plies, res.Plies)
	}
}

func TestPlaySelfWritesReadablePGN(t *testing.T) {
	cfg := testConfig(t)
	res, err := PlaySelf(cfg, testPlayer(t, "pure"), testPlayer(t, "pure"), nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}
	if res.PGNPath == "" {
		t.Fatal("expected PGN path")
	}
	if filepath.Dir(res.PGNPath) != cfg.OutDir {
		t.Fatalf("saved outside out dir: %s", res.PGNPath)
	}

	back, err := pgn.ReadFile(res.PGNPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(back.Plies) != res.Plies {
		t.Fatalf("reread plies %d != %d", len(back.Plies), res.Plies)
	}
	if back.Tag("Black") != res.Record.Tag("Black") {
		t.Fatalf("reread black header %q", back.Tag("Black"))
	}
}

func TestPlaySelfNoOutputDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutDir = ""
	res, err := PlaySelf(cfg, testPlayer(t, "pure"), testPlayer(t, "pure"), nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}
	if res.PGNPath != "" {
		t.Fatalf("unexpected PGN path %q", res.PGNPath)
	}
}

func TestPlaySelfArchives(t *testing.T) {
	store, err := archive.NewStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := testConfig(t)
	res, err := PlaySelf(cfg, testPlayer(t, "calculative"), testPlayer(t, "random"), store)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}

	games, err := store.ListGames(5)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 1 || games[0].GameID != res.GameID {
		t.Fatalf("archived games: %+v", games)
	}
	if games[0].White != "Stockfish(d6, calculative)" {
		t.Fatalf("archived white: %q", games[0].White)
	}

	decs, err := store.GameDecisions(res.GameID)
	if err != nil {
		t.Fatalf("GameDecisions: %v", err)
	}
	if len(decs) != res.Plies {
		t.Fatalf("archived decisions %d != plies %d", len(decs), res.Plies)
	}
	if decs[0].Ply != 1 || decs[0].Style == "" {
		t.Fatalf("first decision: %+v", decs[0])
	}
}

func TestPlayersUseOwnProviders(t *testing.T) {
	// Each side runs on its own provider, so per-persona engine options
	// never bleed across players. White answers odd plies, black even.
	whiteProv := &countingProvider{}
	blackProv := &countingProvider{}
	p := persona.Persona{Name: "pure", Kind: persona.KindPure}
	white := &Player{Selector: selector.New(whiteProv, p, 4, rand.New(rand.NewSource(1))), Depth: 6}
	black := &Player{Selector: selector.New(blackProv, p, 4, rand.New(rand.NewSource(2))), Depth: 6}

	cfg := testConfig(t)
	cfg.MaxPlies = 7
	res, err := PlaySelf(cfg, white, black, nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}

	if whiteProv.calls != (res.Plies+1)/2 {
		t.Fatalf("white provider calls: got %d, want %d", whiteProv.calls, (res.Plies+1)/2)
	}
	if blackProv.calls != res.Plies/2 {
		t.Fatalf("black provider calls: got %d, want %d", blackProv.calls, res.Plies/2)
	}
}

func TestPlaySelfMaxPliesCap(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxPlies = 4
	res, err := PlaySelf(cfg, testPlayer(t, "pure"), testPlayer(t, "pure"), nil)
	if err != nil {
		t.Fatalf("PlaySelf: %v", err)
	}
	if res.Plies != 4 {
		t.Fatalf("plies: got %d, want 4", res.Plies)
	}
	if res.Outcome != "*" {
		t.Fatalf("capped game outcome: %q", res.Outcome)
	}
}
