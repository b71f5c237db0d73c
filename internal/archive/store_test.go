package archive

import (
	"path/filepath"
	"testing"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func intp(v int) *int { return &v }

func sampleDecisions(gameID string) []DecisionRow {
	return []DecisionRow{
		{GameID: gameID, Ply: 1, Style: "aggressive", Best: "e2e4", Chosen: "e2e4",
			BestCP: intp(20), ChosenCP: intp(20), DeltaCP: intp(0), Feat: "---", Candidates: 4},
		{GameID: gameID, Ply: 2, Style: "fallback", Chosen: "e7e5", Feat: "---", Candidates: 0},
	}
}

func TestSaveAndListGames(t *testing.T) {
	s := tempStore(t)

	game := GameRow{
		GameID: "g1", White: "Stockfish(d8, aggressive)", Black: "Stockfish(d8, pure)",
		Result: "1-0", Plies: 2, PGNPath: "/tmp/g1.pgn",
	}
	if err := s.SaveGame(game, sampleDecisions("g1")); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	games, err := s.ListGames(10)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("games: got %d, want 1", len(games))
	}
	got := games[0]
	if got.GameID != "g1" || got.Result != "1-0" || got.Plies != 2 || got.PGNPath != "/tmp/g1.pgn" {
		t.Fatalf("game row: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestGameDecisionsRoundTrip(t *testing.T) {
	s := tempStore(t)

	game := GameRow{GameID: "g2", White: "w", Black: "b", Result: "0-1", Plies: 2}
	if err := s.SaveGame(game, sampleDecisions("g2")); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	decs, err := s.GameDecisions("g2")
	if err != nil {
		t.Fatalf("GameDecisions: %v", err)
	}
	if len(decs) != 2 {
		t.Fatalf("decisions: got %d, want 2", len(decs))
	}

	if decs[0].Style != "aggressive" || decs[0].BestCP == nil || *decs[0].BestCP != 20 {
		t.Fatalf("decision 1: %+v", decs[0])
	}
	// The fallback ply has no scores or best move: NULLs must come back nil.
	if decs[1].Style != "fallback" || decs[1].Best != "" || decs[1].BestCP != nil || decs[1].DeltaCP != nil {
		t.Fatalf("decision 2: %+v", decs[1])
	}
}

func TestDuplicateGameIDFails(t *testing.T) {
	s := tempStore(t)
	game := GameRow{GameID: "dup", White: "w", Black: "b", Result: "*", Plies: 0}
	if err := s.SaveGame(game, nil); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveGame(game, nil); err == nil {
		t.Fatal("expected primary key violation")
	}
}

func TestStyleCounts(t *testing.T) {
	s := tempStore(t)
	s.SaveGame(GameRow{GameID: "g1", White: "w", Black: "b", Result: "1-0", Plies: 2}, sampleDecisions("g1"))
	s.SaveGame(GameRow{GameID: "g2", White: "w", Black: "b", Result: "0-1", Plies: 2}, sampleDecisions("g2"))

	counts, err := s.StyleCounts()
	if err != nil {
		t.Fatalf("StyleCounts: %v", err)
	}
	if counts["aggressive"] != 2 || counts["fallback"] != 2 {
		t.Fatalf("counts: %v", counts)
	}
}

func TestGameDecisionsEmpty(t *testing.T) {
	s := tempStore(t)
	decs, err := s.GameDecisions("nope")
	if err != nil {
		t.Fatalf("GameDecisions: %v", err)
	}
	if len(decs) != 0 {
		t.Fatalf("expected no decisions, got %d", len(decs))
	}
}

func TestNewStoreInvalidPath(t *testing.T) {
	if _, err := NewStore("/nonexistent/deep/path/archive.db"); err == nil {
		t.Fatal("expected error for invalid path")
	}
}
