package tournament

import (
	"math"
	"strings"
	"testing"

	"github.com/acelab/ace/internal/pgn"
)

func TestMatchupsOrderedPairs(t *testing.T) {
	names := []string{"aggressive", "defensive", "pure"}
	got := Matchups(names)
	if len(got) != 6 { // N*(N-1)
		t.Fatalf("matchups: got %d, want 6", len(got))
	}
	seen := map[Matchup]bool{}
	for _, m := range got {
		if m.White == m.Black {
			t.Fatalf("self-pairing %+v", m)
		}
		if seen[m] {
			t.Fatalf("duplicate matchup %+v", m)
		}
		seen[m] = true
	}
	// Color is semantic: both orders must be present.
	if !seen[Matchup{"aggressive", "defensive"}] || !seen[Matchup{"defensive", "aggressive"}] {
		t.Fatal("expected both color orders for each pair")
	}
}

func TestMatchupsDegenerate(t *testing.T) {
	if got := Matchups([]string{"solo"}); len(got) != 0 {
		t.Fatalf("single persona: got %v", got)
	}
	if got := Matchups(nil); len(got) != 0 {
		t.Fatalf("empty set: got %v", got)
	}
}

func TestParsePersona(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Stockfish(d12, aggressive)", "aggressive", true},
		{"Stockfish(d8, pure)", "pure", true},
		{"Stockfish(d8,pure)", "pure", true},
		{"Stockfish(d12)", "", false},
		{"Stockfish", "", false},
		{"Stockfish(d12, aggressive", "", false},
		{"", "", false},
		{"Stockfish(d12, )", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePersona(tt.header)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePersona(%q) = %q/%v, want %q/%v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	h := FormatHeader(12, "calculative")
	if h != "Stockfish(d12, calculative)" {
		t.Fatalf("header: %q", h)
	}
	name, ok := ParsePersona(h)
	if !ok || name != "calculative" {
		t.Fatalf("round trip: %q/%v", name, ok)
	}
}

func TestCrosstableConservation(t *testing.T) {
	// Three games among {A, B}, A always white:
	// 1-0, 0-1, 1/2-1/2 → A→B = 1.5, B→A = 1.5, total 3.0.
	c := NewCrosstable([]string{"A", "B"})
	w := FormatHeader(6, "A")
	b := FormatHeader(6, "B")

	for _, res := range []string{"1-0", "0-1", "1/2-1/2"} {
		if !c.AddGame(w, b, res) {
			t.Fatalf("game %s not counted", res)
		}
	}

	if got := c.Score("A", "B"); got != 1.5 {
		t.Fatalf("A→B: got %v, want 1.5", got)
	}
	if got := c.Score("B", "A"); got != 1.5 {
		t.Fatalf("B→A: got %v, want 1.5", got)
	}
	if got := c.TotalPoints(); math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("total points: got %v, want 3.0", got)
	}
}

func TestBlackWinCreditsWinnerRow(t *testing.T) {
	// Regression: 0-1 is a black win, so the point belongs in black's row
	// against white's column — not the other way around.
	c := NewCrosstable([]string{"A", "B"})
	c.AddGame(FormatHeader(6, "A"), FormatHeader(6, "B"), "0-1")

	if got := c.Score("B", "A"); got != 1.0 {
		t.Fatalf("B→A: got %v, want 1.0", got)
	}
	if got := c.Score("A", "B"); got != 0.0 {
		t.Fatalf("A→B: got %v, want 0.0", got)
	}
}

func TestCrosstableSkipsMalformedHeaders(t *testing.T) {
	c := NewCrosstable([]string{"A", "B"})

	tests := []struct {
		white, black string
	}{
		{"Stockfish(d6)", FormatHeader(6, "B")},     // unparsable white
		{FormatHeader(6, "A"), "Komodo"},            // unparsable black
		{FormatHeader(6, "C"), FormatHeader(6, "B")}, // unknown persona
	}
	for _, tt := range tests {
		if c.AddGame(tt.white, tt.black, "1-0") {
			t.Errorf("game %q vs %q should be skipped", tt.white, tt.black)
		}
	}

	if c.TotalPoints() != 0 {
		t.Fatalf("skipped games contributed points: %v", c.TotalPoints())
	}
	if c.Skipped() != 3 || c.Games() != 0 {
		t.Fatalf("skipped=%d games=%d", c.Skipped(), c.Games())
	}
}

func TestCrosstableUnfinishedResult(t *testing.T) {
	c := NewCrosstable([]string{"A", "B"})
	if c.AddGame(FormatHeader(6, "A"), FormatHeader(6, "B"), "*") {
		t.Fatal("unfinished game must not be counted")
	}
	if c.TotalPoints() != 0 {
		t.Fatalf("total: %v", c.TotalPoints())
	}
}

func TestAddRecord(t *testing.T) {
	g := &pgn.Game{}
	g.SetTag("White", FormatHeader(6, "A"))
	g.SetTag("Black", FormatHeader(6, "B"))
	g.SetTag("Result", "1-0")

	c := NewCrosstable([]string{"A", "B"})
	if !c.AddRecord(g) {
		t.Fatal("record not counted")
	}
	if c.Score("A", "B") != 1.0 {
		t.Fatalf("A→B: %v", c.Score("A", "B"))
	}
}

func TestMerge(t *testing.T) {
	names := []string{"A", "B"}
	c1 := NewCrosstable(names)
	c2 := NewCrosstable(names)
	c1.AddGame(FormatHeader(6, "A"), FormatHeader(6, "B"), "1-0")
	c2.AddGame(FormatHeader(6, "A"), FormatHeader(6, "B"), "1/2-1/2")

	c1.Merge(c2)
	if got := c1.Score("A", "B"); got != 1.5 {
		t.Fatalf("A→B after merge: %v", got)
	}
	if got := c1.TotalPoints(); got != 2.0 {
		t.Fatalf("total after merge: %v", got)
	}
	if c1.Games() != 2 {
		t.Fatalf("games after merge: %d", c1.Games())
	}
}

func TestRender(t *testing.T) {
	c := NewCrosstable([]string{"A", "B"})
	c.AddGame(FormatHeader(6, "A"), FormatHeader(6, "B"), "1-0")

	out := c.Render()
	if !strings.Contains(out, "Total") {
		t.Fatalf("render missing Total column:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 { // header + one row per persona
		t.Fatalf("render: %d lines\n%s", len(lines), out)
	}
}
