// Package tournament generates round-robin matchups between personas and
// reduces finished game records into a persona-by-persona crosstable.
package tournament

import (
	"fmt"
	"strings"

	"github.com/acelab/ace/internal/pgn"
)

// #region matchups

// Matchup is one ordered pairing; color matters, so (A,B) and (B,A) are
// distinct matchups.
type Matchup struct {
	White string
	Black string
}

// Matchups returns all ordered pairs over the persona set: N·(N-1)
// matchups for N personas.
func Matchups(names []string) []Matchup {
	var out []Matchup
	for _, w := range names {
		for _, b := range names {
			if w != b {
				out = append(out, Matchup{White: w, Black: b})
			}
		}
	}
	return out
}

// #endregion matchups

// #region header

// FormatHeader renders the player header convention for a persona playing
// at a given depth: `Stockfish(d<depth>, <persona>)`.
func FormatHeader(depth int, persona string) string {
	return fmt.Sprintf("Stockfish(d%d, %s)", depth, persona)
}

// ParsePersona recovers the persona name from a player header: the
// substring between the last comma and the closing parenthesis. Headers
// that don't match the convention report false.
func ParsePersona(header string) (string, bool) {
	if !strings.HasSuffix(header, ")") {
		return "", false
	}
	i := strings.LastIndex(header, ",")
	if i < 0 {
		return "", false
	}
	name := strings.TrimSpace(header[i+1 : len(header)-1])
	if name == "" {
		return "", false
	}
	return name, true
}

// #endregion header

// #region crosstable

// Crosstable accumulates tournament points per ordered persona pair.
// Cell (a, b) holds the points a scored in games against b. Accumulation
// is single-writer; merge partial tables with Merge when aggregating
// games concurrently.
type Crosstable struct {
	names   []string
	known   map[string]bool
	cells   map[string]map[string]float64
	games   int
	skipped int
}

// NewCrosstable creates an empty table over a fixed persona set.
func NewCrosstable(names []string) *Crosstable {
	c := &Crosstable{
		names: append([]string(nil), names...),
		known: map[string]bool{},
		cells: map[string]map[string]float64{},
	}
	for _, n := range names {
		c.known[n] = true
		c.cells[n] = map[string]float64{}
	}
	return c
}

// AddGame scores one finished game from its raw player headers. Games with
// unparsable headers or personas outside the known set are skipped
// silently and contribute nothing — a documented limitation: malformed
// headers under-count totals rather than erroring.
func (c *Crosstable) AddGame(whiteHeader, blackHeader, result string) bool {
	white, okW := ParsePersona(whiteHeader)
	black, okB := ParsePersona(blackHeader)
	if !okW || !okB || !c.known[white] || !c.known[black] {
		c.skipped++
		return false
	}

	switch result {
	case "1-0":
		// winner's row, loser's column
		c.cells[white][black] += 1.0
	case "0-1":
		// 0-1 means black beat white: black's row gets the point. Naive
		// result-string indexing once credited this the other way round;
		// the regression test pins this mapping.
		c.cells[black][white] += 1.0
	case "1/2-1/2":
		c.cells[white][black] += 0.5
		c.cells[black][white] += 0.5
	default:
		// unfinished or unknown result: no points
		c.skipped++
		return false
	}
	c.games++
	return true
}

// AddRecord scores a decoded game record via its White/Black/Result tags.
func (c *Crosstable) AddRecord(g *pgn.Game) bool {
	return c.AddGame(g.Tag("White"), g.Tag("Black"), g.Result())
}

// Names returns the persona set in table order.
func (c *Crosstable) Names() []string {
	return c.names
}

// Score returns the points persona a accumulated against persona b.
func (c *Crosstable) Score(a, b string) float64 {
	return c.cells[a][b]
}

// Total sums a persona's row.
func (c *Crosstable) Total(name string) float64 {
	var sum float64
	for _, v := range c.cells[name] {
		sum += v
	}
	return sum
}

// TotalPoints sums every cell; one scored game always contributes exactly
// 1.0 to this, decisive or drawn.
func (c *Crosstable) TotalPoints() float64 {
	var sum float64
	for _, n := range c.names {
		sum += c.Total(n)
	}
	return sum
}

// Games returns how many games were scored; Skipped how many were not.
func (c *Crosstable) Games() int   { return c.games }
func (c *Crosstable) Skipped() int { return c.skipped }

// Merge folds another table over the same persona set into this one.
func (c *Crosstable) Merge(other *Crosstable) {
	for _, a := range other.names {
		for b, v := range other.cells[a] {
			if c.known[a] {
				c.cells[a][b] += v
			}
		}
	}
	c.games += other.games
	c.skipped += other.skipped
}

// #endregion crosstable

// #region render

// Render formats the crosstable as a fixed-width text grid with a derived
// Total column.
func (c *Crosstable) Render() string {
	width := 10
	for _, n := range c.names {
		if len(n)+2 > width {
			width = len(n) + 2
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s", width, "")
	for _, n := range c.names {
		fmt.Fprintf(&b, "%*s", width, n)
	}
	fmt.Fprintf(&b, "%*s\n", width, "Total")

	for _, row := range c.names {
		fmt.Fprintf(&b, "%-*s", width, row)
		for _, col := range c.names {
			if row == col {
				fmt.Fprintf(&b, "%*s", width, "-")
				continue
			}
			fmt.Fprintf(&b, "%*.1f", width, c.Score(row, col))
		}
		fmt.Fprintf(&b, "%*.1f\n", width, c.Total(row))
	}
	return b.String()
}

// #endregion render
