// Package pgn reads and writes the PGN game records self-play produces.
// Only the slice of the format the analysis side needs is implemented:
// tag pairs, mainline moves with {comments}, and the result terminator.
// The reader is tolerant by design — game files are persisted outside the
// program's control and may be hand-edited or truncated.
package pgn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// #region game

// Tag is one header tag pair.
type Tag struct {
	Name  string
	Value string
}

// Ply is one half-move with its annotation comment.
type Ply struct {
	Move    string // SAN
	Comment string
}

// Game is a single recorded game.
type Game struct {
	Tags  []Tag
	Plies []Ply
}

// Tag returns a header value, or "" when the tag is absent.
func (g *Game) Tag(name string) string {
	for _, t := range g.Tags {
		if t.Name == name {
			return t.Value
		}
	}
	return ""
}

// SetTag replaces or appends a header tag.
func (g *Game) SetTag(name, value string) {
	for i, t := range g.Tags {
		if t.Name == name {
			g.Tags[i].Value = value
			return
		}
	}
	g.Tags = append(g.Tags, Tag{Name: name, Value: value})
}

// Result returns the Result tag, defaulting to "*" (unknown).
func (g *Game) Result() string {
	if r := g.Tag("Result"); r != "" {
		return r
	}
	return "*"
}

// Comments returns the per-ply annotation comments in order.
func (g *Game) Comments() []string {
	out := make([]string, len(g.Plies))
	for i, p := range g.Plies {
		out[i] = p.Comment
	}
	return out
}

// #endregion game

// #region encode

// Encode renders the game: tag section, blank line, then one full move per
// line with comments inline, ending with the result.
func (g *Game) Encode() string {
	var b strings.Builder
	for _, t := range g.Tags {
		fmt.Fprintf(&b, "[%s \"%s\"]\n", t.Name, t.Value)
	}
	b.WriteString("\n")

	for i, p := range g.Plies {
		if i%2 == 0 {
			fmt.Fprintf(&b, "%d. ", i/2+1)
		}
		b.WriteString(p.Move)
		if p.Comment != "" {
			fmt.Fprintf(&b, " {%s}", p.Comment)
		}
		if i%2 == 1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	if len(g.Plies)%2 == 1 {
		b.WriteString("\n")
	}
	b.WriteString(g.Result() + "\n")
	return b.String()
}

// Save writes the game to dir under a timestamped name,
// "<prefix>_<yyyymmdd-hhmmss>.pgn", and returns the full path.
func (g *Game) Save(dir, prefix string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create pgn dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s.pgn", prefix, time.Now().Format("20060102-150405.000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(g.Encode()), 0644); err != nil {
		return "", fmt.Errorf("write pgn: %w", err)
	}
	return path, nil
}

// #endregion encode

// #region decode

// Decode parses a single game. Unrecognized tokens are skipped; a missing
// result leaves the game with result "*". It only fails on read errors.
func Decode(r io.Reader) (*Game, error) {
	g := &Game{}
	var movetext strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if name, value, ok := parseTagLine(line); ok {
			g.SetTag(name, value)
			continue
		}
		movetext.WriteString(line)
		movetext.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pgn: %w", err)
	}

	parseMovetext(movetext.String(), g)
	return g, nil
}

// ReadFile loads one game from a PGN file.
func ReadFile(path string) (*Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pgn %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// parseTagLine matches `[Name "Value"]`.
func parseTagLine(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", "", false
	}
	body := line[1 : len(line)-1]
	name, rest, ok := strings.Cut(body, " ")
	if !ok {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", "", false
	}
	return name, rest[1 : len(rest)-1], true
}

// resultTokens are the movetext game terminators.
var resultTokens = map[string]bool{
	"1-0": true, "0-1": true, "1/2-1/2": true, "*": true,
}

// parseMovetext walks the movetext, collecting mainline moves and their
// comments. Variations and NAGs are skipped.
func parseMovetext(text string, g *Game) {
	i := 0
	for i < len(text) {
		c := text[i]
		switch {
		case c == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				// unterminated comment: take the rest
				attachComment(g, strings.TrimSpace(text[i+1:]))
				return
			}
			attachComment(g, strings.TrimSpace(text[i+1:i+1+end]))
			i += end + 2
		case c == '(':
			i = skipVariation(text, i)
		case c == ';':
			for i < len(text) && text[i] != '\n' {
				i++
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			start := i
			for i < len(text) && !strings.ContainsRune(" \t\n\r{(;", rune(text[i])) {
				i++
			}
			handleToken(g, text[start:i])
		}
	}
}

func handleToken(g *Game, tok string) {
	switch {
	case tok == "":
	case resultTokens[tok]:
		if g.Tag("Result") == "" {
			g.SetTag("Result", tok)
		}
	case strings.HasPrefix(tok, "$"):
		// NAG, skip
	case isMoveNumber(tok):
	default:
		g.Plies = append(g.Plies, Ply{Move: tok})
	}
}

func attachComment(g *Game, comment string) {
	if len(g.Plies) == 0 || comment == "" {
		return
	}
	last := &g.Plies[len(g.Plies)-1]
	if last.Comment == "" {
		last.Comment = comment
	} else {
		last.Comment += " " + comment
	}
}

// isMoveNumber matches "12.", "12...", and a bare "12". No SAN move is all
// digits and dots, so this cannot shadow a real move.
func isMoveNumber(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// skipVariation advances past a parenthesized variation, handling nesting.
func skipVariation(text string, i int) int {
	depth := 0
	for i < len(text) {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

// #endregion decode
