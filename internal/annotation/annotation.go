// Package annotation encodes and decodes the per-ply decision annotations
// embedded in game record comments. The annotation line is the only channel
// carrying decision provenance from self-play into later analysis, so the
// decode path is deliberately tolerant: malformed or missing fields degrade
// to absent values and never produce an error.
package annotation

import (
	"fmt"
	"strconv"
	"strings"
)

// #region record

// Record is the typed decision annotation for one ply. Pointer fields are
// nil when the value was absent or unparseable.
type Record struct {
	EvalCP   *int
	Style    string
	Best     string
	BestCP   *int
	Chosen   string
	ChosenCP *int
	DeltaCP  *int
	Feat     string
}

// #endregion record

// #region encode

// none is the placeholder written for absent values so the segment layout
// stays fixed across all annotations.
const none = "None"

// Encode renders a record as a single `|`-delimited line in fixed field
// order: eval_cp, style, best, chosen, delta_cp, feat. Moves carry their
// centipawn score as a trailing "(CP)" suffix when one is known.
func Encode(r Record) string {
	parts := []string{
		"eval_cp=" + intOrNone(r.EvalCP),
		"style=" + r.Style,
		"best=" + moveField(r.Best, r.BestCP),
		"chosen=" + moveField(r.Chosen, r.ChosenCP),
		"delta_cp=" + intOrNone(r.DeltaCP),
		"feat=" + r.Feat,
	}
	return strings.Join(parts, " | ")
}

func intOrNone(v *int) string {
	if v == nil {
		return none
	}
	return strconv.Itoa(*v)
}

func moveField(move string, cp *int) string {
	if move == "" {
		return none
	}
	if cp == nil {
		return move
	}
	return fmt.Sprintf("%s(%d)", move, *cp)
}

// #endregion encode

// #region decode

// Fields holds the raw key/value segments of a decoded annotation. The map
// preserves every key seen, after move/score suffix splitting; typed access
// goes through the accessor methods.
type Fields map[string]string

// pairKeys maps a move key to the companion key its "(CP)" suffix splits
// into.
var pairKeys = [][2]string{
	{"best", "best_cp"},
	{"chosen", "chosen_cp"},
}

// Decode parses an annotation line. It never fails: segments without an
// "=" are discarded, and numeric coercion is deferred to the Int accessor.
func Decode(line string) Fields {
	f := Fields{}
	for _, seg := range strings.Split(line, "|") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		k, v, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		f[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}

	// Split trailing "(CP)" off move values into the companion key,
	// unless an explicit one was already present.
	for _, pair := range pairKeys {
		v, ok := f[pair[0]]
		if !ok || !strings.HasSuffix(v, ")") || !strings.Contains(v, "(") {
			continue
		}
		i := strings.LastIndex(v, "(")
		f[pair[0]] = v[:i]
		if _, exists := f[pair[1]]; !exists {
			f[pair[1]] = v[i+1 : len(v)-1]
		}
	}
	return f
}

// Has reports whether the key appeared in the annotation at all.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Str returns the raw string value for a key, or "" when absent.
func (f Fields) Str(key string) string {
	return f[key]
}

// Int coerces a value to an integer. Absent keys, the "None" placeholder,
// empty strings, and garbage all report false rather than an error.
func (f Fields) Int(key string) (int, bool) {
	v, ok := f[key]
	if !ok || v == "" || v == none {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Move returns a move value, treating the "None" placeholder and empty
// strings as absent.
func (f Fields) Move(key string) (string, bool) {
	v, ok := f[key]
	if !ok || v == "" || v == none {
		return "", false
	}
	return v, true
}

// Record converts decoded fields back into a typed record.
func (f Fields) Record() Record {
	r := Record{
		Style: f.Str("style"),
		Feat:  f.Str("feat"),
	}
	r.Best, _ = f.Move("best")
	r.Chosen, _ = f.Move("chosen")
	r.EvalCP = f.intPtr("eval_cp")
	r.BestCP = f.intPtr("best_cp")
	r.ChosenCP = f.intPtr("chosen_cp")
	r.DeltaCP = f.intPtr("delta_cp")
	return r
}

func (f Fields) intPtr(key string) *int {
	n, ok := f.Int(key)
	if !ok {
		return nil
	}
	return &n
}

// #endregion decode

// #region feature-triple

// NewFeat builds the 3-character feature triple in fixed position order:
// capture, check, castle.
func NewFeat(capture, check, castle bool) string {
	b := []byte{'-', '-', '-'}
	if capture {
		b[0] = 'C'
	}
	if check {
		b[1] = 'K'
	}
	if castle {
		b[2] = 'O'
	}
	return string(b)
}

// ValidFeat reports whether a feature triple matches the grammar: exactly
// three characters, each drawn from {C, K, O, -}.
func ValidFeat(feat string) bool {
	if len(feat) != 3 {
		return false
	}
	for i := 0; i < len(feat); i++ {
		switch feat[i] {
		case 'C', 'K', 'O', '-':
		default:
			return false
		}
	}
	return true
}

// #endregion feature-triple
