// Package integrity validates the internal consistency of a game record's
// decision annotations. Problems are collected and returned as data; the
// caller decides whether a non-empty error list is fatal.
package integrity

import (
	"fmt"
	"strings"

	"github.com/acelab/ace/internal/annotation"
	"github.com/acelab/ace/internal/pgn"
)

// #region report

// Report is the structured result of checking one game.
type Report struct {
	Plies  int      `json:"plies"`
	Result string   `json:"result"`
	Errors []string `json:"errors"`
}

// Failed reports whether the check found any problem.
func (r Report) Failed() bool {
	return len(r.Errors) > 0
}

// #endregion report

// #region check

// requiredKeys must appear in every annotation.
var requiredKeys = []string{"style", "best", "chosen"}

// Check walks a game ply by ply (1-indexed) and collects every applicable
// error; it never stops at the first one and never fails itself.
func Check(g *pgn.Game) Report {
	rep := Report{Result: g.Result(), Errors: []string{}}

	for i, ply := range g.Plies {
		n := i + 1
		rep.Plies = n
		f := annotation.Decode(ply.Comment)

		var missing []string
		for _, k := range requiredKeys {
			if !f.Has(k) {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			rep.Errors = append(rep.Errors, fmt.Sprintf(
				"ply %d: missing keys [%s] in comment '%s'",
				n, strings.Join(missing, " "), ply.Comment))
		}

		bc, bcOK := f.Int("best_cp")
		cc, ccOK := f.Int("chosen_cp")
		d, dOK := f.Int("delta_cp")
		if bcOK && ccOK && dOK && d != cc-bc {
			rep.Errors = append(rep.Errors, fmt.Sprintf(
				"ply %d: delta_cp mismatch: %d != %d-%d", n, d, cc, bc))
		}

		if f.Has("feat") && !annotation.ValidFeat(f.Str("feat")) {
			rep.Errors = append(rep.Errors, fmt.Sprintf(
				"ply %d: bad feat '%s'", n, f.Str("feat")))
		}
	}
	return rep
}

// #endregion check
