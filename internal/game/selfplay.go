// Package game drives annotated self-play: one selector per color, one
// decision per ply, one annotation per move, a PGN record and an archive
// row at the end.
package game

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/notnil/chess"

	"github.com/acelab/ace/internal/annotation"
	"github.com/acelab/ace/internal/archive"
	"github.com/acelab/ace/internal/persona"
	"github.com/acelab/ace/internal/pgn"
	"github.com/acelab/ace/internal/selector"
	"github.com/acelab/ace/internal/tournament"
)

// #region config

// Config holds per-run self-play settings; construct it in main and pass
// it down.
type Config struct {
	Event    string
	Site     string
	MaxPlies int
	OutDir   string // empty = don't write PGN files
	Prefix   string
}

// DefaultConfig returns the usual self-play settings.
func DefaultConfig() Config {
	return Config{
		Event:    "ACE Self-Play",
		Site:     "Local",
		MaxPlies: 300,
		OutDir:   "data",
		Prefix:   "selfplay",
	}
}

// Player binds a selector to the search depth its provider runs at; the
// depth only matters for the game header.
type Player struct {
	Selector *selector.Selector
	Depth    int
}

// Header renders the player's game header string.
func (p *Player) Header() string {
	return tournament.FormatHeader(p.Depth, p.Selector.Persona().Name)
}

// #endregion config

// #region result

// Result is one finished self-play game.
type Result struct {
	GameID    string
	Record    *pgn.Game
	Outcome   string
	Plies     int
	PGNPath   string
	Decisions []selector.Decision
}

// #endregion result

// #region play

// PlaySelf runs a single game between two players. The store is optional;
// when present the finished game and its decisions are archived.
func PlaySelf(cfg Config, white, black *Player, store *archive.Store) (*Result, error) {
	g := chess.NewGame()

	rec := &pgn.Game{}
	rec.SetTag("Event", cfg.Event)
	rec.SetTag("Site", cfg.Site)
	rec.SetTag("White", white.Header())
	rec.SetTag("Black", black.Header())

	var decisions []selector.Decision
	ply := 0
	for g.Outcome() == chess.NoOutcome && ply < cfg.MaxPlies {
		player := white
		if g.Position().Turn() == chess.Black {
			player = black
		}
		ply++

		d := player.Selector.Select(g.Position(), ply)
		if d.Move == nil {
			// no legal move: game over for the side to move
			break
		}

		san := chess.AlgebraicNotation{}.Encode(g.Position(), d.Move)
		if err := g.Move(d.Move); err != nil {
			// Safety net: an illegal selection plays the first legal move
			// and is labeled fallback so analysis can spot it.
			legal := g.Position().ValidMoves()
			if len(legal) == 0 {
				break
			}
			mv := legal[0]
			log.Printf("game: rejected move %s at ply %d, substituting %s: %v", d.Move, ply, mv, err)
			san = chess.AlgebraicNotation{}.Encode(g.Position(), mv)
			if err := g.Move(mv); err != nil {
				return nil, fmt.Errorf("apply substitute move at ply %d: %w", ply, err)
			}
			d = selector.Decision{
				Move: mv,
				Ply:  ply,
				Record: annotation.Record{
					Style:  string(persona.KindFallback),
					Chosen: mv.String(),
					Feat: annotation.NewFeat(
						mv.HasTag(chess.Capture) || mv.HasTag(chess.EnPassant),
						mv.HasTag(chess.Check),
						mv.HasTag(chess.KingSideCastle) || mv.HasTag(chess.QueenSideCastle),
					),
				},
			}
		}

		decisions = append(decisions, d)
		rec.Plies = append(rec.Plies, pgn.Ply{
			Move:    san,
			Comment: annotation.Encode(d.Record),
		})
	}

	outcome := string(g.Outcome())
	rec.SetTag("Result", outcome)

	res := &Result{
		GameID:    uuid.New().String(),
		Record:    rec,
		Outcome:   outcome,
		Plies:     len(rec.Plies),
		Decisions: decisions,
	}

	if cfg.OutDir != "" {
		path, err := rec.Save(cfg.OutDir, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		res.PGNPath = path
	}

	if store != nil {
		if err := archiveResult(store, white, black, res); err != nil {
			return nil, err
		}
	}

	log.Printf("game: finished %s vs %s result=%s plies=%d",
		white.Header(), black.Header(), outcome, res.Plies)
	return res, nil
}

// archiveResult writes the game row plus decision provenance.
func archiveResult(store *archive.Store, white, black *Player, res *Result) error {
	rows := make([]archive.DecisionRow, 0, len(res.Decisions))
	for _, d := range res.Decisions {
		rows = append(rows, archive.DecisionRow{
			GameID:     res.GameID,
			Ply:        d.Ply,
			Style:      d.Record.Style,
			Best:       d.Record.Best,
			Chosen:     d.Record.Chosen,
			BestCP:     d.Record.BestCP,
			ChosenCP:   d.Record.ChosenCP,
			DeltaCP:    d.Record.DeltaCP,
			Feat:       d.Record.Feat,
			Candidates: d.CandidateCount,
		})
	}
	err := store.SaveGame(archive.GameRow{
		GameID:  res.GameID,
		White:   white.Header(),
		Black:   black.Header(),
		Result:  res.Outcome,
		Plies:   res.Plies,
		PGNPath: res.PGNPath,
	}, rows)
	if err != nil {
		return fmt.Errorf("archive game %s: %w", res.GameID, err)
	}
	return nil
}

// #endregion play
