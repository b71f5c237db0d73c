// Package archive persists finished games and their per-ply decision
// provenance in SQLite, so tournament aggregation and ad-hoc inspection
// can run without re-scanning PGN files.
package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id    TEXT PRIMARY KEY,
	white      TEXT NOT NULL,
	black      TEXT NOT NULL,
	result     TEXT NOT NULL,
	plies      INTEGER NOT NULL,
	pgn_path   TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id    TEXT NOT NULL,
	ply        INTEGER NOT NULL,
	style      TEXT NOT NULL,
	best       TEXT,
	chosen     TEXT,
	best_cp    INTEGER,
	chosen_cp  INTEGER,
	delta_cp   INTEGER,
	feat       TEXT,
	candidates INTEGER NOT NULL,
	FOREIGN KEY (game_id) REFERENCES games(game_id)
);

CREATE INDEX IF NOT EXISTS idx_decisions_game
ON decisions(game_id, ply);
`

// #endregion schema

// #region store

// Store manages the game archive database.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the archive and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for ad-hoc queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region rows

// GameRow is one archived game.
type GameRow struct {
	GameID    string
	White     string
	Black     string
	Result    string
	Plies     int
	PGNPath   string
	CreatedAt time.Time
}

// DecisionRow is one ply's decision provenance.
type DecisionRow struct {
	GameID     string
	Ply        int
	Style      string
	Best       string
	Chosen     string
	BestCP     *int
	ChosenCP   *int
	DeltaCP    *int
	Feat       string
	Candidates int
}

// #endregion rows

// #region save

// SaveGame inserts a finished game and all its decisions in one
// transaction.
func (s *Store) SaveGame(game GameRow, decisions []DecisionRow) error {
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO games (game_id, white, black, result, plies, pgn_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		game.GameID, game.White, game.Black, game.Result, game.Plies,
		nullIfEmpty(game.PGNPath), game.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}

	for _, d := range decisions {
		_, err = tx.Exec(
			`INSERT INTO decisions (game_id, ply, style, best, chosen, best_cp, chosen_cp, delta_cp, feat, candidates)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			game.GameID, d.Ply, d.Style,
			nullIfEmpty(d.Best), nullIfEmpty(d.Chosen),
			nullInt(d.BestCP), nullInt(d.ChosenCP), nullInt(d.DeltaCP),
			nullIfEmpty(d.Feat), d.Candidates,
		)
		if err != nil {
			return fmt.Errorf("insert decision ply %d: %w", d.Ply, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion save

// #region queries

// ListGames returns the most recent games.
func (s *Store) ListGames(limit int) ([]GameRow, error) {
	rows, err := s.db.Query(
		`SELECT game_id, white, black, result, plies, pgn_path, created_at
		 FROM games ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var out []GameRow
	for rows.Next() {
		var g GameRow
		var pgnPath sql.NullString
		var createdStr string
		if err := rows.Scan(&g.GameID, &g.White, &g.Black, &g.Result, &g.Plies, &pgnPath, &createdStr); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if pgnPath.Valid {
			g.PGNPath = pgnPath.String
		}
		g.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GameDecisions returns a game's decision rows in ply order.
func (s *Store) GameDecisions(gameID string) ([]DecisionRow, error) {
	rows, err := s.db.Query(
		`SELECT game_id, ply, style, best, chosen, best_cp, chosen_cp, delta_cp, feat, candidates
		 FROM decisions WHERE game_id = ? ORDER BY ply`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("game decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRow
	for rows.Next() {
		var d DecisionRow
		var best, chosen, feat sql.NullString
		var bestCP, chosenCP, deltaCP sql.NullInt64
		if err := rows.Scan(&d.GameID, &d.Ply, &d.Style, &best, &chosen, &bestCP, &chosenCP, &deltaCP, &feat, &d.Candidates); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Best = best.String
		d.Chosen = chosen.String
		d.Feat = feat.String
		d.BestCP = intFromNull(bestCP)
		d.ChosenCP = intFromNull(chosenCP)
		d.DeltaCP = intFromNull(deltaCP)
		out = append(out, d)
	}
	return out, rows.Err()
}

// StyleCounts tallies archived decisions by style across all games.
func (s *Store) StyleCounts() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT style, COUNT(*) FROM decisions GROUP BY style`)
	if err != nil {
		return nil, fmt.Errorf("style counts: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var style string
		var n int
		if err := rows.Scan(&style, &n); err != nil {
			return nil, fmt.Errorf("scan style count: %w", err)
		}
		out[style] = n
	}
	return out, rows.Err()
}

// #endregion queries

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// #endregion helpers
