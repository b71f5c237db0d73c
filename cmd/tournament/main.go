package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/acelab/ace/internal/archive"
	"github.com/acelab/ace/internal/engine"
	"github.com/acelab/ace/internal/game"
	"github.com/acelab/ace/internal/persona"
	"github.com/acelab/ace/internal/pgn"
	"github.com/acelab/ace/internal/selector"
	"github.com/acelab/ace/internal/tournament"
)

// #region main

func main() {
	personas := flag.String("personas", "pure,aggressive,defensive", "comma-separated persona names")
	personaDir := flag.String("persona-dir", "personas", "directory of persona JSON configs")
	games := flag.Int("games", 1, "games per ordered pairing (play mode)")
	depth := flag.Int("depth", 0, "engine search depth (0 = engine default)")
	enginePath := flag.String("engine", envOr("ACE_ENGINE", "stockfish"), "path to the UCI engine binary")
	outDir := flag.String("out", "data", "directory for PGN output ('' = don't save)")
	dbPath := flag.String("db", "", "archive database: written in play mode, read in aggregate mode")
	fromDir := flag.String("from", "", "aggregate mode: score existing PGNs from this directory instead of playing")
	aggregate := flag.Bool("aggregate", false, "aggregate mode: score archived games from --db instead of playing")
	maxPlies := flag.Int("max-plies", 300, "abort games longer than this many plies")
	candidates := flag.Int("candidates", selector.DefaultCandidates, "candidate moves ranked per ply")
	seed := flag.Int64("seed", 0, "selector RNG seed (0 = time-based)")
	flag.Parse()

	names := splitNames(*personas)
	if len(names) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tournament --personas pure,aggressive [--games N] [--from pgn-dir | --db archive.db]")
		os.Exit(2)
	}

	table := tournament.NewCrosstable(names)

	var err error
	if *fromDir != "" || *aggregate {
		dbIn := ""
		if *aggregate {
			dbIn = *dbPath
		}
		err = runAggregate(table, *fromDir, dbIn)
	} else {
		err = runPlay(table, names, playOptions{
			personaDir: *personaDir,
			games:      *games,
			depth:      *depth,
			enginePath: *enginePath,
			outDir:     *outDir,
			dbPath:     *dbPath,
			maxPlies:   *maxPlies,
			candidates: *candidates,
			seed:       *seed,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%s\n", table.Render())
	fmt.Printf("games scored: %d  skipped: %d  points: %.1f\n",
		table.Games(), table.Skipped(), table.TotalPoints())
}

// #endregion main

// #region play

type playOptions struct {
	personaDir string
	games      int
	depth      int
	enginePath string
	outDir     string
	dbPath     string
	maxPlies   int
	candidates int
	seed       int64
}

func runPlay(table *tournament.Crosstable, names []string, opts playOptions) error {
	// One engine process per persona: each persona's UCI options apply to
	// its own engine instead of fighting over a shared one.
	loaded := map[string]persona.Loaded{}
	providers := map[string]*engine.UCIProvider{}
	defer func() {
		for _, p := range providers {
			p.Close()
		}
	}()
	for _, name := range names {
		l, err := persona.Load(opts.personaDir, name)
		if err != nil {
			return fmt.Errorf("load persona %s: %w", name, err)
		}
		loaded[name] = l

		cfg := engine.DefaultConfig()
		cfg.Path = opts.enginePath
		if opts.depth > 0 {
			cfg.Depth = opts.depth
		}
		for k, v := range l.UCIOptions {
			cfg.Options[k] = v
		}
		p, err := engine.New(cfg)
		if err != nil {
			return fmt.Errorf("start engine for %s: %w", name, err)
		}
		providers[name] = p
	}

	var store *archive.Store
	if opts.dbPath != "" {
		s, err := archive.NewStore(opts.dbPath)
		if err != nil {
			return err
		}
		store = s
		defer store.Close()
	}

	cfg := game.DefaultConfig()
	cfg.Event = "ACE Tournament"
	cfg.MaxPlies = opts.maxPlies
	cfg.OutDir = opts.outDir
	cfg.Prefix = "tournament"

	rng := opts.seed
	newPlayer := func(name string) *game.Player {
		var r *rand.Rand
		if rng != 0 {
			r = rand.New(rand.NewSource(rng))
			rng++
		}
		return &game.Player{
			Selector: selector.New(providers[name], loaded[name].Persona, opts.candidates, r),
			Depth:    providers[name].Depth(),
		}
	}

	matchups := tournament.Matchups(names)
	played := 0
	total := len(matchups) * opts.games
	for _, m := range matchups {
		white, black := newPlayer(m.White), newPlayer(m.Black)
		for i := 0; i < opts.games; i++ {
			for _, name := range []string{m.White, m.Black} {
				if err := providers[name].NewGame(); err != nil {
					return fmt.Errorf("reset engine for %s: %w", name, err)
				}
			}
			res, err := game.PlaySelf(cfg, white, black, store)
			if err != nil {
				return fmt.Errorf("%s vs %s: %w", m.White, m.Black, err)
			}
			played++
			table.AddRecord(res.Record)
			fmt.Printf("[%d/%d] %s vs %s: %s\n", played, total, m.White, m.Black, res.Outcome)
		}
	}
	return nil
}

// #endregion play

// #region aggregate

func runAggregate(table *tournament.Crosstable, fromDir, dbPath string) error {
	if fromDir != "" {
		paths, err := filepath.Glob(filepath.Join(fromDir, "*.pgn"))
		if err != nil {
			return fmt.Errorf("scan %s: %w", fromDir, err)
		}
		for _, path := range paths {
			g, err := pgn.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			table.AddRecord(g)
		}
	}

	if dbPath != "" {
		store, err := archive.NewStore(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.ListGames(100000)
		if err != nil {
			return err
		}
		for _, r := range rows {
			table.AddGame(r.White, r.Black, r.Result)
		}
	}
	return nil
}

// #endregion aggregate

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitNames(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// #endregion helpers
