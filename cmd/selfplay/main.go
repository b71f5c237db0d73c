package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/acelab/ace/internal/archive"
	"github.com/acelab/ace/internal/engine"
	"github.com/acelab/ace/internal/game"
	"github.com/acelab/ace/internal/persona"
	"github.com/acelab/ace/internal/selector"
)

// #region main

func main() {
	white := flag.String("white", "pure", "white persona name")
	black := flag.String("black", "pure", "black persona name")
	games := flag.Int("games", 1, "number of games to play")
	depth := flag.Int("depth", 0, "engine search depth (0 = engine default)")
	maxPlies := flag.Int("max-plies", 300, "abort games longer than this many plies")
	outDir := flag.String("out", "data", "directory for PGN output ('' = don't save)")
	personaDir := flag.String("personas", "personas", "directory of persona JSON configs")
	dbPath := flag.String("db", envOr("ACE_DB", ""), "optional archive database path")
	enginePath := flag.String("engine", envOr("ACE_ENGINE", "stockfish"), "path to the UCI engine binary")
	candidates := flag.Int("candidates", selector.DefaultCandidates, "candidate moves ranked per ply")
	seed := flag.Int64("seed", 0, "selector RNG seed (0 = time-based)")
	flag.Parse()

	if *games < 1 {
		fmt.Fprintln(os.Stderr, "usage: selfplay --white pure --black aggressive [--games N] [--depth D] [--db archive.db]")
		os.Exit(2)
	}

	whiteCfg, err := persona.Load(*personaDir, *white)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load persona %s: %v\n", *white, err)
		os.Exit(1)
	}
	blackCfg, err := persona.Load(*personaDir, *black)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load persona %s: %v\n", *black, err)
		os.Exit(1)
	}

	// One engine process per player, so each persona's UCI options apply
	// to its own side without clashing with the opponent's.
	whiteProv, err := newProvider(*enginePath, *depth, whiteCfg.UCIOptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start engine %s: %v\n", *enginePath, err)
		os.Exit(1)
	}
	defer whiteProv.Close()
	blackProv, err := newProvider(*enginePath, *depth, blackCfg.UCIOptions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start engine %s: %v\n", *enginePath, err)
		os.Exit(1)
	}
	defer blackProv.Close()

	var store *archive.Store
	if *dbPath != "" {
		store, err = archive.NewStore(*dbPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open archive: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	whiteRng, blackRng := splitRNG(*seed)
	wp := &game.Player{
		Selector: selector.New(whiteProv, whiteCfg.Persona, *candidates, whiteRng),
		Depth:    whiteProv.Depth(),
	}
	bp := &game.Player{
		Selector: selector.New(blackProv, blackCfg.Persona, *candidates, blackRng),
		Depth:    blackProv.Depth(),
	}

	cfg := game.DefaultConfig()
	cfg.MaxPlies = *maxPlies
	cfg.OutDir = *outDir

	outcomes := map[string]int{}
	for i := 0; i < *games; i++ {
		for _, p := range []*engine.UCIProvider{whiteProv, blackProv} {
			if err := p.NewGame(); err != nil {
				fmt.Fprintf(os.Stderr, "reset engine before game %d: %v\n", i+1, err)
				os.Exit(1)
			}
		}
		res, err := game.PlaySelf(cfg, wp, bp, store)
		if err != nil {
			fmt.Fprintf(os.Stderr, "game %d: %v\n", i+1, err)
			os.Exit(1)
		}
		outcomes[res.Outcome]++
		fmt.Printf("game %d/%d: %s (%d plies)", i+1, *games, res.Outcome, res.Plies)
		if res.PGNPath != "" {
			fmt.Printf(" -> %s", res.PGNPath)
		}
		fmt.Println()
	}

	fmt.Printf("\n%s vs %s over %d games: +%d -%d =%d *%d\n",
		wp.Header(), bp.Header(), *games,
		outcomes["1-0"], outcomes["0-1"], outcomes["1/2-1/2"], outcomes["*"])
}

// #endregion main

// #region helpers

func newProvider(path string, depth int, options map[string]string) (*engine.UCIProvider, error) {
	cfg := engine.DefaultConfig()
	cfg.Path = path
	if depth > 0 {
		cfg.Depth = depth
	}
	for k, v := range options {
		cfg.Options[k] = v
	}
	return engine.New(cfg)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitRNG derives independent streams for the two selectors so a shared
// seed still reproduces both sides. Seed 0 keeps time-based seeding.
func splitRNG(seed int64) (*rand.Rand, *rand.Rand) {
	if seed == 0 {
		return nil, nil
	}
	return rand.New(rand.NewSource(seed)), rand.New(rand.NewSource(seed + 1))
}

// #endregion helpers
