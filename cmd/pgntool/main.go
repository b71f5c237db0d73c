package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/acelab/ace/internal/integrity"
	"github.com/acelab/ace/internal/pgn"
	"github.com/acelab/ace/internal/stats"
)

// #region main

func main() {
	mode := flag.String("mode", "summary", "check | summary | agreement | evals | outcomes")
	jsonOut := flag.Bool("json", false, "output as JSON where the mode supports both")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: pgntool [--mode check|summary|agreement|evals|outcomes] [--json] game.pgn [...]")
		os.Exit(2)
	}

	games := make([]*pgn.Game, 0, len(files))
	for _, path := range files {
		g, err := pgn.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", path, err)
			os.Exit(1)
		}
		games = append(games, g)
	}

	var err error
	switch *mode {
	case "check":
		err = runCheck(files, games, *jsonOut)
	case "summary":
		err = runSummary(files, games)
	case "agreement":
		err = runAgreement(files, games)
	case "evals":
		err = runEvals(files, games)
	case "outcomes":
		err = runOutcomes(games)
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region check

func runCheck(files []string, games []*pgn.Game, jsonOut bool) error {
	failed := false
	for i, g := range games {
		rep := integrity.Check(g)
		if jsonOut {
			data, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", data)
		} else {
			fmt.Printf("%s: %d plies, result %s\n", files[i], rep.Plies, rep.Result)
			for _, e := range rep.Errors {
				fmt.Printf("  %s\n", e)
			}
			if !rep.Failed() {
				fmt.Println("  ok")
			}
		}
		if rep.Failed() {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}

// #endregion check

// #region summary

func runSummary(files []string, games []*pgn.Game) error {
	for i, g := range games {
		s := stats.Summarize(g)
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal summary for %s: %w", files[i], err)
		}
		if len(games) > 1 {
			fmt.Printf("%s:\n", files[i])
		}
		fmt.Printf("%s\n", data)
	}
	return nil
}

// #endregion summary

// #region agreement

func runAgreement(files []string, games []*pgn.Game) error {
	for i, g := range games {
		agree, total, pct := stats.Agreement(g)
		if total == 0 {
			fmt.Printf("%s: no comparable plies\n", files[i])
			continue
		}
		fmt.Printf("%s: %d/%d plies agree (%.1f%%)\n", files[i], agree, total, pct)
	}
	return nil
}

// #endregion agreement

// #region evals

func runEvals(files []string, games []*pgn.Game) error {
	for i, g := range games {
		if len(games) > 1 {
			fmt.Printf("%s:\n", files[i])
		}
		for ply, cp := range stats.EvalCurve(g) {
			fmt.Printf("%4d  %+d\n", ply+1, cp)
		}
	}
	return nil
}

// #endregion evals

// #region outcomes

func runOutcomes(games []*pgn.Game) error {
	counts := stats.OutcomeCounts(games)
	for _, res := range []string{"1-0", "0-1", "1/2-1/2", "*"} {
		if counts[res] > 0 {
			fmt.Printf("%-8s %d\n", res, counts[res])
		}
	}
	return nil
}

// #endregion outcomes
