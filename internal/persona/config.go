package persona

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// #region file-config

// fileConfig is the on-disk persona document. The recognized field set is
// closed; unknown keys are rejected at decode time rather than silently
// trusted.
type fileConfig struct {
	MoveSelectionStyle string                 `json:"move_selection_style"`
	Temperature        *float64               `json:"temperature"`
	UCIOptions         map[string]interface{} `json:"uci_options"`
}

// Loaded bundles a persona with the engine options its file requested.
type Loaded struct {
	Persona    Persona
	UCIOptions map[string]string
}

// #endregion file-config

// #region load

// Load reads the persona config for name from dir (<dir>/<name>.json).
// A missing file is non-fatal: it logs a warning and yields the pure
// persona. A malformed or unrecognized document is an error; callers log
// it and fall back themselves.
func Load(dir, name string) (Loaded, error) {
	fallback := Loaded{Persona: Persona{Name: name, Kind: KindPure}}

	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		log.Printf("persona: no config at %s, defaulting to pure", path)
		return fallback, nil
	}
	if err != nil {
		return fallback, fmt.Errorf("read persona config %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil {
		return fallback, fmt.Errorf("parse persona config %s: %w", path, err)
	}

	kind, ok := ParseKind(fc.MoveSelectionStyle)
	if !ok {
		log.Printf("persona: unknown style %q in %s, defaulting to pure", fc.MoveSelectionStyle, path)
	}

	p := Persona{Name: name, Kind: kind}
	if kind == KindRandom {
		p.Temperature = DefaultTemperature
		if fc.Temperature != nil {
			p.Temperature = *fc.Temperature
		}
	}

	return Loaded{Persona: p, UCIOptions: stringifyOptions(fc.UCIOptions)}, nil
}

// stringifyOptions flattens JSON option values into the strings the UCI
// setoption command wants. Whole-number floats print without a decimal
// point.
func stringifyOptions(opts map[string]interface{}) map[string]string {
	if len(opts) == 0 {
		return nil
	}
	out := make(map[string]string, len(opts))
	for k, v := range opts {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = fmt.Sprintf("%v", val)
		case float64:
			if val == float64(int64(val)) {
				out[k] = fmt.Sprintf("%d", int64(val))
			} else {
				out[k] = fmt.Sprintf("%v", val)
			}
		default:
			out[k] = fmt.Sprintf("%v", val)
		}
	}
	return out
}

// #endregion load
