package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrScoreUnavailable means no scaled score could be found. Callers treat it
// as an informational skip, never a pipeline failure.
var ErrScoreUnavailable = errors.New("score: no scaled score available")

// witnessFile mirrors the slice of the engine's witness.json we read. The
// rescaled decimal output is preferred; the raw field element hex is the
// fallback for engines that omit pretty printing.
type witnessFile struct {
	Outputs        [][]string `json:"outputs"`
	PrettyElements struct {
		RescaledOutputs [][]json.RawMessage `json:"rescaled_outputs"`
	} `json:"pretty_elements"`
}

// ExtractScaled reads the scaled model output committed in a witness file.
func ExtractScaled(path string, scale float64) (int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read witness: %w", err)
	}
	var w witnessFile
	if err := json.Unmarshal(raw, &w); err != nil {
		return 0, fmt.Errorf("parse witness %s: %w", path, err)
	}

	if out := w.PrettyElements.RescaledOutputs; len(out) > 0 && len(out[0]) > 0 {
		if v, err := parseRescaled(out[0][0]); err == nil {
			return ToScaled(v, scale), nil
		}
	}
	if len(w.Outputs) > 0 && len(w.Outputs[0]) > 0 {
		if v, err := parseHexOutput(w.Outputs[0][0]); err == nil {
			return v, nil
		}
	}
	return 0, ErrScoreUnavailable
}

// parseRescaled accepts both the string and number encodings the engine has
// used across releases.
func parseRescaled(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	return 0, fmt.Errorf("unrecognized rescaled output %s", raw)
}

// parseHexOutput decodes the engine's zero-padded field element hex, where
// the leading four digits carry the scaled value.
func parseHexOutput(s string) (int64, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) < 4 {
		return 0, fmt.Errorf("hex output too short: %q", s)
	}
	v, err := strconv.ParseInt(s[:4], 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hex output: %w", err)
	}
	return v, nil
}
