package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration is a time.Duration that unmarshals from "30m" style JSON strings.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30m\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Config carries every path and tunable the pipeline needs. Components receive
// it (or pieces of it) explicitly; nothing reads the working directory or the
// environment behind the caller's back.
type Config struct {
	// SharedDir holds the circuit artifacts common to all subjects.
	SharedDir string `json:"shared_dir"`
	// SubjectsDir holds one directory per subject address.
	SubjectsDir string `json:"subjects_dir"`

	// EzklBin is the proving engine binary, resolved through PATH.
	EzklBin string `json:"ezkl_bin"`
	// ToolTimeout bounds each engine invocation. Zero means no limit.
	ToolTimeout Duration `json:"tool_timeout"`

	// ScoreScale is the fixed-point denominator the engine uses when it embeds
	// the model output in the proof. It varies across model versions, so it is
	// a setting rather than a constant.
	ScoreScale float64 `json:"score_scale"`
	// ScoreTolerance is the maximum |normalized - plaintext| gap before the
	// reconciler flags a discrepancy.
	ScoreTolerance float64 `json:"score_tolerance"`

	LogLevel string `json:"log_level"`
	// LogFile, when set, additionally writes logs to a rotated file.
	LogFile string `json:"log_file"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		SharedDir:      "proof_generation/shared",
		SubjectsDir:    "proof_generation/subjects",
		EzklBin:        "ezkl",
		ToolTimeout:    Duration(30 * time.Minute),
		ScoreScale:     1 << 26,
		ScoreTolerance: 0.005,
		LogLevel:       "info",
	}
}

// Load overlays the JSON file at path onto the defaults. An empty path yields
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations no pipeline run could succeed with.
func (c Config) Validate() error {
	if c.SharedDir == "" {
		return errors.New("config: shared_dir must be set")
	}
	if c.SubjectsDir == "" {
		return errors.New("config: subjects_dir must be set")
	}
	if c.ScoreScale <= 0 {
		return fmt.Errorf("config: score_scale must be positive, got %v", c.ScoreScale)
	}
	if c.ScoreTolerance <= 0 {
		return fmt.Errorf("config: score_tolerance must be positive, got %v", c.ScoreTolerance)
	}
	return nil
}
