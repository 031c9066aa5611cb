package frametimeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// InvalidToken is the sentinel token value meaning "no token supplied
// or token unrecognized".
const InvalidToken int64 = -1

// Default thresholds and limits (spec §6).
const (
	DefaultStartThreshold    = 2 * time.Millisecond
	DefaultDeadlineThreshold = 2 * time.Millisecond
	DefaultPresentThreshold  = 2 * time.Millisecond
	DefaultPredictionRetention = 120 * time.Millisecond
	DefaultMaxDisplayFrames    = 64
	DefaultSurfaceFrameCapacityHint = 10
)

// Config holds the tunables every component reads. All fields have
// sane defaults via DefaultConfig; a JSON override file only needs to
// name the fields it wants to change.
type Config struct {
	StartThreshold            time.Duration
	DeadlineThreshold         time.Duration
	PresentThreshold          time.Duration
	PredictionRetention       time.Duration
	MaxDisplayFrames          int
	SurfaceFrameCapacityHint  int
}

// DefaultConfig returns the spec §6 defaults.
func DefaultConfig() Config {
	return Config{
		StartThreshold:           DefaultStartThreshold,
		DeadlineThreshold:        DefaultDeadlineThreshold,
		PresentThreshold:         DefaultPresentThreshold,
		PredictionRetention:      DefaultPredictionRetention,
		MaxDisplayFrames:         DefaultMaxDisplayFrames,
		SurfaceFrameCapacityHint: DefaultSurfaceFrameCapacityHint,
	}
}

// configOverride is the JSON-facing shape of Config. Every field is a
// pointer so that a partial file only overrides the fields it names;
// fields left out of the file keep DefaultConfig's values.
type configOverride struct {
	StartThreshold           *string `json:"start_threshold,omitempty"`
	DeadlineThreshold        *string `json:"deadline_threshold,omitempty"`
	PresentThreshold         *string `json:"present_threshold,omitempty"`
	PredictionRetention      *string `json:"prediction_retention,omitempty"`
	MaxDisplayFrames         *int    `json:"max_display_frames,omitempty"`
	SurfaceFrameCapacityHint *int    `json:"surface_frame_capacity_hint,omitempty"`
}

// LoadConfig reads a JSON override file and applies it on top of
// DefaultConfig. A missing field keeps its default; an invalid
// duration string or a non-positive limit is a load error.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var override configOverride
	if err := json.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg := DefaultConfig()
	if err := applyOverride(&cfg, &override); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyOverride(cfg *Config, o *configOverride) error {
	durations := []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"start_threshold", o.StartThreshold, &cfg.StartThreshold},
		{"deadline_threshold", o.DeadlineThreshold, &cfg.DeadlineThreshold},
		{"present_threshold", o.PresentThreshold, &cfg.PresentThreshold},
		{"prediction_retention", o.PredictionRetention, &cfg.PredictionRetention},
	}
	for _, d := range durations {
		if d.src == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, parsed)
		}
		*d.dst = parsed
	}

	if o.MaxDisplayFrames != nil {
		if *o.MaxDisplayFrames < 1 {
			return fmt.Errorf("max_display_frames must be >= 1, got %d", *o.MaxDisplayFrames)
		}
		cfg.MaxDisplayFrames = *o.MaxDisplayFrames
	}
	if o.SurfaceFrameCapacityHint != nil {
		if *o.SurfaceFrameCapacityHint < 0 {
			return fmt.Errorf("surface_frame_capacity_hint must be >= 0, got %d", *o.SurfaceFrameCapacityHint)
		}
		cfg.SurfaceFrameCapacityHint = *o.SurfaceFrameCapacityHint
	}
	return nil
}
