package scoring

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Weights defines the blend weights for the content score components.
type Weights struct {
	Recency   float64 `json:"recency"`   // Weight for the recency decay score (default: 0.2)
	Engagement float64 `json:"engagement"` // Weight for the views-normalized engagement rate (default: 0.4)
	Relevance float64 `json:"relevance"` // Weight for interest/social relevance (default: 0.35)
	Diversity float64 `json:"diversity"` // Weight for the diversity penalty term (default: 0.05)
}

// CalibrationConfig represents the JSON structure of the calibration file.
type CalibrationConfig struct {
	Version string  `json:"version"` // Config version for future compatibility
	Weights Weights `json:"weights"` // Weight configuration
}

// DefaultWeights returns the default content score weight configuration.
//
// Formula: score = 0.2*recency + 0.4*engagement + 0.35*relevance + 0.05*diversity
// Engagement dominates because views-normalized interaction rate is the
// strongest ranking signal; the diversity term only nudges ties.
func DefaultWeights() *Weights {
	return &Weights{
		Recency:    0.2,
		Engagement: 0.4,
		Relevance:  0.35,
		Diversity:  0.05,
	}
}

// LoadCalibration loads content score weights from a JSON calibration file.
// If the file doesn't exist or can't be parsed, returns default weights
// with an error so the caller can degrade gracefully. Partial
// configurations are merged with defaults.
func LoadCalibration(filePath string) (*Weights, error) {
	if filePath == "" {
		return DefaultWeights(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		slog.Warn("failed to read calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to read calibration file: %w", err)
	}

	var config CalibrationConfig
	if err := json.Unmarshal(data, &config); err != nil {
		slog.Warn("failed to parse calibration file, using defaults",
			"path", filePath,
			"error", err)
		return DefaultWeights(), fmt.Errorf("failed to parse calibration file: %w", err)
	}

	defaults := DefaultWeights()
	merged := MergeCalibration(defaults, &config.Weights)
	logCalibrationOverrides(defaults, merged)

	return merged, nil
}

// MergeCalibration merges override weights with base weights.
// Only non-zero values from the override are applied, which allows
// partial overrides in the calibration file.
func MergeCalibration(base *Weights, override *Weights) *Weights {
	if base == nil {
		return DefaultWeights()
	}
	if override == nil {
		result := *base
		return &result
	}

	result := *base

	if override.Recency != 0 {
		result.Recency = override.Recency
	}
	if override.Engagement != 0 {
		result.Engagement = override.Engagement
	}
	if override.Relevance != 0 {
		result.Relevance = override.Relevance
	}
	if override.Diversity != 0 {
		result.Diversity = override.Diversity
	}

	return &result
}

// logCalibrationOverrides logs which weights were overridden from defaults.
func logCalibrationOverrides(defaults *Weights, loaded *Weights) {
	var overrides []string

	if loaded.Recency != defaults.Recency {
		overrides = append(overrides, fmt.Sprintf("recency: %.2f -> %.2f",
			defaults.Recency, loaded.Recency))
	}
	if loaded.Engagement != defaults.Engagement {
		overrides = append(overrides, fmt.Sprintf("engagement: %.2f -> %.2f",
			defaults.Engagement, loaded.Engagement))
	}
	if loaded.Relevance != defaults.Relevance {
		overrides = append(overrides, fmt.Sprintf("relevance: %.2f -> %.2f",
			defaults.Relevance, loaded.Relevance))
	}
	if loaded.Diversity != defaults.Diversity {
		overrides = append(overrides, fmt.Sprintf("diversity: %.2f -> %.2f",
			defaults.Diversity, loaded.Diversity))
	}

	if len(overrides) > 0 {
		slog.Info("loaded scoring calibration with overrides",
			"overrides", overrides)
	} else {
		slog.Info("loaded scoring calibration (using all defaults)")
	}
}
