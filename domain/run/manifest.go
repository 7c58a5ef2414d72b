package run

import (
	"encoding/json"
	"math"
	"strconv"

	"tdcov/domain/core"
	"tdcov/domain/delay"
)

// CodeVersion is stamped into every manifest
const CodeVersion = "v0.3.0"

// Float is a float64 that encodes NaN and Inf as JSON null
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// SkippedGroup records a parameter group that did not contribute an accepted fit
type SkippedGroup struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ArchiveUse records which run of an estimator archive contributed mocks
type ArchiveUse struct {
	Archive string `json:"archive"`
	RunPath string `json:"run_path"`
	Rows    int    `json:"rows"`
}

// PairSummary is the per-pair outcome of calibration and covariance assembly
type PairSummary struct {
	Pair        delay.PairLabel `json:"pair"`
	DesiredStd  Float           `json:"desired_std"`
	ClipSigma   Float           `json:"clip_sigma"`
	ClipOutcome string          `json:"clip_outcome"`
	Excluded    int             `json:"excluded"`
	Total       int             `json:"total"`
	Systematic  Float           `json:"systematic"`
	Std         Float           `json:"std"`
	Ratio       Float           `json:"ratio"`
}

// Manifest is the audit record written next to the covariance matrix
type Manifest struct {
	RunID             core.RunID             `json:"run_id"`
	Lens              string                 `json:"lens"`
	Dataset           string                 `json:"dataset"`
	CodeVersion       string                 `json:"code_version"`
	InputHash         core.Hash              `json:"input_hash"`
	UsedGroupFallback bool                   `json:"used_group_fallback"`
	AcceptedFits      []delay.AcceptedFit    `json:"accepted_fits"`
	SkippedGroups     []SkippedGroup         `json:"skipped_groups,omitempty"`
	Archives          []ArchiveUse           `json:"archives"`
	SkippedArchives   []string               `json:"skipped_archives,omitempty"`
	Rows              int                    `json:"rows"`
	Pairs             []PairSummary          `json:"pairs"`
	MedianRatio       Float                  `json:"median_ratio"`
	Settings          map[string]interface{} `json:"settings"`
	CreatedAt         core.Timestamp         `json:"created_at"`
	DurationMs        int64                  `json:"duration_ms"`
}

// NewManifest starts a manifest for a lens/dataset run. The input hash is
// derived from the contributing run paths and the settings.
func NewManifest(runID core.RunID, lens, dataset string, archives []ArchiveUse, settings map[string]interface{}) *Manifest {
	paths := make([]string, 0, len(archives))
	for _, a := range archives {
		paths = append(paths, a.RunPath)
	}
	return &Manifest{
		RunID:       runID,
		Lens:        lens,
		Dataset:     dataset,
		CodeVersion: CodeVersion,
		InputHash:   core.ComputeInputHash(paths, settings),
		Archives:    archives,
		Settings:    settings,
		CreatedAt:   core.Now(),
	}
}

// FallbackPairs lists the pairs whose clip sigma is a default rather than calibrated
func (m *Manifest) FallbackPairs() []delay.PairLabel {
	var out []delay.PairLabel
	for _, p := range m.Pairs {
		if p.ClipOutcome != "calibrated" {
			out = append(out, p.Pair)
		}
	}
	return out
}
