package app

import (
	"context"
	"fmt"
	"strings"

	"tdcov/domain/core"
	"tdcov/domain/delay"
	"tdcov/domain/run"
	"tdcov/internal"
	"tdcov/internal/config"
	"tdcov/ports"
)

// ParseStatus is the outcome of reading one parameter group name
type ParseStatus int

const (
	ParseOK ParseStatus = iota
	// ParseCombined marks the aggregate group, never used as a fit
	ParseCombined
	// ParseMalformed marks a name that cannot be split into tokens
	ParseMalformed
)

func (s ParseStatus) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseCombined:
		return "combined"
	case ParseMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("ParseStatus(%d)", int(s))
	}
}

// GroupParse is the result of GroupSelector.Parse
type GroupParse struct {
	Status ParseStatus
	Fit    delay.AcceptedFit
	Reason string
}

// Selection is everything later stages need from the parameter groups
type Selection struct {
	Groups       []delay.ParameterGroup
	PairLabels   []delay.PairLabel
	EntityLabels []delay.EntityLabel
	Accepted     []delay.AcceptedFit
	Skipped      []run.SkippedGroup
	UsedFallback bool
}

// GroupSelector loads the upstream parameter groups and turns their names
// into accepted fit configurations
type GroupSelector struct {
	store   ports.GroupStore
	markers config.SelectionConfig
	logger  *internal.Logger
}

// NewGroupSelector creates a group selector
func NewGroupSelector(store ports.GroupStore, markers config.SelectionConfig, logger *internal.Logger) *GroupSelector {
	return &GroupSelector{store: store, markers: markers, logger: logger}
}

// Select loads the accepted groups, falling back to every evaluated group
// when the accepted list is missing or empty.
func (s *GroupSelector) Select(ctx context.Context, lens, dataset string) (*Selection, error) {
	groups, usedFallback, err := s.load(ctx, lens, dataset)
	if err != nil {
		return nil, err
	}

	sel := &Selection{
		Groups:       groups,
		PairLabels:   delay.SortPairs(groups[0].Labels),
		UsedFallback: usedFallback,
	}
	for _, p := range sel.PairLabels {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("group %s: %w", groups[0].Name, err)
		}
	}
	sel.EntityLabels = delay.EntitiesOf(sel.PairLabels)

	seen := make(map[delay.AcceptedFit]struct{}, len(groups))
	for _, g := range groups {
		parsed := s.Parse(g.Name)
		switch parsed.Status {
		case ParseCombined:
			s.logger.Debug("Skipping combined group %s", g.Name)
			continue
		case ParseMalformed:
			s.logger.Warn("Skipping group %s: %s", g.Name, parsed.Reason)
			sel.Skipped = append(sel.Skipped, run.SkippedGroup{Name: g.Name, Reason: parsed.Reason})
			continue
		}
		if _, dup := seen[parsed.Fit]; dup {
			continue
		}
		seen[parsed.Fit] = struct{}{}
		s.logger.Info("Using knot: %s, microlensing: %s", parsed.Fit.Knot, parsed.Fit.Microlensing)
		sel.Accepted = append(sel.Accepted, parsed.Fit)
	}
	return sel, nil
}

func (s *GroupSelector) load(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, bool, error) {
	groups, err := s.store.LoadAccepted(ctx, lens, dataset)
	switch {
	case err == nil && len(groups) > 0:
		return groups, false, nil
	case err != nil && !core.IsNotFoundError(err):
		return nil, false, fmt.Errorf("failed to load accepted groups: %w", err)
	}

	s.logger.Warn("Loading all groups for %s_%s (accepted groups unavailable)", lens, dataset)
	groups, err = s.store.LoadAll(ctx, lens, dataset)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, true, fmt.Errorf("%w: %v", core.ErrNoGroups, err)
		}
		return nil, true, fmt.Errorf("failed to load all groups: %w", err)
	}
	if len(groups) == 0 {
		return nil, true, core.ErrNoGroups
	}
	return groups, true, nil
}

// Parse extracts the knot token and microlensing model from a group name,
// e.g. "spl1_ks35_splml_nmlspl_2_xx" gives knot "ks35" and spline model "2".
func (s *GroupSelector) Parse(name string) GroupParse {
	if s.markers.CombinedMarker != "" && strings.Contains(name, s.markers.CombinedMarker) {
		return GroupParse{Status: ParseCombined}
	}
	tokens := strings.Split(name, "_")
	if len(tokens) < 2 {
		return GroupParse{Status: ParseMalformed, Reason: "name has fewer than two '_' separated tokens"}
	}

	fit := delay.AcceptedFit{Knot: tokens[1], Microlensing: delay.NoMicrolensing}
	if param, ok := markerParam(name, s.markers.SplineMarker); ok {
		fit.Microlensing = delay.SplineMicrolensing(param)
	} else if param, ok := markerParam(name, s.markers.PolynomialMarker); ok {
		fit.Microlensing = delay.PolynomialMicrolensing(param)
	}
	return GroupParse{Status: ParseOK, Fit: fit}
}

// markerParam returns the text between the first and second occurrence of
// marker, minus its last 3 characters
func markerParam(name, marker string) (string, bool) {
	if marker == "" || !strings.Contains(name, marker) {
		return "", false
	}
	part := strings.Split(name, marker)[1]
	if len(part) <= 3 {
		return "", true
	}
	return part[:len(part)-3], true
}
