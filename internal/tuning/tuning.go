// Package tuning supplies the runtime-adjustable knobs of the mission
// engine: drift penalty magnitudes, modifier event thresholds and
// modifier effect sizes. The engine works with hard-coded defaults when
// no remote source is configured; a remote source is consulted through
// a revision-checked cache that falls back rather than fail a turn.
package tuning

import (
	"context"

	"github.com/sofos1231/socialos-server/internal/domain/rules"
)

// Tuning bundles every externally adjustable table.
type Tuning struct {
	DriftPenalties  rules.DriftPenalties  `json:"drift_penalties"`
	EventThresholds rules.EventThresholds `json:"event_thresholds"`
	ModifierConfig  rules.ModifierConfig  `json:"modifier_config"`
}

// Defaults returns the hard-coded fallback tuning.
func Defaults() Tuning {
	return Tuning{
		DriftPenalties:  rules.DefaultDriftPenalties(),
		EventThresholds: rules.DefaultEventThresholds(),
		ModifierConfig:  rules.DefaultModifierConfig(),
	}
}

// Provider hands the engine its current tuning. Implementations never
// return an error: a provider that cannot reach its source serves the
// last known good tuning, or the defaults.
type Provider interface {
	Tuning(ctx context.Context) Tuning
}

// Static is the no-op provider serving a fixed tuning.
type Static struct {
	t Tuning
}

// NewStatic creates a provider that always serves t.
func NewStatic(t Tuning) *Static {
	return &Static{t: t}
}

// Tuning implements Provider.
func (s *Static) Tuning(context.Context) Tuning {
	return s.t
}
