package engine

import (
	"sort"
	"time"
)

// Fallbacks used for attributes that have no configuration entry, so
// progression keeps moving on a config gap instead of halting.
const (
	DefaultThreshold       = 100.0
	DefaultPointsPerUnit   = 0.2
	DefaultDailySaturation = 60.0
)

// AttributeConfig holds the static, process-wide constants for one attribute.
// The table is shared by all users and injected at call time.
type AttributeConfig struct {
	Unit            string
	PointsPerUnit   float64
	DailySaturation float64
	ThresholdMin    float64
	ThresholdMax    float64
}

// Threshold derives the reward-point cost of one subtier promotion: the
// weekly-equivalent of the attribute's daily rate, clamped to the configured
// range.
func (c AttributeConfig) Threshold() float64 {
	return clamp(c.PointsPerUnit*c.DailySaturation*7, c.ThresholdMin, c.ThresholdMax)
}

// AttributeState is the per-user progression accumulator for one attribute.
// Invariant after every update: 0 <= RP < threshold, 0 <= Subtier <= 4.
type AttributeState struct {
	Tier       int
	Subtier    int
	RP         float64
	LastUpdate *time.Time
	PromotedAt *time.Time
}

// ActivityInput is a normalized activity record entering the progression
// engine. Weights are resolved at the boundary (explicit override or category
// default), so the engine never branches on provenance.
type ActivityInput struct {
	ID        string
	Timestamp time.Time
	BaseUnits float64
	// Weights maps attribute key to the share of BaseUnits it receives.
	Weights map[string]float64
	// Caps optionally limits an attribute's units to a fraction of BaseUnits.
	Caps map[string]float64
}

// Tracker is the tier/subtier state machine over a set of attributes. It is
// not safe for concurrent use; callers serialize same-day applies per user.
type Tracker struct {
	configs            map[string]AttributeConfig
	defaultThreshold   float64
	fallbackPPU        float64
	fallbackSaturation float64
	loc                *time.Location
	now                func() time.Time

	states map[string]*AttributeState
	// dayUnits tracks raw units already applied per local day and attribute,
	// feeding the usedToday input of credit allocation.
	dayUnits map[string]map[string]float64
}

// TrackerOption customises a Tracker.
type TrackerOption func(*Tracker)

// WithDefaultThreshold overrides the fallback threshold for unknown
// attributes.
func WithDefaultThreshold(threshold float64) TrackerOption {
	return func(t *Tracker) {
		if threshold > 0 {
			t.defaultThreshold = threshold
		}
	}
}

// WithFallbackRates overrides the points-per-unit and daily saturation used
// for attributes that have no config entry.
func WithFallbackRates(pointsPerUnit, saturation float64) TrackerOption {
	return func(t *Tracker) {
		if pointsPerUnit > 0 {
			t.fallbackPPU = pointsPerUnit
		}
		if saturation > 0 {
			t.fallbackSaturation = saturation
		}
	}
}

// WithLocation sets the location used to bucket same-day consumption.
func WithLocation(loc *time.Location) TrackerOption {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithClock overrides the timestamp source for LastUpdate/PromotedAt stamps.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTracker builds a Tracker over the given attribute configuration table.
func NewTracker(configs map[string]AttributeConfig, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		configs:            configs,
		defaultThreshold:   DefaultThreshold,
		fallbackPPU:        DefaultPointsPerUnit,
		fallbackSaturation: DefaultDailySaturation,
		loc:                time.Local,
		now:                time.Now,
		states:             make(map[string]*AttributeState),
		dayUnits:           make(map[string]map[string]float64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Threshold returns the promotion threshold for attr, falling back to the
// default when the attribute has no config entry.
func (t *Tracker) Threshold(attr string) float64 {
	cfg, ok := t.configs[attr]
	if !ok {
		return t.defaultThreshold
	}
	return cfg.Threshold()
}

// ApplyGain adds reward points to attr and promotes while the accumulated
// points cover the threshold, carrying the remainder forward. Negative or
// non-finite gains are treated as zero to keep the machine monotonic.
func (t *Tracker) ApplyGain(attr string, gain float64) {
	gain = sanitize(gain)
	state := t.ensure(attr)
	threshold := t.Threshold(attr)

	state.RP += gain
	stamp := t.now().UTC()
	for threshold > 0 && state.RP >= threshold {
		state.RP -= threshold
		state.Subtier++
		if state.Subtier >= 5 {
			state.Subtier = 0
			state.Tier++
		}
		promoted := stamp
		state.PromotedAt = &promoted
	}
	state.LastUpdate = &stamp
}

// Apply feeds one activity record through credit allocation into the state
// machine. usedToday reflects records applied before this one on the same
// local day, which keeps the incremental path equivalent to a full rebuild.
func (t *Tracker) Apply(rec ActivityInput) {
	day := DayKey(rec.Timestamp, t.loc)
	baseUnits := sanitize(rec.BaseUnits)

	for attr, weight := range rec.Weights {
		rawUnits := baseUnits * sanitize(weight)
		if capFrac, ok := rec.Caps[attr]; ok {
			capUnits := baseUnits * clamp(sanitize(capFrac), 0, 1)
			if rawUnits > capUnits {
				rawUnits = capUnits
			}
		}
		if rawUnits <= 0 {
			continue
		}

		cfg := t.config(attr)
		usedToday := t.usedToday(day, attr)
		credited := AllocateCredit(rawUnits, usedToday, cfg.DailySaturation)
		t.ApplyGain(attr, credited*cfg.PointsPerUnit)
		t.addDayUnits(day, attr, rawUnits)
	}
}

// RebuildFromHistory resets every attribute state and replays the records in
// ascending timestamp order. This is the recovery path after edits, deletes
// and imports, and must match the incremental path over the same history.
func (t *Tracker) RebuildFromHistory(records []ActivityInput) {
	t.Reset()
	sorted := make([]ActivityInput, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	for _, rec := range sorted {
		t.Apply(rec)
	}
}

// Reset clears all states and same-day consumption.
func (t *Tracker) Reset() {
	t.states = make(map[string]*AttributeState)
	t.dayUnits = make(map[string]map[string]float64)
}

// State returns a copy of the state for attr.
func (t *Tracker) State(attr string) AttributeState {
	if s, ok := t.states[attr]; ok {
		return *s
	}
	return AttributeState{}
}

// States returns a copy of all tracked attribute states.
func (t *Tracker) States() map[string]AttributeState {
	out := make(map[string]AttributeState, len(t.states))
	for attr, s := range t.states {
		out[attr] = *s
	}
	return out
}

// config resolves the rate constants for attr, substituting the fallback
// rates on a config gap so unknown attributes still earn points.
func (t *Tracker) config(attr string) AttributeConfig {
	if cfg, ok := t.configs[attr]; ok {
		return cfg
	}
	return AttributeConfig{
		PointsPerUnit:   t.fallbackPPU,
		DailySaturation: t.fallbackSaturation,
	}
}

func (t *Tracker) ensure(attr string) *AttributeState {
	if s, ok := t.states[attr]; ok {
		return s
	}
	s := &AttributeState{}
	t.states[attr] = s
	return s
}

func (t *Tracker) usedToday(day, attr string) float64 {
	if units, ok := t.dayUnits[day]; ok {
		return units[attr]
	}
	return 0
}

func (t *Tracker) addDayUnits(day, attr string, units float64) {
	if _, ok := t.dayUnits[day]; !ok {
		t.dayUnits[day] = make(map[string]float64)
	}
	t.dayUnits[day][attr] += units
}
