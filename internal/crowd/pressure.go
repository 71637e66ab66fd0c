package crowd

import (
	"math"

	"github.com/Garsondee/zone-crowd/internal/config"
)

// PressureSignals are the game-economy inputs pressure is derived from.
type PressureSignals struct {
	Backlog         int     // unshipped items
	ActiveEvents    int     // event overlays currently running
	Quality         float64 // 0..1, 1 = perfect
	TimeToNextEvent float64 // seconds; <= 0 means none scheduled
}

// PressureSource produces the pressure scalar for a tick.
type PressureSource interface {
	Pressure(sig PressureSignals) float64
}

// FixedPressure ignores the signals and always reports the same value.
type FixedPressure float64

func (p FixedPressure) Pressure(PressureSignals) float64 {
	return clamp01(float64(p))
}

// PressureModel blends backlog, event, quality and urgency signals into a
// single scalar in [0,1], optionally smoothed over time.
type PressureModel struct {
	cfg     config.Pressure
	current float64
	primed  bool
}

// NewPressureModel returns a model using cfg's weights.
func NewPressureModel(cfg config.Pressure) *PressureModel {
	return &PressureModel{cfg: cfg}
}

// Raw computes the unsmoothed pressure for sig.
func (m *PressureModel) Raw(sig PressureSignals) float64 {
	c := m.cfg
	backlog := 0.0
	if c.BacklogCap > 0 {
		backlog = clamp01(float64(sig.Backlog) / float64(c.BacklogCap))
	}
	events := 0.0
	if c.EventSaturation > 0 {
		events = clamp01(float64(sig.ActiveEvents) / float64(c.EventSaturation))
	}
	quality := 1 - clamp01(sig.Quality)
	urgency := 0.0
	if sig.TimeToNextEvent > 0 && c.UrgencyWindowS > 0 {
		urgency = clamp01(1 - sig.TimeToNextEvent/c.UrgencyWindowS)
	}

	total := c.BacklogWeight + c.EventWeight + c.QualityWeight + c.UrgencyWeight
	if total <= 0 {
		return 0
	}
	v := c.BacklogWeight*backlog + c.EventWeight*events + c.QualityWeight*quality + c.UrgencyWeight*urgency
	return clamp01(v / total)
}

// Pressure updates and returns the smoothed pressure.
func (m *PressureModel) Pressure(sig PressureSignals) float64 {
	raw := m.Raw(sig)
	if !m.primed {
		m.current = raw
		m.primed = true
		return raw
	}
	m.current += (raw - m.current) * (1 - m.cfg.Smoothing)
	return m.current
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
