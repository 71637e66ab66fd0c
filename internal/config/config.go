package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the navigation and crowd core.
type Config struct {
	World    World    `yaml:"world"`
	Mask     Mask     `yaml:"mask"`
	Nav      Nav      `yaml:"nav"`
	Crowd    Crowd    `yaml:"crowd"`
	Pressure Pressure `yaml:"pressure"`
}

// World sizes the primary world region. Zero means "use the mask size".
type World struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Mask holds classifier tolerances.
type Mask struct {
	StrictTol   int `yaml:"strict_tol"`
	WhiteTol    int `yaml:"white_tol"`
	TolerantTol int `yaml:"tolerant_tol"`
	MinBlue     int `yaml:"min_blue"`
	Dominance   int `yaml:"dominance"`
}

// Nav configures the navigation grid.
type Nav struct {
	CellSize float64 `yaml:"cell_size"`
}

// Band is a rectangle expressed as fractions of the world size.
type Band struct {
	X0 float64 `yaml:"x0"`
	Y0 float64 `yaml:"y0"`
	X1 float64 `yaml:"x1"`
	Y1 float64 `yaml:"y1"`
}

// PassStep gives the separation pass count for populations up to
// MaxAgents. MaxAgents 0 matches any population.
type PassStep struct {
	MaxAgents int `yaml:"max_agents"`
	Passes    int `yaml:"passes"`
}

// RepathStep multiplies the repath interval once the population reaches
// MinAgents. The highest matching step wins.
type RepathStep struct {
	MinAgents int     `yaml:"min_agents"`
	Scale     float64 `yaml:"scale"`
}

// Crowd tunes the crowd simulator. Times are milliseconds, distances world
// units, speeds world units per second.
type Crowd struct {
	MatchWaiting    bool `yaml:"match_waiting"`
	PopulationBase  int  `yaml:"population_base"`
	PopulationRange int  `yaml:"population_range"`
	PopulationCap   int  `yaml:"population_cap"`

	SpawnBurst          int     `yaml:"spawn_burst"`
	SpawnIntervalMs     float64 `yaml:"spawn_interval_ms"`
	SpawnIntervalMinMs  float64 `yaml:"spawn_interval_min_ms"`
	SpawnIntervalSlowMs float64 `yaml:"spawn_interval_slow_ms"`
	SpawnRetries        int     `yaml:"spawn_retries"`
	SpawnBand           Band    `yaml:"spawn_band"`

	OrbitMin         float64 `yaml:"orbit_min"`
	OrbitMax         float64 `yaml:"orbit_max"`
	OrbitDrift       float64 `yaml:"orbit_drift"`        // max angular velocity, rad/s
	OrbitRadiusDrift float64 `yaml:"orbit_radius_drift"` // units/s

	SeparationPad    float64    `yaml:"separation_pad"`
	SeparationPasses []PassStep `yaml:"separation_passes"`

	RepathBaseMs     float64      `yaml:"repath_base_ms"`
	RepathJitterMs   float64      `yaml:"repath_jitter_ms"`
	RepathRetryMs    float64      `yaml:"repath_retry_ms"`
	RepathBudget     int          `yaml:"repath_budget"`
	RepathThresholds []RepathStep `yaml:"repath_thresholds"`
	MovingRepathMul  float64      `yaml:"moving_repath_mul"`

	AgentRadius    float64 `yaml:"agent_radius"`
	AgentSpeedMin  float64 `yaml:"agent_speed_min"`
	AgentSpeedMax  float64 `yaml:"agent_speed_max"`
	MaxSpeed       float64 `yaml:"max_speed"`
	WaypointRadius float64 `yaml:"waypoint_radius"`

	PlayerRadius     float64 `yaml:"player_radius"`
	PlayerSoftRadius float64 `yaml:"player_soft_radius"`
	SoftStrength     float64 `yaml:"soft_strength"`
	BumpCooldownMs   float64 `yaml:"bump_cooldown_ms"`

	FadeInMs float64 `yaml:"fade_in_ms"`
	MaxDtMs  float64 `yaml:"max_dt_ms"`
}

// Pressure weights the backlog/quality signals that make up pressure.
type Pressure struct {
	BacklogWeight   float64 `yaml:"backlog_weight"`
	EventWeight     float64 `yaml:"event_weight"`
	QualityWeight   float64 `yaml:"quality_weight"`
	UrgencyWeight   float64 `yaml:"urgency_weight"`
	BacklogCap      int     `yaml:"backlog_cap"`
	EventSaturation int     `yaml:"event_saturation"`
	UrgencyWindowS  float64 `yaml:"urgency_window_s"`
	Smoothing       float64 `yaml:"smoothing"` // 0 = none, towards 1 = sluggish
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Mask: Mask{
			StrictTol:   2,
			WhiteTol:    30,
			TolerantTol: 48,
			MinBlue:     120,
			Dominance:   40,
		},
		Nav: Nav{CellSize: 12},
		Crowd: Crowd{
			PopulationBase:  12,
			PopulationRange: 60,
			PopulationCap:   180,

			SpawnBurst:          4,
			SpawnIntervalMs:     350,
			SpawnIntervalMinMs:  60,
			SpawnIntervalSlowMs: 1200,
			SpawnRetries:        24,
			SpawnBand:           Band{X0: 0, Y0: 0.1, X1: 0.08, Y1: 0.9},

			OrbitMin:         60,
			OrbitMax:         180,
			OrbitDrift:       0.35,
			OrbitRadiusDrift: 12,

			SeparationPad: 2,
			SeparationPasses: []PassStep{
				{MaxAgents: 40, Passes: 3},
				{MaxAgents: 120, Passes: 2},
				{MaxAgents: 0, Passes: 1},
			},

			RepathBaseMs:   600,
			RepathJitterMs: 400,
			RepathRetryMs:  150,
			RepathBudget:   8,
			RepathThresholds: []RepathStep{
				{MinAgents: 60, Scale: 1.5},
				{MinAgents: 120, Scale: 2.25},
			},
			MovingRepathMul: 1.5,

			AgentRadius:    7,
			AgentSpeedMin:  45,
			AgentSpeedMax:  75,
			MaxSpeed:       70,
			WaypointRadius: 4,

			PlayerRadius:     12,
			PlayerSoftRadius: 40,
			SoftStrength:     0.25,
			BumpCooldownMs:   800,

			FadeInMs: 400,
			MaxDtMs:  33,
		},
		Pressure: Pressure{
			BacklogWeight:   0.5,
			EventWeight:     0.2,
			QualityWeight:   0.2,
			UrgencyWeight:   0.1,
			BacklogCap:      50,
			EventSaturation: 3,
			UrgencyWindowS:  30,
			Smoothing:       0.1,
		},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Validate reports every out-of-range tunable.
func (c Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%s: invalid value %v", field, v))
	}

	if c.World.Width < 0 || c.World.Height < 0 {
		bad("world", fmt.Sprintf("%gx%g", c.World.Width, c.World.Height))
	}
	if c.Nav.CellSize <= 0 {
		bad("nav.cell_size", c.Nav.CellSize)
	}
	if c.Mask.StrictTol < 0 || c.Mask.TolerantTol < c.Mask.StrictTol {
		bad("mask.tolerant_tol", c.Mask.TolerantTol)
	}

	cr := c.Crowd
	if cr.PopulationCap < 0 {
		bad("crowd.population_cap", cr.PopulationCap)
	}
	if cr.PopulationBase < 0 || cr.PopulationRange < 0 {
		bad("crowd.population_base/range", fmt.Sprintf("%d/%d", cr.PopulationBase, cr.PopulationRange))
	}
	if cr.SpawnBurst < 1 {
		bad("crowd.spawn_burst", cr.SpawnBurst)
	}
	if cr.SpawnIntervalMinMs < 0 || cr.SpawnIntervalMs < cr.SpawnIntervalMinMs {
		bad("crowd.spawn_interval_ms", cr.SpawnIntervalMs)
	}
	if cr.SpawnIntervalSlowMs < cr.SpawnIntervalMs {
		bad("crowd.spawn_interval_slow_ms", cr.SpawnIntervalSlowMs)
	}
	if cr.SpawnRetries < 1 {
		bad("crowd.spawn_retries", cr.SpawnRetries)
	}
	b := cr.SpawnBand
	if b.X0 < 0 || b.Y0 < 0 || b.X1 > 1 || b.Y1 > 1 || b.X0 > b.X1 || b.Y0 > b.Y1 {
		bad("crowd.spawn_band", fmt.Sprintf("%+v", b))
	}
	if cr.OrbitMin < 0 || cr.OrbitMax < cr.OrbitMin {
		bad("crowd.orbit_min/max", fmt.Sprintf("%g/%g", cr.OrbitMin, cr.OrbitMax))
	}
	if len(cr.SeparationPasses) == 0 {
		bad("crowd.separation_passes", "empty")
	}
	for i, s := range cr.SeparationPasses {
		if s.Passes < 0 || s.MaxAgents < 0 {
			bad(fmt.Sprintf("crowd.separation_passes[%d]", i), fmt.Sprintf("%+v", s))
		}
	}
	if cr.RepathBudget < 1 {
		bad("crowd.repath_budget", cr.RepathBudget)
	}
	if cr.RepathBaseMs <= 0 || cr.RepathJitterMs < 0 || cr.RepathRetryMs < 0 {
		bad("crowd.repath_base_ms", cr.RepathBaseMs)
	}
	for i, s := range cr.RepathThresholds {
		if s.Scale < 1 {
			bad(fmt.Sprintf("crowd.repath_thresholds[%d].scale", i), s.Scale)
		}
	}
	if cr.MovingRepathMul < 1 {
		bad("crowd.moving_repath_mul", cr.MovingRepathMul)
	}
	if cr.AgentRadius <= 0 {
		bad("crowd.agent_radius", cr.AgentRadius)
	}
	if cr.AgentSpeedMin <= 0 || cr.AgentSpeedMax < cr.AgentSpeedMin {
		bad("crowd.agent_speed_min/max", fmt.Sprintf("%g/%g", cr.AgentSpeedMin, cr.AgentSpeedMax))
	}
	if cr.MaxSpeed <= 0 {
		bad("crowd.max_speed", cr.MaxSpeed)
	}
	if cr.PlayerRadius < 0 || cr.PlayerSoftRadius < cr.PlayerRadius {
		bad("crowd.player_soft_radius", cr.PlayerSoftRadius)
	}
	if cr.SoftStrength <= 0 || cr.SoftStrength >= 1 {
		bad("crowd.soft_strength", cr.SoftStrength)
	}
	if cr.FadeInMs < 0 {
		bad("crowd.fade_in_ms", cr.FadeInMs)
	}
	if cr.MaxDtMs <= 0 {
		bad("crowd.max_dt_ms", cr.MaxDtMs)
	}

	p := c.Pressure
	if p.Smoothing < 0 || p.Smoothing >= 1 {
		bad("pressure.smoothing", p.Smoothing)
	}
	if p.BacklogCap < 1 {
		bad("pressure.backlog_cap", p.BacklogCap)
	}

	return errors.Join(errs...)
}
