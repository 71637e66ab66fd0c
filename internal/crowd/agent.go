package crowd

import (
	"fmt"

	"github.com/Garsondee/zone-crowd/internal/nav"
)

// AgentState is the lifecycle stage of an agent. There is no "arrived"
// state: goals are re-issued continuously and agents only leave by trimming.
type AgentState int

const (
	AgentSpawning AgentState = iota // fading in
	AgentActive                     // path following
)

func (s AgentState) String() string {
	switch s {
	case AgentSpawning:
		return "spawning"
	case AgentActive:
		return "active"
	default:
		return "unknown"
	}
}

// Agent is one crowd member. Agents are owned by a SimulationContext;
// nothing else holds references to them.
type Agent struct {
	ID      int
	X, Y    float64
	Radius  float64
	Speed   float64 // personal cruise speed, capped by Crowd.MaxSpeed
	Heading float64 // radians
	Alpha   float64 // fade-in, 0..1
	State   AgentState

	Path      []nav.Point
	PathIndex int

	NextRepathAt float64 // ms
	LastBumpAt   float64 // ms
	SpawnedAt    float64 // ms

	// Orbit-band goal around the player.
	OrbitAngle  float64
	OrbitRadius float64
	OrbitDrift  float64 // rad/s
}

// Label is the short id used in event logs, e.g. "A12".
func (a *Agent) Label() string {
	return fmt.Sprintf("A%d", a.ID)
}

// HasPath reports whether the agent has waypoints left to follow.
func (a *Agent) HasPath() bool {
	return a.PathIndex < len(a.Path)
}

// AgentView is the read-only per-frame state a renderer needs.
type AgentView struct {
	ID      int
	X, Y    float64
	Heading float64
	Alpha   float64
}
