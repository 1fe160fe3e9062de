package vm

import "time"

// Limits holds the three independently-configurable
// runtime safety limits spec.md §4.4 mandates: instruction count, wall
// time, and stack depth, each checked before every instruction is
// dispatched. Defaults match the spec's stated values; internal/config
// overrides them from .hgsrc.yaml.
type Limits struct {
	MaxInstructions   int64
	MaxExecutionTime  time.Duration
	MaxStackDepth     int
}

// DefaultLimits returns spec.md §4.4's stated defaults: 10,000,000
// instructions, 5,000ms wall time, 65,536 stack slots.
func DefaultLimits() Limits {
	return Limits{
		MaxInstructions:  10_000_000,
		MaxExecutionTime: 5_000 * time.Millisecond,
		MaxStackDepth:    65_536,
	}
}
