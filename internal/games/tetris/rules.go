package tetris

// Rules holds the timing and scoring constants of a game.
// Fall speeds are in the same time units passed to Engine.Update.
type Rules struct {
	InitialFallSpeed int // Fall threshold at level 1
	MinFallSpeed     int // Floor for the fall threshold
	FallSpeedStep    int // Threshold reduction per level
	LinesPerLevel    int // Cleared lines needed to advance a level
	LinePoints       int // Points per cleared line, multiplied by level
}

// DefaultRules returns the classic constants: 500ms at level 1, 50ms faster
// per level down to 50ms, a level every 10 lines and 100 points per line.
func DefaultRules() Rules {
	return Rules{
		InitialFallSpeed: 500,
		MinFallSpeed:     50,
		FallSpeedStep:    50,
		LinesPerLevel:    10,
		LinePoints:       100,
	}
}

// FallSpeedFor returns the fall threshold for the given level.
func (r Rules) FallSpeedFor(level int) int {
	return max(r.MinFallSpeed, r.InitialFallSpeed-(level-1)*r.FallSpeedStep)
}

// LevelFor returns the level reached after clearing the given number of lines.
func (r Rules) LevelFor(lines int) int {
	if r.LinesPerLevel <= 0 {
		return 1
	}
	return lines/r.LinesPerLevel + 1
}

// withDefaults fills zero fields from DefaultRules.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.InitialFallSpeed <= 0 {
		r.InitialFallSpeed = d.InitialFallSpeed
	}
	if r.MinFallSpeed <= 0 {
		r.MinFallSpeed = d.MinFallSpeed
	}
	if r.FallSpeedStep < 0 {
		r.FallSpeedStep = d.FallSpeedStep
	}
	if r.LinesPerLevel <= 0 {
		r.LinesPerLevel = d.LinesPerLevel
	}
	if r.LinePoints <= 0 {
		r.LinePoints = d.LinePoints
	}
	return r
}
