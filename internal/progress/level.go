package progress

import "math"

// LevelFor returns the level reached with xp: floor(1 + sqrt(xp/100)).
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return 1 + isqrt(xp/100)
}

// LevelThreshold returns the XP needed to leave level, i.e. the maxXp
// shown while at that level.
func LevelThreshold(level int) int {
	return level * level * 100
}

// isqrt is floor(sqrt(n)), corrected for float rounding.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
