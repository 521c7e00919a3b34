package model

import (
	"fmt"
	"strings"
)

// Difficulty is an ordered skill level.
type Difficulty int

// Difficulty levels, lowest first.
const (
	Beginner Difficulty = iota + 1
	Intermediate
	Advanced
	Expert
)

var difficultyNames = map[Difficulty]string{
	Beginner:     "Beginner",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
	Expert:       "Expert",
}

func (d Difficulty) String() string {
	if n, ok := difficultyNames[d]; ok {
		return n
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

func parseLevel(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, true
	case "intermediate":
		return Intermediate, true
	case "advanced":
		return Advanced, true
	case "expert", "professional":
		return Expert, true
	}
	return 0, false
}

// ParseDifficulty parses a single level ("Advanced") or a span
// ("Beginner to Intermediate") into its lowest and highest level.
func ParseDifficulty(s string) (lo, hi Difficulty, err error) {
	parts := strings.Split(s, " to ")
	switch len(parts) {
	case 1:
		d, ok := parseLevel(parts[0])
		if !ok {
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
		}
		return d, d, nil
	case 2:
		a, okA := parseLevel(parts[0])
		b, okB := parseLevel(parts[1])
		if !okA || !okB || a > b {
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
		}
		return a, b, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}
