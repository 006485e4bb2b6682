package workouts

import (
	"path/filepath"
	"strings"
)

const (
	DefaultMinWeeklyGoal = 4
	DefaultMaxWeeklyGoal = 7
)

var DefaultImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp"}

type Rules struct {
	MinWeeklyGoal   int
	MaxWeeklyGoal   int
	ImageExtensions []string
}

func DefaultRules() Rules {
	return Rules{
		MinWeeklyGoal:   DefaultMinWeeklyGoal,
		MaxWeeklyGoal:   DefaultMaxWeeklyGoal,
		ImageExtensions: DefaultImageExtensions,
	}
}

func (r Rules) IsZero() bool {
	return r.MinWeeklyGoal == 0 && r.MaxWeeklyGoal == 0 && len(r.ImageExtensions) == 0
}

func (r Rules) GoalInRange(goal int) bool {
	return goal >= r.MinWeeklyGoal && goal <= r.MaxWeeklyGoal
}

// IsImageFile matches the extension of filename against the allow-list,
// case-insensitively. A name without an extension is never an image.
func (r Rules) IsImageFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if ext == "" || ext == "." {
		return false
	}
	for _, allowed := range r.ImageExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
