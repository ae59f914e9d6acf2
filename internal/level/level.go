package level

// thresholds maps each level to the minimum lifetime record count
// required to hold it. Counts below the first entry are level 0.
var thresholds = []struct {
	Level    int
	MinCount int64
}{
	{1, 10},
	{2, 30},
	{3, 60},
	{4, 100},
	{5, 150},
	{6, 210},
	{7, 280},
	{8, 360},
	{9, 450},
	{10, 550},
}

// ForCount returns the highest level whose threshold the count meets.
func ForCount(recordCount int64) int {
	level := 0
	for _, t := range thresholds {
		if recordCount >= t.MinCount {
			level = t.Level
		} else {
			break
		}
	}
	return level
}

type Transition int

const (
	TransitionNone Transition = iota
	TransitionUp
	TransitionDown
)

func DetectTransition(oldLevel, newLevel int) Transition {
	switch {
	case newLevel > oldLevel:
		return TransitionUp
	case newLevel < oldLevel:
		return TransitionDown
	default:
		return TransitionNone
	}
}
