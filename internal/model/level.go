package model

// Level is the achievement tier derived from a score ratio.
type Level string

const (
	LevelExpert       Level = "Expert"
	LevelAdvanced     Level = "Advanced"
	LevelIntermediate Level = "Intermediate"
	LevelBeginner     Level = "Beginner"
)

// Lower bounds in percent, inclusive, evaluated high to low.
const (
	ExpertThreshold       = 90
	AdvancedThreshold     = 70
	IntermediateThreshold = 50
)

// LevelFor maps score/total to a tier. The comparison is done on integers
// (score*100 against threshold*total) so 9/10 is exactly Expert. total must be
// positive; callers validate that before asking for a level.
func LevelFor(score, total int) Level {
	if total <= 0 {
		return LevelBeginner
	}
	scaled := int64(score) * 100
	t := int64(total)
	switch {
	case scaled >= ExpertThreshold*t:
		return LevelExpert
	case scaled >= AdvancedThreshold*t:
		return LevelAdvanced
	case scaled >= IntermediateThreshold*t:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

func (l Level) String() string {
	return string(l)
}
