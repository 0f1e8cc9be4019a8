package game

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

var DifficultyMap = map[string]Difficulty{
	"easy":   Easy,
	"medium": Medium,
	"hard":   Hard,
	"expert": Expert,
}

type Instrument int

const (
	Guitar Instrument = iota
	Bass
	GHLGuitar
	Drums
)

var InstrumentMap = map[string]Instrument{
	"guitar": Guitar,
	"bass":   Bass,
	"ghl":    GHLGuitar,
	"drums":  Drums,
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	}
	return "unknown"
}

func (i Instrument) String() string {
	switch i {
	case Guitar:
		return "guitar"
	case Bass:
		return "bass"
	case GHLGuitar:
		return "ghl"
	case Drums:
		return "drums"
	}
	return "unknown"
}
