package score

import "git.lost.host/meutraa/sppath/internal/game"

type Scorer interface {
	Init() error
	Deinit()

	// Save the computed path for this chart
	Save(result *Result)

	// Load previously computed paths for the chart
	Load(chartData string, difficulty game.Difficulty) []Result
}

// Result is one optimiser run worth keeping: which chart it was for
// and what came out.
type Result struct {
	Sum        string
	Difficulty game.Difficulty
	Squeeze    float64
	ScoreBoost int
	Summary    string
}
