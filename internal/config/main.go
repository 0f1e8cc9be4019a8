package config

import (
	"fmt"

	"git.lost.host/meutraa/sppath/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	ChartFile   = kingpin.Arg("chart", "Path to the .chart file").Required().ExistingFile()
	difficulty  = kingpin.Flag("difficulty", "Difficulty to optimise").Default("expert").Short('d').Enum("easy", "medium", "hard", "expert")
	instrument  = kingpin.Flag("instrument", "Instrument to optimise; .chart [*Single] tracks carry guitar and bass").Default("guitar").Short('i').Enum("guitar", "bass")
	Squeeze     = kingpin.Flag("squeeze", "Hit window squeeze, 0 to 1").Default("1.0").Short('s').Float64()
	EarlyWhammy = kingpin.Flag("early-whammy", "Early whammy slack, 0 to 1").Default("1.0").Short('e').Float64()
	LazyWhammy  = kingpin.Flag("lazy-whammy", "Seconds before whammy is assumed to start").Default("0").Short('l').Float64()
	Speed       = kingpin.Flag("speed", "Playback speed percent").Default("100").Int()
	NoStore     = kingpin.Flag("no-store", "Do not record the path in the local database").Bool()
)

func Parse() {
	kingpin.Version("0.1.0")
	kingpin.Parse()
}

// Validate rejects parameter values the optimiser has no meaning for.
func Validate() error {
	switch Instrument() {
	case game.Guitar, game.Bass:
	default:
		// The parser only dispatches [*Single] sections; feeding their
		// five-fret notes to another instrument's point rules would
		// silently misscore them.
		return fmt.Errorf("instrument %v has no track sections in .chart files", Instrument())
	}
	if *Squeeze < 0 || *Squeeze > 1 {
		return fmt.Errorf("squeeze must be in [0, 1], got %v", *Squeeze)
	}
	if *EarlyWhammy < 0 || *EarlyWhammy > 1 {
		return fmt.Errorf("early whammy must be in [0, 1], got %v", *EarlyWhammy)
	}
	if *LazyWhammy < 0 {
		return fmt.Errorf("lazy whammy must be >= 0, got %v", *LazyWhammy)
	}
	if *Speed <= 0 {
		return fmt.Errorf("speed must be positive, got %v", *Speed)
	}
	return nil
}

func Difficulty() game.Difficulty { return game.DifficultyMap[*difficulty] }
func Instrument() game.Instrument { return game.InstrumentMap[*instrument] }
