package parser

import "git.lost.host/meutraa/sppath/internal/game"

type Parser interface {
	Parse(file string, instrument game.Instrument) (*Chart, error)
	ParseChart(data string, instrument game.Instrument) (*Chart, error)
}

// Section is a named position from the [Events] block.
type Section struct {
	Position int
	Name     string
}

// Chart is a parsed .chart file: one sync track shared by one note
// track per charted difficulty.
type Chart struct {
	Name       string
	Resolution int
	SyncTrack  *game.SyncTrack
	Sections   []Section
	Tracks     map[game.Difficulty]*game.NoteTrack
}
