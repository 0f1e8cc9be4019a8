package game

import (
	"errors"
	"sort"
)

// NoteTrack is the playable content of one difficulty of one
// instrument. Notes are kept sorted by (position, colour), with notes
// sharing a (position, colour) collapsed to the last of them.
type NoteTrack struct {
	notes      []Note
	spPhrases  []StarPower
	events     []ChartEvent
	resolution int
	instrument Instrument
}

func NewNoteTrack(notes []Note, spPhrases []StarPower, events []ChartEvent,
	resolution int, instrument Instrument) (*NoteTrack, error) {
	if resolution <= 0 {
		return nil, errors.New("tracks with resolution <= 0 are invalid")
	}

	sorted := make([]Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].Colour < sorted[j].Colour
	})

	// The last of a duplicate (position, colour) group survives, so a
	// re-emitted note with a corrected length or flag wins.
	deduped := sorted[:0]
	for _, n := range sorted {
		if len(deduped) > 0 && n.Position == deduped[len(deduped)-1].Position &&
			n.Colour == deduped[len(deduped)-1].Colour {
			deduped[len(deduped)-1] = n
			continue
		}
		deduped = append(deduped, n)
	}

	phrases := make([]StarPower, len(spPhrases))
	copy(phrases, spPhrases)
	sort.SliceStable(phrases, func(i, j int) bool {
		return phrases[i].Position < phrases[j].Position
	})

	return &NoteTrack{
		notes:      deduped,
		spPhrases:  phrases,
		events:     events,
		resolution: resolution,
		instrument: instrument,
	}, nil
}

func (t *NoteTrack) Notes() []Note          { return t.notes }
func (t *NoteTrack) SPPhrases() []StarPower { return t.spPhrases }
func (t *NoteTrack) Events() []ChartEvent   { return t.events }
func (t *NoteTrack) Resolution() int        { return t.resolution }
func (t *NoteTrack) Instrument() Instrument { return t.instrument }
