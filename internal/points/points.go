package points

import (
	"sort"

	"git.lost.host/meutraa/sppath/internal/game"
)

const (
	baseNoteValue  = 50
	holdPointValue = 1
	holdTickGap    = 12
	maxMultiplier  = 4
	notesPerMult   = 10
	soloNoteBonus  = 100

	// Half width of a hit window in seconds at full squeeze.
	hitWindowSlack = 0.07
)

// Point is a single scoring opportunity, either a note head (chords
// collapse to one point) or a tick of a sustain.
type Point struct {
	Position       game.Position
	HitWindowStart game.Position
	HitWindowEnd   game.Position
	Value          int
	BaseValue      int
	IsHoldPoint    bool
	IsSPGranting   bool
}

// SoloBoost is the bonus granted at the end of a solo section.
type SoloBoost struct {
	Position game.Position
	Value    int
}

// Set is the ordered sequence of points of a track, with lookup
// indices the optimiser leans on.
type Set struct {
	points          []Point
	nextNonHold     []int
	nextSPGranting  []int
	cumulativeScore []int // prefix sums, len(points)+1
	soloBoosts      []SoloBoost
}

type rawPoint struct {
	tick      int
	baseValue int
	isHold    bool
}

// NewSet builds the point sequence for a track. squeeze in [0, 1]
// scales the hit windows; drums emit no hold points.
func NewSet(track *game.NoteTrack, conv *game.Converter, squeeze float64) *Set {
	res := track.Resolution()
	notes := track.Notes()

	raw := []rawPoint{}
	for i := 0; i < len(notes); {
		j := i
		for j < len(notes) && notes[j].Position == notes[i].Position {
			j++
		}
		chordSize := j - i
		raw = append(raw, rawPoint{
			tick:      notes[i].Position,
			baseValue: baseNoteValue * chordSize,
		})
		if track.Instrument() != game.Drums {
			for _, n := range notes[i:j] {
				if n.Length == 0 {
					continue
				}
				for t := n.Position + holdTickGap; t <= n.Position+n.Length; t += holdTickGap {
					raw = append(raw, rawPoint{tick: t, baseValue: holdPointValue, isHold: true})
				}
			}
		}
		i = j
	}

	sort.SliceStable(raw, func(i, j int) bool { return raw[i].tick < raw[j].tick })

	// Hold ticks from overlapping sustains land on the same tick and
	// score together.
	merged := raw[:0]
	for _, r := range raw {
		if len(merged) > 0 && r.isHold && merged[len(merged)-1].isHold &&
			merged[len(merged)-1].tick == r.tick {
			merged[len(merged)-1].baseValue += r.baseValue
			continue
		}
		merged = append(merged, r)
	}

	s := &Set{}
	nonHoldCount := 0
	ticks := make([]int, len(merged))
	for i, r := range merged {
		mult := 1 + nonHoldCount/notesPerMult
		if mult > maxMultiplier {
			mult = maxMultiplier
		}
		if !r.isHold {
			nonHoldCount++
		}

		beat := game.Beat(float64(r.tick) / float64(res))
		pos := conv.PositionAt(beat)
		start, end := pos, pos
		if !r.isHold {
			start = conv.PositionAt(conv.SecondsToBeats(conv.BeatsToSeconds(beat) - game.Second(hitWindowSlack*squeeze)))
			end = conv.PositionAt(conv.SecondsToBeats(conv.BeatsToSeconds(beat) + game.Second(hitWindowSlack*squeeze)))
		}

		s.points = append(s.points, Point{
			Position:       pos,
			HitWindowStart: start,
			HitWindowEnd:   end,
			Value:          r.baseValue * mult,
			BaseValue:      r.baseValue,
			IsHoldPoint:    r.isHold,
		})
		ticks[i] = r.tick
	}

	markSPGranting(s.points, ticks, track.SPPhrases())
	s.soloBoosts = soloBoosts(track, conv)

	s.cumulativeScore = make([]int, len(s.points)+1)
	for i, p := range s.points {
		s.cumulativeScore[i+1] = s.cumulativeScore[i] + p.Value
	}

	s.nextNonHold = nextIndexWhere(s.points, func(p Point) bool { return !p.IsHoldPoint })
	s.nextSPGranting = nextIndexWhere(s.points, func(p Point) bool { return p.IsSPGranting })

	return s
}

// Only the last note inside a phrase grants the phrase's SP. Hold
// points never grant.
func markSPGranting(pts []Point, ticks []int, phrases []game.StarPower) {
	last := make([]int, len(phrases))
	for i := range last {
		last[i] = -1
	}
	for i, p := range pts {
		if p.IsHoldPoint {
			continue
		}
		j := sort.Search(len(phrases), func(j int) bool {
			return phrases[j].Position+phrases[j].Length > ticks[i]
		})
		if j < len(phrases) && phrases[j].Contains(ticks[i]) {
			last[j] = i
		}
	}
	for _, i := range last {
		if i >= 0 {
			pts[i].IsSPGranting = true
		}
	}
}

func soloBoosts(track *game.NoteTrack, conv *game.Converter) []SoloBoost {
	res := track.Resolution()
	boosts := []SoloBoost{}
	soloStart := -1
	for _, ev := range track.Events() {
		switch ev.Name {
		case "solo":
			soloStart = ev.Position
		case "soloend":
			if soloStart < 0 {
				continue
			}
			count := 0
			for _, n := range track.Notes() {
				if n.Position >= soloStart && n.Position <= ev.Position {
					count++
				}
			}
			if count > 0 {
				beat := game.Beat(float64(ev.Position) / float64(res))
				boosts = append(boosts, SoloBoost{
					Position: conv.PositionAt(beat),
					Value:    count * soloNoteBonus,
				})
			}
			soloStart = -1
		}
	}
	return boosts
}

func nextIndexWhere(pts []Point, pred func(Point) bool) []int {
	next := make([]int, len(pts)+1)
	next[len(pts)] = len(pts)
	for i := len(pts) - 1; i >= 0; i-- {
		if pred(pts[i]) {
			next[i] = i
		} else {
			next[i] = next[i+1]
		}
	}
	return next
}

func (s *Set) Len() int        { return len(s.points) }
func (s *Set) At(i int) Point  { return s.points[i] }
func (s *Set) Points() []Point { return s.points }

// NextNonHoldPoint returns the first index >= i that is not a hold
// point, or Len() if there is none.
func (s *Set) NextNonHoldPoint(i int) int { return s.nextNonHold[i] }

// NextSPGrantingNote returns the first index >= i that grants SP, or
// Len() if there is none.
func (s *Set) NextSPGrantingNote(i int) int { return s.nextSPGranting[i] }

// RangeScore returns the combined value of points in [start, end).
func (s *Set) RangeScore(start, end int) int {
	return s.cumulativeScore[end] - s.cumulativeScore[start]
}

func (s *Set) SoloBoosts() []SoloBoost { return s.soloBoosts }

// TotalScore is the base score of the whole track, solo bonuses
// included.
func (s *Set) TotalScore() int {
	total := s.cumulativeScore[len(s.points)]
	for _, b := range s.soloBoosts {
		total += b.Value
	}
	return total
}
