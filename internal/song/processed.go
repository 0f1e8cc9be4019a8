package song

import (
	"math"

	"git.lost.host/meutraa/sppath/internal/game"
	"git.lost.host/meutraa/sppath/internal/points"
	"git.lost.host/meutraa/sppath/internal/sp"
)

// ActValidity says whether an activation candidate works, and if not
// whether the problem is too little or too much Star Power.
type ActValidity int

const (
	Success ActValidity = iota
	InsufficientSP
	SurplusSP
)

func (v ActValidity) String() string {
	switch v {
	case Success:
		return "success"
	case InsufficientSP:
		return "insufficient_sp"
	case SurplusSP:
		return "surplus_sp"
	}
	return "unknown"
}

// ActResult is the outcome of validating a candidate. EndingPosition
// is the latest position the activation may end, meaningful on
// success.
type ActResult struct {
	EndingPosition game.Position
	Validity       ActValidity
}

// ActivationCandidate is a proposed activation from the point ActStart
// through the point ActEnd. EarliestActivationPoint is the earliest
// position the player could have activated, usually where the
// previous activation ended.
type ActivationCandidate struct {
	ActStart                int
	ActEnd                  int
	EarliestActivationPoint game.Position
	SPBar                   sp.Bar
}

// ProcessedSong owns the time converter, point set and SP data of one
// track, processed under one set of player settings.
type ProcessedSong struct {
	converter *game.Converter
	points    *points.Set
	spData    *sp.Data
	squeeze   float64
}

// Process builds a ProcessedSong. squeeze and earlyWhammy are in
// [0, 1]; lazyWhammy delays assumed whammy starts.
func Process(track *game.NoteTrack, sync *game.SyncTrack,
	squeeze, earlyWhammy float64, lazyWhammy game.Second) (*ProcessedSong, error) {
	conv, err := game.NewConverter(sync, track.Resolution())
	if nil != err {
		return nil, err
	}
	return &ProcessedSong{
		converter: conv,
		points:    points.NewSet(track, conv, squeeze),
		spData:    sp.NewData(track, sync, conv, earlyWhammy, lazyWhammy),
		squeeze:   squeeze,
	}, nil
}

func (s *ProcessedSong) Converter() *game.Converter { return s.converter }
func (s *ProcessedSong) Points() *points.Set        { return s.points }
func (s *ProcessedSong) SPData() *sp.Data           { return s.spData }
func (s *ProcessedSong) Squeeze() float64           { return s.squeeze }

// AdjustedHitWindowStart recomputes the early edge of a point's hit
// window at the given squeeze.
func (s *ProcessedSong) AdjustedHitWindowStart(point int, squeeze float64) game.Position {
	p := s.points.At(point)
	if p.IsHoldPoint {
		return p.Position
	}
	sec := s.converter.BeatsToSeconds(p.Position.Beat) - game.Second(0.07*squeeze)
	return s.converter.PositionAt(s.converter.SecondsToBeats(sec))
}

// AdjustedHitWindowEnd recomputes the late edge of a point's hit
// window at the given squeeze.
func (s *ProcessedSong) AdjustedHitWindowEnd(point int, squeeze float64) game.Position {
	p := s.points.At(point)
	if p.IsHoldPoint {
		return p.Position
	}
	sec := s.converter.BeatsToSeconds(p.Position.Beat) + game.Second(0.07*squeeze)
	return s.converter.PositionAt(s.converter.SecondsToBeats(sec))
}

// TotalAvailableSP returns the SP obtainable between two points: a
// phrase grant for every SP-granting point in [firstPoint, actStart),
// plus whammy between start and the activation point. The whammy only
// counts towards the minimum up to requiredWhammyEnd.
func (s *ProcessedSong) TotalAvailableSP(start game.Beat, firstPoint, actStart int,
	requiredWhammyEnd game.Position) sp.Bar {
	bar := sp.Bar{}
	for p := firstPoint; p < actStart; p++ {
		if s.points.At(p).IsSPGranting {
			bar.AddPhrase()
		}
	}

	actBeat := s.points.At(actStart).Position.Beat
	whammy := s.spData.AvailableWhammy(start, actBeat)
	bar.Max = math.Min(bar.Max+whammy, 1.0)
	if requiredWhammyEnd.Beat >= actBeat {
		bar.Min = math.Min(bar.Min+whammy, 1.0)
	} else if requiredWhammyEnd.Beat > start {
		bar.Min = math.Min(bar.Min+s.spData.AvailableWhammy(start, requiredWhammyEnd.Beat), 1.0)
	}
	if bar.Max < bar.Min {
		bar.Max = bar.Min
	}
	return bar
}

var infPosition = game.Position{
	Beat:    game.Beat(math.Inf(1)),
	Measure: game.Measure(math.Inf(1)),
}

// nullPosition doubles as "no forced whammy".
var nullPosition = game.Position{}

// IsCandidateValid validates a candidate under the song's configured
// squeeze with no forced whammy.
func (s *ProcessedSong) IsCandidateValid(cand ActivationCandidate) ActResult {
	return s.CandidateValidity(cand, s.squeeze, nullPosition)
}

// CandidateValidity validates a candidate under an explicit squeeze
// and a lower bound on how long whammy must continue. The optimistic
// walk starts as late as the hit window allows, collects intermediate
// grants as late as possible and whammies throughout; the pessimistic
// walk starts at the earliest activation point, collects grants at
// their earliest and whammies only to requiredWhammyEnd. The candidate
// fails with InsufficientSP when even the optimistic walk cannot reach
// ActEnd, and with SurplusSP when even the pessimistic walk swallows
// the point after ActEnd.
func (s *ProcessedSong) CandidateValidity(cand ActivationCandidate,
	squeeze float64, requiredWhammyEnd game.Position) ActResult {
	if !cand.SPBar.FullEnoughToActivate() {
		return ActResult{Validity: InsufficientSP}
	}

	maxReach := s.maxReach(cand, squeeze)
	if maxReach.Beat < s.AdjustedHitWindowStart(cand.ActEnd, squeeze).Beat {
		return ActResult{Validity: InsufficientSP}
	}

	if cand.ActEnd+1 < s.points.Len() {
		minReach := s.minReach(cand, squeeze, requiredWhammyEnd)
		if minReach.Beat >= s.AdjustedHitWindowEnd(cand.ActEnd+1, squeeze).Beat {
			return ActResult{Validity: SurplusSP}
		}
	}

	return ActResult{EndingPosition: maxReach, Validity: Success}
}

// maxReach walks the activation optimistically and returns the latest
// position it can end.
func (s *ProcessedSong) maxReach(cand ActivationCandidate, squeeze float64) game.Position {
	pos := s.AdjustedHitWindowEnd(cand.ActStart, squeeze)
	if cand.EarliestActivationPoint.Beat > pos.Beat {
		pos = cand.EarliestActivationPoint
	}
	spAmount := cand.SPBar.Max

	for p := s.points.NextSPGrantingNote(cand.ActStart + 1); p <= cand.ActEnd; p = s.points.NextSPGrantingNote(p + 1) {
		early := s.AdjustedHitWindowStart(p, squeeze)
		if early.Beat < pos.Beat {
			early = pos
		}
		late := s.AdjustedHitWindowEnd(p, squeeze)
		if late.Beat < pos.Beat {
			late = pos
		}
		endPoint := s.spData.ActivationEndPoint(pos, late, spAmount)
		if endPoint.Beat < early.Beat {
			// SP dies before the grant can be collected.
			return endPoint
		}
		if endPoint.Beat < late.Beat {
			spAmount = 0.0
		} else {
			spAmount = s.spData.PropagateSPOverWhammyMax(pos, late, spAmount)
		}
		spAmount = math.Min(spAmount+sp.PhraseAmount, 1.0)
		pos = endPoint
	}

	return s.spData.ActivationEndPoint(pos, infPosition, spAmount)
}

// minReach walks the activation pessimistically and returns the
// earliest position the player can make it end.
func (s *ProcessedSong) minReach(cand ActivationCandidate, squeeze float64,
	requiredWhammyEnd game.Position) game.Position {
	pos := cand.EarliestActivationPoint
	spAmount := math.Max(cand.SPBar.Min, sp.MinimumSPAmount)

	for p := s.points.NextSPGrantingNote(cand.ActStart + 1); p <= cand.ActEnd; p = s.points.NextSPGrantingNote(p + 1) {
		early := s.AdjustedHitWindowStart(p, squeeze)
		if early.Beat < pos.Beat {
			early = pos
		}
		endPoint := s.spData.MinEndPoint(pos, early, spAmount, requiredWhammyEnd)
		if endPoint.Beat < early.Beat {
			return endPoint
		}
		spAmount = s.minSPAt(pos, early, spAmount, requiredWhammyEnd)
		spAmount = math.Min(spAmount+sp.PhraseAmount, 1.0)
		pos = early
	}

	return s.spData.MinEndPoint(pos, infPosition, spAmount, requiredWhammyEnd)
}

func (s *ProcessedSong) minSPAt(start, end game.Position, spAmount float64,
	requiredWhammyEnd game.Position) float64 {
	return s.spData.PropagateSPOverWhammyMin(start, end, spAmount, requiredWhammyEnd)
}
