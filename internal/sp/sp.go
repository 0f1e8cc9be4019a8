package sp

import (
	"math"
	"sort"

	"git.lost.host/meutraa/sppath/internal/game"
)

const (
	// SP gained per beat of whammy.
	GainRate = 1.0 / 30.0
	// Measures one full bar of SP lasts.
	MeasuresPerBar = 8.0
	// Net SP change per beat while whammying in 4/4.
	defaultNetGainRate = 1.0 / 480.0

	PhraseAmount    = 0.25
	MinimumSPAmount = 0.5
)

// Bar is the envelope of possible SP at an instant, min <= max, both
// in [0, 1].
type Bar struct {
	Min float64
	Max float64
}

func (b *Bar) AddPhrase() {
	b.Min = math.Min(b.Min+PhraseAmount, 1.0)
	b.Max = math.Max(math.Min(b.Max+PhraseAmount, 1.0), b.Min)
}

func (b Bar) FullEnoughToActivate() bool {
	return b.Max >= MinimumSPAmount
}

// BeatRate is the net SP change per beat while whammying, constant
// between time signature changes.
type BeatRate struct {
	Position      game.Beat
	NetSPGainRate float64
}

// WhammyRange is a span of positions over which a sustain inside a
// phrase can be whammied. Ranges are disjoint and sorted.
type WhammyRange struct {
	Start game.Position
	End   game.Position
}

// Data answers SP drain and gain queries for the optimiser.
type Data struct {
	converter    *game.Converter
	beatRates    []BeatRate
	whammyRanges []WhammyRange
}

func formBeatRates(resolution int, sync *game.SyncTrack) []BeatRate {
	rates := make([]BeatRate, 0, len(sync.TimeSigs()))
	for _, ts := range sync.TimeSigs() {
		beat := game.Beat(float64(ts.Position) / float64(resolution))
		measureRate := float64(ts.Numerator) * 4.0 / float64(ts.Denominator)
		rates = append(rates, BeatRate{
			Position:      beat,
			NetSPGainRate: GainRate - 1.0/(MeasuresPerBar*measureRate),
		})
	}
	return rates
}

// NewData builds the whammy ranges and beat rates for a track.
// earlyWhammy in [0, 1] moves a sustain's whammyable start earlier by
// up to the timing window; lazyWhammy delays it.
func NewData(track *game.NoteTrack, sync *game.SyncTrack, conv *game.Converter,
	earlyWhammy float64, lazyWhammy game.Second) *Data {
	d := &Data{
		converter: conv,
		beatRates: formBeatRates(track.Resolution(), sync),
	}

	res := float64(track.Resolution())
	earlyWindow := game.Second(0.07 * earlyWhammy)
	phrases := track.SPPhrases()

	type beatRange struct{ start, end game.Beat }
	ranges := []beatRange{}
	for _, note := range track.Notes() {
		if note.Length == 0 {
			continue
		}
		inPhrase := false
		for _, p := range phrases {
			if p.Contains(note.Position) {
				inPhrase = true
				break
			}
		}
		if !inPhrase {
			continue
		}
		start := game.Beat(float64(note.Position) / res)
		adjusted := conv.BeatsToSeconds(start) - earlyWindow + lazyWhammy
		start = conv.SecondsToBeats(adjusted)
		end := game.Beat(float64(note.Position+note.Length) / res)
		if start < end {
			ranges = append(ranges, beatRange{start, end})
		}
	}

	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].start != ranges[j].start {
			return ranges[i].start < ranges[j].start
		}
		return ranges[i].end < ranges[j].end
	})

	if len(ranges) > 0 {
		merged := []beatRange{ranges[0]}
		for _, r := range ranges[1:] {
			last := &merged[len(merged)-1]
			if r.start <= last.end {
				if r.end > last.end {
					last.end = r.end
				}
			} else {
				merged = append(merged, r)
			}
		}
		for _, r := range merged {
			d.whammyRanges = append(d.whammyRanges, WhammyRange{
				Start: conv.PositionAt(r.start),
				End:   conv.PositionAt(r.end),
			})
		}
	}

	return d
}

func (d *Data) WhammyRanges() []WhammyRange { return d.whammyRanges }
func (d *Data) BeatRates() []BeatRate       { return d.beatRates }

// first whammy range whose end is past beat
func (d *Data) rangeAfter(beat game.Beat) int {
	return sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat > beat
	})
}

func (d *Data) IsInWhammyRanges(beat game.Beat) bool {
	i := sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat >= beat
	})
	if i == len(d.whammyRanges) {
		return false
	}
	return d.whammyRanges[i].Start.Beat <= beat
}

// AvailableWhammy returns the SP obtainable by whammying over
// [start, end).
func (d *Data) AvailableWhammy(start, end game.Beat) float64 {
	total := 0.0
	for i := d.rangeAfter(start); i < len(d.whammyRanges); i++ {
		r := d.whammyRanges[i]
		if r.Start.Beat >= end {
			break
		}
		from := math.Max(float64(r.Start.Beat), float64(start))
		to := math.Min(float64(r.End.Beat), float64(end))
		total += (to - from) * GainRate
	}
	return total
}

// propagateOverWhammyRange advances SP from start to end assuming the
// whole interval is whammied, applying the net rate of each time
// signature segment left to right. Returns -1 if SP runs out.
func (d *Data) propagateOverWhammyRange(start, end game.Beat, sp float64) float64 {
	i := sort.Search(len(d.beatRates), func(i int) bool {
		return d.beatRates[i].Position >= start
	})
	if i > 0 {
		i--
	} else {
		subEnd := game.Beat(math.Min(float64(end), float64(d.beatRates[0].Position)))
		sp += float64(subEnd-start) * defaultNetGainRate
		sp = math.Min(sp, 1.0)
		start = subEnd
	}
	for start < end {
		subEnd := end
		if i+1 < len(d.beatRates) && d.beatRates[i+1].Position < end {
			subEnd = d.beatRates[i+1].Position
		}
		sp += float64(subEnd-start) * d.beatRates[i].NetSPGainRate
		if sp < 0.0 {
			return -1.0
		}
		sp = math.Min(sp, 1.0)
		start = subEnd
		i++
	}
	return sp
}

// whammyPropagationEndpoint returns the beat SP runs out at if all of
// [start, end) is whammied, or end if it survives.
func (d *Data) whammyPropagationEndpoint(start, end game.Beat, sp float64) game.Beat {
	i := sort.Search(len(d.beatRates), func(i int) bool {
		return d.beatRates[i].Position >= start
	})
	if i > 0 {
		i--
	} else {
		subEnd := game.Beat(math.Min(float64(end), float64(d.beatRates[0].Position)))
		sp += float64(subEnd-start) * defaultNetGainRate
		sp = math.Min(sp, 1.0)
		start = subEnd
	}
	for start < end {
		subEnd := end
		if i+1 < len(d.beatRates) && d.beatRates[i+1].Position < end {
			subEnd = d.beatRates[i+1].Position
		}
		gain := float64(subEnd-start) * d.beatRates[i].NetSPGainRate
		if sp+gain < 0.0 {
			return start + game.Beat(-sp/d.beatRates[i].NetSPGainRate)
		}
		sp = math.Min(sp+gain, 1.0)
		start = subEnd
		i++
	}
	return end
}

// PropagateSPOverWhammyMax advances SP from start to end crediting
// whammy wherever a range covers the interval and draining elsewhere.
// A negative result means SP ran out before end.
func (d *Data) PropagateSPOverWhammyMax(start, end game.Position, sp float64) float64 {
	for i := d.rangeAfter(start.Beat); i < len(d.whammyRanges); i++ {
		r := d.whammyRanges[i]
		if r.Start.Beat >= end.Beat {
			break
		}
		if r.Start.Beat > start.Beat {
			sp -= float64(r.Start.Measure-start.Measure) / MeasuresPerBar
			if sp < 0.0 {
				return sp
			}
			start = r.Start
		}
		rangeEnd := game.Beat(math.Min(float64(end.Beat), float64(r.End.Beat)))
		sp = d.propagateOverWhammyRange(start.Beat, rangeEnd, sp)
		if sp < 0.0 || r.End.Beat >= end.Beat {
			return sp
		}
		start = r.End
	}
	sp -= float64(end.Measure-start.Measure) / MeasuresPerBar
	return sp
}

// PropagateSPOverWhammyMin advances SP assuming the player stops
// whammying as early as allowed, clamping the result at zero.
func (d *Data) PropagateSPOverWhammyMin(start, end game.Position, sp float64,
	requiredWhammyEnd game.Position) float64 {
	if requiredWhammyEnd.Beat > start.Beat {
		whammyEnd := end
		if requiredWhammyEnd.Beat < end.Beat {
			whammyEnd = requiredWhammyEnd
		}
		sp = d.PropagateSPOverWhammyMax(start, whammyEnd, sp)
		start = requiredWhammyEnd
	}
	if start.Beat < end.Beat {
		sp -= float64(end.Measure-start.Measure) / MeasuresPerBar
	}
	return math.Max(sp, 0.0)
}

// ActivationEndPoint returns the earliest position SP hits zero when
// activated at start, or end if it survives to end.
func (d *Data) ActivationEndPoint(start, end game.Position, sp float64) game.Position {
	for i := d.rangeAfter(start.Beat); i < len(d.whammyRanges); i++ {
		r := d.whammyRanges[i]
		if r.Start.Beat >= end.Beat {
			break
		}
		if r.Start.Beat > start.Beat {
			deduction := float64(r.Start.Measure-start.Measure) / MeasuresPerBar
			if sp < deduction {
				endMeasure := start.Measure + game.Measure(sp*MeasuresPerBar)
				return game.Position{Beat: d.converter.MeasuresToBeats(endMeasure), Measure: endMeasure}
			}
			sp -= deduction
			start = r.Start
		}
		rangeEnd := game.Beat(math.Min(float64(end.Beat), float64(r.End.Beat)))
		newSP := d.propagateOverWhammyRange(start.Beat, rangeEnd, sp)
		if newSP < 0.0 {
			endBeat := d.whammyPropagationEndpoint(start.Beat, rangeEnd, sp)
			return d.converter.PositionAt(endBeat)
		}
		sp = newSP
		if r.End.Beat >= end.Beat {
			return end
		}
		start = r.End
	}
	deduction := float64(end.Measure-start.Measure) / MeasuresPerBar
	if sp < deduction {
		endMeasure := start.Measure + game.Measure(sp*MeasuresPerBar)
		return game.Position{Beat: d.converter.MeasuresToBeats(endMeasure), Measure: endMeasure}
	}
	return end
}

// MinEndPoint is ActivationEndPoint under minimum whammy: ranges are
// only credited up to requiredWhammyEnd, after which SP drains bare.
func (d *Data) MinEndPoint(start, end game.Position, sp float64,
	requiredWhammyEnd game.Position) game.Position {
	if requiredWhammyEnd.Beat > start.Beat {
		whammyEnd := end
		if requiredWhammyEnd.Beat < end.Beat {
			whammyEnd = requiredWhammyEnd
		}
		reached := d.ActivationEndPoint(start, whammyEnd, sp)
		if reached.Beat < whammyEnd.Beat {
			return reached
		}
		sp = d.PropagateSPOverWhammyMax(start, whammyEnd, sp)
		if whammyEnd.Beat >= end.Beat {
			return end
		}
		start = whammyEnd
	}
	deduction := float64(end.Measure-start.Measure) / MeasuresPerBar
	if sp < deduction {
		endMeasure := start.Measure + game.Measure(sp*MeasuresPerBar)
		return game.Position{Beat: d.converter.MeasuresToBeats(endMeasure), Measure: endMeasure}
	}
	return end
}
