package game

import (
	"errors"
	"sort"
)

// Beat is a position in beats, ticks divided by the chart resolution.
type Beat float64

// Measure is a position in measures, beats integrated under the time
// signature in effect.
type Measure float64

// Second is a position in seconds, beats integrated under the tempo in
// effect.
type Second float64

func (b Beat) ToMeasure(beatRate float64) Measure { return Measure(float64(b) / beatRate) }
func (b Beat) ToSecond(beatsPerSecond float64) Second {
	return Second(float64(b) / beatsPerSecond)
}
func (m Measure) ToBeat(beatRate float64) Beat { return Beat(float64(m) * beatRate) }
func (s Second) ToBeat(beatsPerSecond float64) Beat {
	return Beat(float64(s) * beatsPerSecond)
}

// Position carries a beat and its measure together so hot paths do not
// convert repeatedly.
type Position struct {
	Beat    Beat
	Measure Measure
}

const defaultBeatRate = 4.0
const defaultBeatsPerSecond = 2.0

type measureAnchor struct {
	measure Measure
	beat    Beat
}

type secondAnchor struct {
	second Second
	beat   Beat
}

// Converter translates between beats, measures and seconds using
// anchor tables built from the sync track, one anchor per change.
// Between anchors conversion interpolates linearly in beats.
type Converter struct {
	measures           []measureAnchor
	lastBeatRate       float64
	seconds            []secondAnchor
	lastBeatsPerSecond float64
}

func NewConverter(sync *SyncTrack, resolution int) (*Converter, error) {
	if resolution <= 0 {
		return nil, errors.New("conversion requires a positive resolution")
	}

	c := &Converter{}

	lastTick := 0
	beatRate := defaultBeatRate
	measure := 0.0
	for _, ts := range sync.TimeSigs() {
		measure += float64(ts.Position-lastTick) / (float64(resolution) * beatRate)
		beat := Beat(float64(ts.Position) / float64(resolution))
		c.measures = append(c.measures, measureAnchor{Measure(measure), beat})
		beatRate = float64(ts.Numerator) * defaultBeatRate / float64(ts.Denominator)
		lastTick = ts.Position
	}
	c.lastBeatRate = beatRate

	lastTick = 0
	bps := defaultBeatsPerSecond
	second := 0.0
	for _, bpm := range sync.BPMs() {
		second += float64(bpm.Position-lastTick) / (float64(resolution) * bps)
		beat := Beat(float64(bpm.Position) / float64(resolution))
		c.seconds = append(c.seconds, secondAnchor{Second(second), beat})
		bps = float64(bpm.MicroBPM) / 60_000_000.0
		lastTick = bpm.Position
	}
	c.lastBeatsPerSecond = bps

	return c, nil
}

func (c *Converter) BeatsToMeasures(beats Beat) Measure {
	i := sort.Search(len(c.measures), func(i int) bool {
		return c.measures[i].beat >= beats
	})
	if i == len(c.measures) {
		back := c.measures[len(c.measures)-1]
		return back.measure + (beats - back.beat).ToMeasure(c.lastBeatRate)
	}
	if i == 0 {
		return c.measures[0].measure - (c.measures[0].beat - beats).ToMeasure(defaultBeatRate)
	}
	prev, next := c.measures[i-1], c.measures[i]
	return prev.measure + Measure(float64(next.measure-prev.measure)*
		float64(beats-prev.beat)/float64(next.beat-prev.beat))
}

func (c *Converter) MeasuresToBeats(measures Measure) Beat {
	i := sort.Search(len(c.measures), func(i int) bool {
		return c.measures[i].measure >= measures
	})
	if i == len(c.measures) {
		back := c.measures[len(c.measures)-1]
		return back.beat + (measures - back.measure).ToBeat(c.lastBeatRate)
	}
	if i == 0 {
		return c.measures[0].beat - (c.measures[0].measure - measures).ToBeat(defaultBeatRate)
	}
	prev, next := c.measures[i-1], c.measures[i]
	return prev.beat + Beat(float64(next.beat-prev.beat)*
		float64(measures-prev.measure)/float64(next.measure-prev.measure))
}

func (c *Converter) BeatsToSeconds(beats Beat) Second {
	i := sort.Search(len(c.seconds), func(i int) bool {
		return c.seconds[i].beat >= beats
	})
	if i == len(c.seconds) {
		back := c.seconds[len(c.seconds)-1]
		return back.second + (beats - back.beat).ToSecond(c.lastBeatsPerSecond)
	}
	if i == 0 {
		return c.seconds[0].second - (c.seconds[0].beat - beats).ToSecond(defaultBeatsPerSecond)
	}
	prev, next := c.seconds[i-1], c.seconds[i]
	return prev.second + Second(float64(next.second-prev.second)*
		float64(beats-prev.beat)/float64(next.beat-prev.beat))
}

func (c *Converter) SecondsToBeats(seconds Second) Beat {
	i := sort.Search(len(c.seconds), func(i int) bool {
		return c.seconds[i].second >= seconds
	})
	if i == len(c.seconds) {
		back := c.seconds[len(c.seconds)-1]
		return back.beat + (seconds - back.second).ToBeat(c.lastBeatsPerSecond)
	}
	if i == 0 {
		return c.seconds[0].beat - (c.seconds[0].second - seconds).ToBeat(defaultBeatsPerSecond)
	}
	prev, next := c.seconds[i-1], c.seconds[i]
	return prev.beat + Beat(float64(next.beat-prev.beat)*
		float64(seconds-prev.second)/float64(next.second-prev.second))
}

// PositionAt pairs a beat with its measure.
func (c *Converter) PositionAt(beat Beat) Position {
	return Position{Beat: beat, Measure: c.BeatsToMeasures(beat)}
}
