package sp

import (
	"math"
	"testing"

	"git.lost.host/meutraa/sppath/internal/game"
)

func approx(p, q float64) bool {
	return math.Abs(p-q) < 1e-6
}

func makeData(t *testing.T, notes []game.Note, phrases []game.StarPower,
	timeSigs []game.TimeSignature, earlyWhammy float64, lazyWhammy game.Second) (*Data, *game.Converter) {
	track, err := game.NewNoteTrack(notes, phrases, nil, 192, game.Guitar)
	if nil != err {
		t.Fatal("unable to build track", err)
	}
	sync, err := game.NewSyncTrack(timeSigs, nil)
	if nil != err {
		t.Fatal(err)
	}
	conv, err := game.NewConverter(sync, 192)
	if nil != err {
		t.Fatal(err)
	}
	return NewData(track, sync, conv, earlyWhammy, lazyWhammy), conv
}

func TestBarAddPhrase(t *testing.T) {
	bar := Bar{Min: 0.9, Max: 0.95}
	bar.AddPhrase()
	if !approx(bar.Min, 1.0) || !approx(bar.Max, 1.0) {
		t.Log("bar", bar)
		t.Fail()
	}
	bar = Bar{}
	bar.AddPhrase()
	if !approx(bar.Min, 0.25) || !approx(bar.Max, 0.25) {
		t.Log("bar", bar)
		t.Fail()
	}
	if bar.FullEnoughToActivate() {
		t.Log("quarter bar must not activate")
		t.Fail()
	}
	bar.AddPhrase()
	if !bar.FullEnoughToActivate() {
		t.Log("half bar must activate")
		t.Fail()
	}
}

func TestBeatRates(t *testing.T) {
	data, _ := makeData(t, nil, nil, []game.TimeSignature{
		{Position: 768, Numerator: 3, Denominator: 4},
	}, 1.0, 0)
	rates := data.BeatRates()
	if len(rates) != 2 {
		t.Fatal("rates", rates)
	}
	// 4/4: 1/30 - 1/32; 3/4: 1/30 - 1/24
	if !approx(rates[0].NetSPGainRate, 1.0/480.0) {
		t.Log("4/4 rate", rates[0].NetSPGainRate)
		t.Fail()
	}
	if rates[1].Position != 4 || !approx(rates[1].NetSPGainRate, -1.0/120.0) {
		t.Log("3/4 rate", rates[1])
		t.Fail()
	}
}

func TestWhammyRanges(t *testing.T) {
	notes := []game.Note{
		{Position: 0, Length: 960},
		{Position: 768, Length: 384}, // overlaps, merges
		{Position: 3840, Length: 192},
		{Position: 6144, Length: 192}, // outside any phrase
	}
	phrases := []game.StarPower{{Position: 0, Length: 4100}}
	data, _ := makeData(t, notes, phrases, nil, 1.0, 0)

	ranges := data.WhammyRanges()
	if len(ranges) != 2 {
		t.Fatal("ranges", ranges)
	}
	// Early whammy moves starts 0.07 s (0.14 beats) early
	if !approx(float64(ranges[0].Start.Beat), -0.14) || !approx(float64(ranges[0].End.Beat), 6) {
		t.Log("first", ranges[0])
		t.Fail()
	}
	if !approx(float64(ranges[1].Start.Beat), 19.86) || !approx(float64(ranges[1].End.Beat), 21) {
		t.Log("second", ranges[1])
		t.Fail()
	}

	if !data.IsInWhammyRanges(3) || data.IsInWhammyRanges(10) {
		t.Log("membership wrong")
		t.Fail()
	}
}

func TestLazyWhammyShrinksRanges(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 96}}
	phrases := []game.StarPower{{Position: 0, Length: 100}}

	data, _ := makeData(t, notes, phrases, nil, 0.0, 1.0)
	// A sustain of a quarter second skipped entirely by a second of lazy
	// whammy leaves no range.
	if len(data.WhammyRanges()) != 0 {
		t.Log("ranges", data.WhammyRanges())
		t.Fail()
	}
}

func TestAvailableWhammy(t *testing.T) {
	notes := []game.Note{{Position: 768, Length: 192}}
	phrases := []game.StarPower{{Position: 768, Length: 400}}
	data, _ := makeData(t, notes, phrases, nil, 1.0, 0)

	// Range is [3.86, 5.0]
	tests := map[[2]game.Beat]float64{
		{4.5, 6.0}: 0.5 / 30.0,
		{0.0, 4.0}: 0.14 / 30.0,
		{5.0, 9.0}: 0.0,
		{0.0, 9.0}: 1.14 / 30.0,
	}
	for r, expected := range tests {
		if out := data.AvailableWhammy(r[0], r[1]); !approx(out, expected) {
			t.Log("range", r, "out", out, "expected", expected)
			t.Fail()
		}
	}
}

func TestPropagateMax(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 768}}
	phrases := []game.StarPower{{Position: 0, Length: 800}}
	data, conv := makeData(t, notes, phrases, nil, 0.0, 0)

	// Whammy range is [0, 4); net gain 1/480 per beat in 4/4.
	start := game.Position{Beat: 0, Measure: 0}
	end := conv.PositionAt(8)
	out := data.PropagateSPOverWhammyMax(start, end, 0.5)
	expected := 0.5 + 4.0/480.0 - 1.0/8.0
	if !approx(out, expected) {
		t.Log("out", out, "expected", expected)
		t.Fail()
	}

	// Saturation at 1.0 inside the range
	out = data.PropagateSPOverWhammyMax(start, conv.PositionAt(4), 0.999)
	if !approx(out, 1.0) {
		t.Log("out", out)
		t.Fail()
	}

	// Exhaustion is reported as a negative value
	out = data.PropagateSPOverWhammyMax(conv.PositionAt(4), conv.PositionAt(100), 0.5)
	if out >= 0.0 {
		t.Log("expected exhaustion, got", out)
		t.Fail()
	}
}

func TestPropagateMinNeverAboveMax(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 768}, {Position: 1536, Length: 384}}
	phrases := []game.StarPower{{Position: 0, Length: 2000}}
	data, conv := makeData(t, notes, phrases, nil, 0.0, 0)

	for _, spAmount := range []float64{0.25, 0.5, 1.0} {
		for beat := 1.0; beat < 14.0; beat += 1.7 {
			start := game.Position{Beat: 0, Measure: 0}
			end := conv.PositionAt(game.Beat(beat))
			max := data.PropagateSPOverWhammyMax(start, end, spAmount)
			min := data.PropagateSPOverWhammyMin(start, end, spAmount, end)
			if max < 0.0 {
				// Exhausted; the minimum is clamped at zero by contract.
				continue
			}
			if max < min-1e-9 {
				t.Log("sp", spAmount, "beat", beat, "max", max, "min", min)
				t.Fail()
			}
			if min < 0.0 {
				t.Log("min must be clamped at zero, got", min)
				t.Fail()
			}
		}
	}
}

func TestPropagateMinStopsWhammyEarly(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 768}}
	phrases := []game.StarPower{{Position: 0, Length: 800}}
	data, conv := makeData(t, notes, phrases, nil, 0.0, 0)

	start := game.Position{Beat: 0, Measure: 0}
	end := conv.PositionAt(8)
	out := data.PropagateSPOverWhammyMin(start, end, 0.5, conv.PositionAt(2))
	expected := 0.5 + 2.0/480.0 - 1.5/8.0
	if !approx(out, expected) {
		t.Log("out", out, "expected", expected)
		t.Fail()
	}

	// No required whammy at all is a bare drain
	out = data.PropagateSPOverWhammyMin(start, end, 0.5, game.Position{})
	if !approx(out, 0.5-2.0/8.0) {
		t.Log("out", out)
		t.Fail()
	}
}

func TestActivationEndPoint(t *testing.T) {
	// No whammy anywhere: half a bar lasts 4 measures
	data, conv := makeData(t, nil, nil, nil, 1.0, 0)
	start := game.Position{Beat: 0, Measure: 0}
	end := conv.PositionAt(64)
	out := data.ActivationEndPoint(start, end, 0.5)
	if !approx(float64(out.Beat), 16) || !approx(float64(out.Measure), 4) {
		t.Log("out", out)
		t.Fail()
	}

	// Reaching end intact returns end
	out = data.ActivationEndPoint(start, conv.PositionAt(8), 0.5)
	if !approx(float64(out.Beat), 8) {
		t.Log("out", out)
		t.Fail()
	}
}

func TestActivationEndPointSolvesInsideWhammy(t *testing.T) {
	// 3/4 time makes the net rate negative, so SP can die mid-range.
	notes := []game.Note{{Position: 0, Length: 7680}}
	phrases := []game.StarPower{{Position: 0, Length: 7700}}
	data, conv := makeData(t, notes, phrases,
		[]game.TimeSignature{{Position: 0, Numerator: 3, Denominator: 4}}, 0.0, 0)

	start := game.Position{Beat: 0, Measure: 0}
	end := conv.PositionAt(40)
	out := data.ActivationEndPoint(start, end, 0.1)
	// 0.1 SP at a net -1/120 per beat dies at beat 12
	if !approx(float64(out.Beat), 12) {
		t.Log("out", out)
		t.Fail()
	}
}
