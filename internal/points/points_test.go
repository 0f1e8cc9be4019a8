package points

import (
	"math"
	"testing"

	"git.lost.host/meutraa/sppath/internal/game"
)

func approx(p, q float64) bool {
	return math.Abs(p-q) < 1e-6
}

func makeSet(t *testing.T, notes []game.Note, phrases []game.StarPower,
	events []game.ChartEvent, instrument game.Instrument, squeeze float64) *Set {
	track, err := game.NewNoteTrack(notes, phrases, events, 192, instrument)
	if nil != err {
		t.Fatal("unable to build track", err)
	}
	sync, err := game.NewSyncTrack(nil, nil)
	if nil != err {
		t.Fatal(err)
	}
	conv, err := game.NewConverter(sync, 192)
	if nil != err {
		t.Fatal(err)
	}
	return NewSet(track, conv, squeeze)
}

func TestMultiplierProgression(t *testing.T) {
	notes := make([]game.Note, 35)
	for i := range notes {
		notes[i] = game.Note{Position: i * 192}
	}
	set := makeSet(t, notes, nil, nil, game.Guitar, 1.0)

	expected := map[int]int{0: 50, 9: 50, 10: 100, 19: 100, 20: 150, 29: 150, 30: 200, 34: 200}
	for i, value := range expected {
		if set.At(i).Value != value {
			t.Log("point", i, "value", set.At(i).Value, "expected", value)
			t.Fail()
		}
	}
	if set.RangeScore(0, set.Len()) != 4000 {
		t.Log("total", set.RangeScore(0, set.Len()))
		t.Fail()
	}
}

func TestChordsCollapse(t *testing.T) {
	notes := []game.Note{
		{Position: 0, Colour: game.Green},
		{Position: 0, Colour: game.Red},
		{Position: 0, Colour: game.Yellow},
		{Position: 192, Colour: game.Green},
	}
	set := makeSet(t, notes, nil, nil, game.Guitar, 1.0)
	if set.Len() != 2 {
		t.Fatal("expected 2 points, got", set.Len())
	}
	if set.At(0).Value != 150 || set.At(1).Value != 50 {
		t.Log("values", set.At(0).Value, set.At(1).Value)
		t.Fail()
	}
}

func TestHoldPoints(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 96}}
	set := makeSet(t, notes, nil, nil, game.Guitar, 1.0)

	// Head plus a tick every 12 ticks through the sustain
	if set.Len() != 9 {
		t.Fatal("expected 9 points, got", set.Len())
	}
	for i := 1; i < set.Len(); i++ {
		p := set.At(i)
		if !p.IsHoldPoint || p.Value != 1 {
			t.Log("point", i, p)
			t.Fail()
		}
		if p.HitWindowStart != p.Position || p.HitWindowEnd != p.Position {
			t.Log("hold point window should be zero width", p)
			t.Fail()
		}
	}
	if set.NextNonHoldPoint(1) != set.Len() {
		t.Log("next non-hold", set.NextNonHoldPoint(1))
		t.Fail()
	}
}

func TestDrumsHaveNoHoldPoints(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 96}}
	set := makeSet(t, notes, nil, nil, game.Drums, 1.0)
	if set.Len() != 1 {
		t.Log("expected only the head point, got", set.Len())
		t.Fail()
	}
}

func TestHitWindows(t *testing.T) {
	notes := []game.Note{{Position: 0}}

	// At 120 BPM 0.07 s is 0.14 beats
	set := makeSet(t, notes, nil, nil, game.Guitar, 1.0)
	if !approx(float64(set.At(0).HitWindowStart.Beat), -0.14) ||
		!approx(float64(set.At(0).HitWindowEnd.Beat), 0.14) {
		t.Log("window", set.At(0).HitWindowStart, set.At(0).HitWindowEnd)
		t.Fail()
	}

	set = makeSet(t, notes, nil, nil, game.Guitar, 0.0)
	if set.At(0).HitWindowStart.Beat != 0 || set.At(0).HitWindowEnd.Beat != 0 {
		t.Log("zero squeeze window", set.At(0).HitWindowStart, set.At(0).HitWindowEnd)
		t.Fail()
	}
}

func TestOnlyLastNoteInPhraseGrants(t *testing.T) {
	notes := []game.Note{{Position: 0, Length: 96}, {Position: 96}, {Position: 384}}
	phrases := []game.StarPower{{Position: 0, Length: 200}, {Position: 384, Length: 50}}
	set := makeSet(t, notes, phrases, nil, game.Guitar, 1.0)

	granting := []int{}
	for i := 0; i < set.Len(); i++ {
		if set.At(i).IsSPGranting {
			granting = append(granting, i)
			if set.At(i).IsHoldPoint {
				t.Log("hold point", i, "must not grant SP")
				t.Fail()
			}
		}
	}
	// The note at 96 is the last in the first phrase; the head at 0
	// does not grant even though its sustain does whammy.
	if len(granting) != 2 {
		t.Fatal("granting points", granting)
	}
	if set.At(granting[0]).Position.Beat != 0.5 || set.At(granting[1]).Position.Beat != 2 {
		t.Log("granting positions", set.At(granting[0]).Position, set.At(granting[1]).Position)
		t.Fail()
	}
	if set.NextSPGrantingNote(0) != granting[0] {
		t.Log("next granting", set.NextSPGrantingNote(0))
		t.Fail()
	}
}

func TestSoloBoosts(t *testing.T) {
	notes := []game.Note{{Position: 0}, {Position: 960}, {Position: 1152}, {Position: 1344}}
	events := []game.ChartEvent{
		{Position: 960, Name: "solo"},
		{Position: 1344, Name: "soloend"},
	}
	set := makeSet(t, notes, nil, events, game.Guitar, 1.0)
	if len(set.SoloBoosts()) != 1 {
		t.Fatal("solo boosts", set.SoloBoosts())
	}
	boost := set.SoloBoosts()[0]
	if boost.Value != 300 || boost.Position.Beat != 7 {
		t.Log("boost", boost)
		t.Fail()
	}
	if set.TotalScore() != 4*50+300 {
		t.Log("total score", set.TotalScore())
		t.Fail()
	}
}

func TestRangeScore(t *testing.T) {
	notes := make([]game.Note, 5)
	for i := range notes {
		notes[i] = game.Note{Position: i * 192}
	}
	set := makeSet(t, notes, nil, nil, game.Guitar, 1.0)
	ranges := map[[2]int]int{
		{0, 0}: 0,
		{0, 1}: 50,
		{1, 4}: 150,
		{0, 5}: 250,
	}
	for r, expected := range ranges {
		if out := set.RangeScore(r[0], r[1]); out != expected {
			t.Log("range", r, "out", out, "expected", expected)
			t.Fail()
		}
	}
}
