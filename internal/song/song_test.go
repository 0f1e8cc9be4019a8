package song

import (
	"strings"
	"testing"

	"git.lost.host/meutraa/sppath/internal/game"
	"git.lost.host/meutraa/sppath/internal/parser"
	"git.lost.host/meutraa/sppath/internal/testdata"
)

func TestOptimiseParsedChart(t *testing.T) {
	p := &parser.DefaultParser{}
	chart, err := p.ParseChart(testdata.Chart, game.Guitar)
	if nil != err {
		t.Fatal("unable to parse chart", err)
	}
	track := chart.Tracks[game.Expert]
	if track == nil {
		t.Fatal("missing expert track")
	}

	processed, err := Process(track, chart.SyncTrack, 1.0, 1.0, 0)
	if nil != err {
		t.Fatal(err)
	}
	o := NewOptimiser(processed)
	path := o.OptimalPath()

	if path.ScoreBoost < o.TotalSoloBoost() {
		t.Log("boost", path.ScoreBoost, "solo boost", o.TotalSoloBoost())
		t.Fail()
	}
	for i, act := range path.Activations {
		if act.ActStart > act.ActEnd {
			t.Log("inverted activation", act)
			t.Fail()
		}
		if i > 0 && path.Activations[i-1].ActEnd >= act.ActStart {
			t.Log("overlapping activations", path.Activations)
			t.Fail()
		}
	}

	summary := o.PathSummary(path)
	if !strings.Contains(summary, "Total score: ") {
		t.Log("summary", summary)
		t.Fail()
	}
}
