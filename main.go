package main

import (
	"errors"
	"fmt"
	"io/ioutil"
	"log"

	"git.lost.host/meutraa/sppath/internal/config"
	"git.lost.host/meutraa/sppath/internal/game"
	"git.lost.host/meutraa/sppath/internal/parser"
	"git.lost.host/meutraa/sppath/internal/score"
	"git.lost.host/meutraa/sppath/internal/song"
)

func main() {
	config.Parse()
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func run() error {
	if err := config.Validate(); nil != err {
		return err
	}

	// Ensure our Default implementations are used as interfaces
	var psr parser.Parser = &parser.DefaultParser{}
	var scr score.Scorer = &score.DefaultScorer{}

	data, err := ioutil.ReadFile(*config.ChartFile)
	if nil != err {
		return fmt.Errorf("unable to read chart: %w", err)
	}

	chart, err := psr.ParseChart(string(data), config.Instrument())
	if nil != err {
		return fmt.Errorf("unable to parse chart: %w", err)
	}

	track, ok := chart.Tracks[config.Difficulty()]
	if !ok {
		return errors.New("chart has no track for the chosen difficulty")
	}

	sync := chart.SyncTrack
	if *config.Speed != 100 {
		sync = sync.Speedup(*config.Speed)
	}

	processed, err := song.Process(track, sync,
		*config.Squeeze, *config.EarlyWhammy, game.Second(*config.LazyWhammy))
	if nil != err {
		return err
	}

	optimiser := song.NewOptimiser(processed)
	path := optimiser.OptimalPath()
	summary := optimiser.PathSummary(path)
	fmt.Println(summary)

	if *config.NoStore {
		return nil
	}
	if err := scr.Init(); nil != err {
		log.Println("unable to open path database", err)
		return nil
	}
	defer scr.Deinit()
	scr.Save(&score.Result{
		Sum:        score.HashChart(string(data)),
		Difficulty: config.Difficulty(),
		Squeeze:    *config.Squeeze,
		ScoreBoost: path.ScoreBoost,
		Summary:    summary,
	})
	return nil
}
