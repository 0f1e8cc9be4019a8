package parser

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"git.lost.host/meutraa/sppath/internal/game"
)

type DefaultParser struct{}

const defaultResolution = 192

// mid-parse note track data, before NoteTrack invariants apply
type preNoteTrack struct {
	notes     []game.Note
	spPhrases []game.StarPower
	events    []game.ChartEvent
	forced    map[int]bool
	tap       map[int]bool
}

func newPreNoteTrack() *preNoteTrack {
	return &preNoteTrack{forced: map[int]bool{}, tap: map[int]bool{}}
}

func (t *preNoteTrack) empty() bool {
	return len(t.notes) == 0 && len(t.spPhrases) == 0 && len(t.events) == 0
}

var trackNames = map[string]game.Difficulty{
	"[EasySingle]":   game.Easy,
	"[MediumSingle]": game.Medium,
	"[HardSingle]":   game.Hard,
	"[ExpertSingle]": game.Expert,
}

func (p *DefaultParser) Parse(file string, instrument game.Instrument) (*Chart, error) {
	data, err := ioutil.ReadFile(file)
	if nil != err {
		return nil, fmt.Errorf("unable to read chart: %w", err)
	}
	return p.ParseChart(string(data), instrument)
}

func (p *DefaultParser) ParseChart(data string, instrument game.Instrument) (*Chart, error) {
	data = strings.TrimPrefix(data, "\xEF\xBB\xBF")
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(data, "\r", ""), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	chart := &Chart{
		Resolution: defaultResolution,
		Tracks:     map[game.Difficulty]*game.NoteTrack{},
	}
	timeSigs := []game.TimeSignature{}
	bpms := []game.BPM{}
	preTracks := map[game.Difficulty]*preNoteTrack{}

	for i := 0; i < len(lines); {
		header := lines[i]
		body, next, err := section(lines, i+1)
		if nil != err {
			return nil, fmt.Errorf("%v: %w", header, err)
		}
		i = next

		switch {
		case header == "[Song]":
			p.readSongHeader(body, chart)
		case header == "[SyncTrack]":
			if err := p.readSyncTrack(body, &timeSigs, &bpms); nil != err {
				return nil, err
			}
		case header == "[Events]":
			p.readEvents(body, chart)
		default:
			diff, ok := trackNames[header]
			if !ok {
				continue
			}
			track, ok := preTracks[diff]
			if !ok {
				track = newPreNoteTrack()
				preTracks[diff] = track
			}
			if !track.empty() {
				continue
			}
			if err := p.readNoteTrack(body, track); nil != err {
				return nil, err
			}
		}
	}

	sync, err := game.NewSyncTrack(timeSigs, bpms)
	if nil != err {
		return nil, err
	}
	chart.SyncTrack = sync

	for diff, pre := range preTracks {
		for i := range pre.notes {
			pre.notes[i].IsForced = pre.forced[pre.notes[i].Position]
			pre.notes[i].IsTap = pre.tap[pre.notes[i].Position]
		}
		track, err := game.NewNoteTrack(pre.notes, pre.spPhrases, pre.events,
			chart.Resolution, instrument)
		if nil != err {
			return nil, err
		}
		chart.Tracks[diff] = track
	}

	return chart, nil
}

// section returns the lines between the { } following start, and the
// index of the first line after the closing brace.
func section(lines []string, start int) ([]string, int, error) {
	if start >= len(lines) || lines[start] != "{" {
		return nil, 0, errors.New("section does not open with {")
	}
	for i := start + 1; i < len(lines); i++ {
		if lines[i] == "}" {
			return lines[start+1 : i], i + 1, nil
		}
	}
	return nil, 0, errors.New("section does not close with }")
}

func (p *DefaultParser) readSongHeader(body []string, chart *Chart) {
	for _, line := range body {
		if strings.HasPrefix(line, "Name = ") {
			chart.Name = strings.Trim(strings.TrimPrefix(line, "Name = "), "\"")
		} else if strings.HasPrefix(line, "Resolution = ") {
			value, err := strconv.Atoi(strings.TrimPrefix(line, "Resolution = "))
			if nil == err {
				chart.Resolution = value
			}
		}
	}
}

func (p *DefaultParser) readSyncTrack(body []string, timeSigs *[]game.TimeSignature, bpms *[]game.BPM) error {
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return errors.New("sync event missing data")
		}
		position, err := strconv.Atoi(fields[0])
		if nil != err {
			continue
		}
		switch fields[2] {
		case "TS":
			numerator, err := strconv.Atoi(fields[3])
			if nil != err {
				continue
			}
			denominatorLog := 2
			if len(fields) > 4 {
				denominatorLog, err = strconv.Atoi(fields[4])
				if nil != err {
					continue
				}
			}
			*timeSigs = append(*timeSigs, game.TimeSignature{
				Position:    position,
				Numerator:   numerator,
				Denominator: 1 << denominatorLog,
			})
		case "B":
			milliBPM, err := strconv.ParseInt(fields[3], 10, 64)
			if nil != err {
				continue
			}
			*bpms = append(*bpms, game.BPM{Position: position, MicroBPM: milliBPM * 1000})
		}
	}
	return nil
}

func (p *DefaultParser) readEvents(body []string, chart *Chart) {
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[2] != "E" {
			continue
		}
		position, err := strconv.Atoi(fields[0])
		if nil != err {
			continue
		}
		if strings.Trim(fields[3], "\"") != "section" {
			continue
		}
		parts := make([]string, 0, len(fields)-4)
		for _, f := range fields[4:] {
			parts = append(parts, strings.Trim(f, "\""))
		}
		chart.Sections = append(chart.Sections, Section{
			Position: position,
			Name:     strings.Join(parts, " "),
		})
	}
}

var noteColours = map[int]game.NoteColour{
	0: game.Green,
	1: game.Red,
	2: game.Yellow,
	3: game.Blue,
	4: game.Orange,
	7: game.Open,
}

const (
	forcedCode = 5
	tapCode    = 6
)

func (p *DefaultParser) readNoteTrack(body []string, track *preNoteTrack) error {
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return errors.New("track event missing data")
		}
		position, err := strconv.Atoi(fields[0])
		if nil != err {
			continue
		}
		switch fields[2] {
		case "N":
			if len(fields) < 5 {
				return errors.New("note event missing data")
			}
			code, err := strconv.Atoi(fields[3])
			if nil != err {
				continue
			}
			length, err := strconv.Atoi(fields[4])
			if nil != err {
				continue
			}
			switch code {
			case forcedCode:
				track.forced[position] = true
			case tapCode:
				track.tap[position] = true
			default:
				colour, ok := noteColours[code]
				if !ok {
					return fmt.Errorf("invalid note code %v", code)
				}
				track.notes = append(track.notes, game.Note{
					Position: position,
					Length:   length,
					Colour:   colour,
				})
			}
		case "S":
			if len(fields) < 5 {
				return errors.New("star power event missing data")
			}
			if fields[3] != "2" {
				continue
			}
			length, err := strconv.Atoi(fields[4])
			if nil != err {
				continue
			}
			track.spPhrases = append(track.spPhrases, game.StarPower{
				Position: position,
				Length:   length,
			})
		case "E":
			track.events = append(track.events, game.ChartEvent{
				Position: position,
				Name:     fields[3],
			})
		}
	}
	return nil
}
