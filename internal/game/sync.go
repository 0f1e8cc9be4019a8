package game

import (
	"errors"
	"sort"
)

type TimeSignature struct {
	Position    int // In ticks
	Numerator   int
	Denominator int
}

type BPM struct {
	Position int   // In ticks
	MicroBPM int64 // BPM * 1_000_000
}

const defaultMicroBPM = 120_000_000

// SyncTrack holds the tempo and time signature changes for a song. A
// value constructed with NewSyncTrack always has an entry of each kind
// at tick 0.
type SyncTrack struct {
	timeSigs []TimeSignature
	bpms     []BPM
}

func NewSyncTrack(timeSigs []TimeSignature, bpms []BPM) (*SyncTrack, error) {
	sort.SliceStable(timeSigs, func(i, j int) bool {
		return timeSigs[i].Position < timeSigs[j].Position
	})
	sort.SliceStable(bpms, func(i, j int) bool {
		return bpms[i].Position < bpms[j].Position
	})

	for i, ts := range timeSigs {
		if ts.Numerator <= 0 || ts.Denominator <= 0 {
			return nil, errors.New("time signatures must be positive")
		}
		if i > 0 && ts.Position == timeSigs[i-1].Position {
			return nil, errors.New("multiple time signatures on one tick")
		}
	}
	for i, bpm := range bpms {
		if bpm.MicroBPM <= 0 {
			return nil, errors.New("tempos must be positive")
		}
		if i > 0 && bpm.Position == bpms[i-1].Position {
			return nil, errors.New("multiple tempos on one tick")
		}
	}

	if len(timeSigs) == 0 || timeSigs[0].Position != 0 {
		timeSigs = append([]TimeSignature{{Position: 0, Numerator: 4, Denominator: 4}}, timeSigs...)
	}
	if len(bpms) == 0 || bpms[0].Position != 0 {
		bpms = append([]BPM{{Position: 0, MicroBPM: defaultMicroBPM}}, bpms...)
	}

	return &SyncTrack{timeSigs: timeSigs, bpms: bpms}, nil
}

func (s *SyncTrack) TimeSigs() []TimeSignature { return s.timeSigs }
func (s *SyncTrack) BPMs() []BPM               { return s.bpms }

// Speedup returns a copy with every tempo scaled by speed percent, for
// playing charts at a rate other than 100.
func (s *SyncTrack) Speedup(speed int) *SyncTrack {
	bpms := make([]BPM, len(s.bpms))
	for i, bpm := range s.bpms {
		bpms[i] = BPM{Position: bpm.Position, MicroBPM: bpm.MicroBPM * int64(speed) / 100}
	}
	return &SyncTrack{timeSigs: s.timeSigs, bpms: bpms}
}
