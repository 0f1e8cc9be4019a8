package song

import (
	"math"
	"sort"

	"git.lost.host/meutraa/sppath/internal/game"
	"git.lost.host/meutraa/sppath/internal/sp"
)

// Activation is one chosen activation interval, as indices into the
// point set.
type Activation struct {
	ActStart int
	ActEnd   int
}

// Path is the optimiser's answer: non-overlapping activations in
// order, and the score boost, which is the points the activations
// double plus the song's solo bonuses.
type Path struct {
	Activations []Activation
	ScoreBoost  int
}

// beatTolerance absorbs float noise when two subproblem positions are
// really the same position.
const beatTolerance = 1e-9

type cacheKey struct {
	point    int
	position game.Position
}

type nextAct struct {
	act     Activation
	nextKey cacheKey
}

type cacheValue struct {
	path             Path
	possibleNextActs []nextAct
}

type positionEntry struct {
	beat  game.Beat
	value cacheValue
}

type cache struct {
	// paths[point] holds entries ordered by beat; the subproblem is
	// "best path whose first activation is at point or later, with SP
	// accumulating from the stored position".
	paths map[int][]positionEntry
	// fullSPPaths is the same keyed by point alone, with SP already
	// full there.
	fullSPPaths map[int]*cacheValue
}

func (c *cache) lookup(key cacheKey) (cacheValue, bool) {
	entries := c.paths[key.point]
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].beat >= key.position.Beat-beatTolerance
	})
	if i < len(entries) && math.Abs(float64(entries[i].beat-key.position.Beat)) < beatTolerance {
		return entries[i].value, true
	}
	return cacheValue{}, false
}

func (c *cache) store(key cacheKey, value cacheValue) {
	entries := c.paths[key.point]
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].beat >= key.position.Beat
	})
	entries = append(entries, positionEntry{})
	copy(entries[i+1:], entries[i:])
	entries[i] = positionEntry{beat: key.position.Beat, value: value}
	c.paths[key.point] = entries
}

// Optimiser owns the dynamic programming search over activation
// intervals. It borrows the processed song immutably.
type Optimiser struct {
	song           *ProcessedSong
	totalSoloBoost int
}

func NewOptimiser(s *ProcessedSong) *Optimiser {
	total := 0
	for _, b := range s.Points().SoloBoosts() {
		total += b.Value
	}
	return &Optimiser{song: s, totalSoloBoost: total}
}

func (o *Optimiser) TotalSoloBoost() int { return o.totalSoloBoost }

// OptimalPath runs the search and returns the best path. Solo bonuses
// are collected regardless of activations, so they are added once at
// the end.
func (o *Optimiser) OptimalPath() Path {
	c := &cache{
		paths:       map[int][]positionEntry{},
		fullSPPaths: map[int]*cacheValue{},
	}
	best := o.partialPath(cacheKey{point: 0}, c)
	return Path{
		Activations: best.Activations,
		ScoreBoost:  best.ScoreBoost + o.totalSoloBoost,
	}
}

func (o *Optimiser) partialPath(key cacheKey, c *cache) Path {
	if key.point >= o.song.Points().Len() {
		return Path{}
	}
	if v, ok := c.lookup(key); ok {
		return v.path
	}
	v := o.findBestSubpaths(key, c, false)
	c.store(key, v)
	return v.path
}

func (o *Optimiser) partialFullSPPath(point int, c *cache) Path {
	if point >= o.song.Points().Len() {
		return Path{}
	}
	if v, ok := c.fullSPPaths[point]; ok {
		return v.path
	}
	key := cacheKey{
		point:    point,
		position: o.song.AdjustedHitWindowStart(point, o.song.Squeeze()),
	}
	v := o.findBestSubpaths(key, c, true)
	c.fullSPPaths[point] = &v
	return v.path
}

// actEndLowerBound skips act_end candidates that are unavoidably
// swallowed: any point whose successor's hit window closes before even
// the bare minimum drain of the activation runs out.
func (o *Optimiser) actEndLowerBound(actStart int, earliestMeasure game.Measure, minSP float64) int {
	pts := o.song.Points()
	reach := earliestMeasure + game.Measure(sp.MeasuresPerBar*math.Max(minSP, sp.MinimumSPAmount))
	p := actStart
	for p+1 < pts.Len() && pts.At(p+1).HitWindowEnd.Measure <= reach {
		p++
	}
	return p
}

func (o *Optimiser) findBestSubpaths(key cacheKey, c *cache, hasFullSP bool) cacheValue {
	if !hasFullSP {
		if v, ok := o.tryPreviousBestSubpaths(key, c); ok {
			return v
		}
	}

	pts := o.song.Points()
	best := cacheValue{}
	bestScore := 0 // never activating is always an option

	for actStart := key.point; actStart < pts.Len(); actStart++ {
		bar := sp.Bar{Min: 1.0, Max: 1.0}
		if !hasFullSP {
			bar = o.song.TotalAvailableSP(key.position.Beat, key.point, actStart, nullPosition)
			if bar.Min >= 1.0 && actStart > key.point {
				// Everything from here on has full SP; that search
				// space is position independent.
				full := o.partialFullSPPath(actStart, c)
				if full.ScoreBoost > bestScore {
					bestScore = full.ScoreBoost
					best.path = full
				}
				break
			}
		}
		if !bar.FullEnoughToActivate() {
			continue
		}

		lower := o.actEndLowerBound(actStart, key.position.Measure, bar.Min)

		for actEnd := lower; actEnd < pts.Len(); actEnd++ {
			cand := ActivationCandidate{
				ActStart:                actStart,
				ActEnd:                  actEnd,
				EarliestActivationPoint: key.position,
				SPBar:                   bar,
			}
			result := o.song.IsCandidateValid(cand)
			if result.Validity == SurplusSP {
				continue
			}
			if result.Validity == InsufficientSP {
				break
			}

			act := Activation{ActStart: actStart, ActEnd: actEnd}
			nextKey := cacheKey{point: actEnd + 1, position: result.EndingPosition}
			best.possibleNextActs = append(best.possibleNextActs, nextAct{act, nextKey})

			boost := pts.RangeScore(actStart, actEnd+1)
			rest := o.partialPath(nextKey, c)
			if boost+rest.ScoreBoost > bestScore {
				bestScore = boost + rest.ScoreBoost
				best.path = Path{
					Activations: append([]Activation{act}, rest.Activations...),
					ScoreBoost:  bestScore,
				}
			}
		}
	}

	return best
}

// tryPreviousBestSubpaths reuses a subproblem computed at an earlier
// point with the same position: advancing the point only removes
// options, so if the earlier optimum is still feasible it stays
// optimal. Reuse needs the SP accounting to agree, which holds when no
// SP-granting note lies between the two points.
func (o *Optimiser) tryPreviousBestSubpaths(key cacheKey, c *cache) (cacheValue, bool) {
	pts := o.song.Points()
	for point := key.point - 1; point >= 0; point-- {
		if pts.NextSPGrantingNote(point) != pts.NextSPGrantingNote(key.point) {
			break
		}
		prev, ok := c.lookup(cacheKey{point: point, position: key.position})
		if !ok {
			continue
		}

		if len(prev.path.Activations) > 0 && prev.path.Activations[0].ActStart < key.point {
			// The previous optimum is no longer reachable; search
			// properly rather than settle for a lower bound.
			return cacheValue{}, false
		}

		value := cacheValue{path: prev.path}
		for _, na := range prev.possibleNextActs {
			if na.act.ActStart >= key.point {
				value.possibleNextActs = append(value.possibleNextActs, na)
			}
		}
		return value, true
	}
	return cacheValue{}, false
}
