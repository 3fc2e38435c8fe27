package cadence

import (
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// numClusters is the number of tempo groups Suggest partitions a library
// into before picking the densest one.
const numClusters = 3

// Suggest recommends a cadence option for a library's tempo profile. The
// tempos are grouped with k-means and the option whose band sits closest to
// the densest group's center wins. Returns false when there are no tempos
// to work with.
func Suggest(tempos []float64) (int, bool) {
	if len(tempos) == 0 {
		return 0, false
	}

	center, ok := densestCenter(tempos)
	if !ok {
		// Too few tempos to cluster; fall back to the option covering the
		// most tracks directly.
		return mostCovered(tempos), true
	}

	best := Options[0]
	bestDistance := -1.0
	for _, option := range Options {
		band := BandFor(option)
		if band.Contains(center) {
			return option, true
		}
		distance := band.Min - center
		if distance < 0 {
			distance = center - band.Max
		}
		if bestDistance < 0 || distance < bestDistance {
			best = option
			bestDistance = distance
		}
	}
	return best, true
}

// densestCenter clusters the tempos and returns the center of the largest
// cluster.
func densestCenter(tempos []float64) (float64, bool) {
	if len(tempos) < numClusters {
		return 0, false
	}

	var observations clusters.Observations
	for _, tempo := range tempos {
		observations = append(observations, clusters.Coordinates{tempo})
	}

	km := kmeans.New()
	result, err := km.Partition(observations, numClusters)
	if err != nil {
		return 0, false
	}

	var center float64
	size := -1
	for _, cluster := range result {
		if len(cluster.Observations) > size {
			size = len(cluster.Observations)
			center = cluster.Center[0]
		}
	}
	return center, size >= 0
}

// mostCovered returns the option whose band contains the most tempos.
func mostCovered(tempos []float64) int {
	best := Options[0]
	bestCount := -1
	for _, option := range Options {
		band := BandFor(option)
		count := 0
		for _, tempo := range tempos {
			if band.Contains(tempo) {
				count++
			}
		}
		if count > bestCount {
			best = option
			bestCount = count
		}
	}
	return best
}
