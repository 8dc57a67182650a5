package iklink

import (
	"sort"

	"github.com/muesli/clusters"
	"gonum.org/v1/gonum/floats"

	"go.viam.com/iklink/referenceframe"
)

// configObservation is a joint configuration as a clustering observation.
type configObservation []referenceframe.Input

func (o configObservation) Coordinates() clusters.Coordinates {
	return clusters.Coordinates(o)
}

func (o configObservation) Distance(point clusters.Coordinates) float64 {
	return floats.Distance(o, point, 2)
}

const noise = -1

// dbscan groups configurations by density. A point with at least minPoints neighbors closer
// than eps, itself included, is a core point; every point within eps of a core point joins its
// cluster. Labels are cluster indices in order of discovery, or noise.
func dbscan(points []configObservation, eps float64, minPoints int) ([]int, int) {
	n := len(points)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = noise
	}
	if n == 0 {
		return labels, 0
	}

	// Sorting on the first joint bounds each neighborhood search to a window.
	key := func(i int) float64 {
		if len(points[i]) == 0 {
			return 0
		}
		return points[i][0]
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(order[a]) < key(order[b])
	})
	rank := make([]int, n)
	for r, idx := range order {
		rank[idx] = r
	}
	neighbors := func(i int) []int {
		var out []int
		first := key(i)
		for r := rank[i]; r >= 0 && first-key(order[r]) < eps; r-- {
			if j := order[r]; points[i].Distance(points[j].Coordinates()) < eps {
				out = append(out, j)
			}
		}
		for r := rank[i] + 1; r < n && key(order[r])-first < eps; r++ {
			if j := order[r]; points[i].Distance(points[j].Coordinates()) < eps {
				out = append(out, j)
			}
		}
		sort.Ints(out)
		return out
	}

	visited := make([]bool, n)
	count := 0
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		visited[i] = true
		seeds := neighbors(i)
		if len(seeds) < minPoints {
			continue
		}
		cluster := count
		count++
		labels[i] = cluster
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				labels[j] = cluster
			}
			if visited[j] {
				continue
			}
			visited[j] = true
			if more := neighbors(j); len(more) >= minPoints {
				seeds = append(seeds, more...)
			}
		}
	}
	return labels, count
}

// clusterRepresentatives returns one configuration per cluster of points: the member closest to
// the cluster mean. Noise points are dropped.
func clusterRepresentatives(points [][]referenceframe.Input, eps float64, minPoints int) [][]referenceframe.Input {
	obs := make([]configObservation, len(points))
	for i, p := range points {
		obs[i] = configObservation(p)
	}
	labels, count := dbscan(obs, eps, minPoints)
	if count == 0 {
		return nil
	}

	groups := make(clusters.Clusters, count)
	for i, label := range labels {
		if label != noise {
			groups[label].Observations = append(groups[label].Observations, obs[i])
		}
	}
	reps := make([][]referenceframe.Input, 0, count)
	for c := range groups {
		groups[c].Recenter()
		best, bestDist := 0, 0.
		for k, o := range groups[c].Observations {
			if d := o.Distance(groups[c].Center); k == 0 || d < bestDist {
				best, bestDist = k, d
			}
		}
		rep := groups[c].Observations[best].(configObservation)
		reps = append(reps, append([]referenceframe.Input(nil), rep...))
	}
	return reps
}
