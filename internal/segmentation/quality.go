package segmentation

import (
	"math"
	"math/rand"
	"sort"

	"commerce-insights/internal/metrics"
)

type Quality struct {
	Inertia          float64        `json:"inertia"`
	Silhouette       metrics.Scalar `json:"silhouette"`
	CalinskiHarabasz metrics.Scalar `json:"calinski_harabasz"`
	DaviesBouldin    metrics.Scalar `json:"davies_bouldin"`
}

func clusterCount(labels []int) int {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	return len(seen)
}

// silhouette averages (b-a)/max(a,b) over the points. Above sample
// points, a seeded random subset is scored against itself.
func silhouette(points [][]float64, labels []int, sample int, seed int64) metrics.Scalar {
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	if sample > 0 && len(points) > sample {
		idx = rand.New(rand.NewSource(seed)).Perm(len(points))[:sample]
		sort.Ints(idx)
	}

	sub := make([]int, len(idx))
	for i, j := range idx {
		sub[i] = labels[j]
	}
	k := clusterCount(sub)
	if k < 2 || k >= len(idx) {
		return metrics.NoData
	}

	var total float64
	for _, i := range idx {
		sums := make(map[int]float64)
		counts := make(map[int]int)
		for _, j := range idx {
			if i == j {
				continue
			}
			sums[labels[j]] += math.Sqrt(sqDist(points[i], points[j]))
			counts[labels[j]]++
		}
		own := labels[i]
		if counts[own] == 0 {
			continue
		}
		a := sums[own] / float64(counts[own])
		b := math.Inf(1)
		for l, s := range sums {
			if l == own {
				continue
			}
			if m := s / float64(counts[l]); m < b {
				b = m
			}
		}
		if d := math.Max(a, b); d > 0 {
			total += (b - a) / d
		}
	}
	return metrics.Some(total / float64(len(idx)))
}

// centroidsOf averages the points of each label present.
func centroidsOf(points [][]float64, labels []int) map[int][]float64 {
	sums := make(map[int][]float64)
	counts := make(map[int]int)
	for i, p := range points {
		l := labels[i]
		if sums[l] == nil {
			sums[l] = make([]float64, len(p))
		}
		for j, x := range p {
			sums[l][j] += x
		}
		counts[l]++
	}
	for l, s := range sums {
		for j := range s {
			s[j] /= float64(counts[l])
		}
	}
	return sums
}

// calinskiHarabasz is the ratio of between- to within-cluster dispersion,
// each normalized by its degrees of freedom.
func calinskiHarabasz(points [][]float64, labels []int) metrics.Scalar {
	n, k := len(points), clusterCount(labels)
	if k < 2 || k >= n {
		return metrics.NoData
	}
	overall := make([]float64, len(points[0]))
	for _, p := range points {
		for j, x := range p {
			overall[j] += x / float64(n)
		}
	}
	centroids := centroidsOf(points, labels)
	sizes := make(map[int]int)
	for _, l := range labels {
		sizes[l]++
	}

	keys := make([]int, 0, len(centroids))
	for l := range centroids {
		keys = append(keys, l)
	}
	sort.Ints(keys)

	var between, within float64
	for _, l := range keys {
		between += float64(sizes[l]) * sqDist(centroids[l], overall)
	}
	for i, p := range points {
		within += sqDist(p, centroids[labels[i]])
	}
	if within == 0 {
		return metrics.Some(1)
	}
	return metrics.Some(between * float64(n-k) / (within * float64(k-1)))
}

// daviesBouldin averages, over clusters, the worst ratio of summed
// scatter to centroid separation. Lower is better.
func daviesBouldin(points [][]float64, labels []int) metrics.Scalar {
	n, k := len(points), clusterCount(labels)
	if k < 2 || k >= n {
		return metrics.NoData
	}
	centroids := centroidsOf(points, labels)
	scatter := make(map[int]float64)
	sizes := make(map[int]int)
	for i, p := range points {
		scatter[labels[i]] += math.Sqrt(sqDist(p, centroids[labels[i]]))
		sizes[labels[i]]++
	}
	keys := make([]int, 0, len(centroids))
	for l := range centroids {
		scatter[l] /= float64(sizes[l])
		keys = append(keys, l)
	}
	sort.Ints(keys)

	var total float64
	for _, a := range keys {
		var worst float64
		for _, b := range keys {
			if a == b {
				continue
			}
			sep := math.Sqrt(sqDist(centroids[a], centroids[b]))
			if sep == 0 {
				continue
			}
			worst = math.Max(worst, (scatter[a]+scatter[b])/sep)
		}
		total += worst
	}
	return metrics.Some(total / float64(len(keys)))
}
